package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		rid, _ := c.Get(requestIDKey)
		c.String(http.StatusOK, "%v", rid)
	})

	// Generated when absent.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rid := w.Header().Get(requestIDHeader); rid == "" || rid != w.Body.String() {
		t.Fatalf("generated id must be echoed and stored: header=%q body=%q", rid, w.Body.String())
	}

	// Reused when supplied.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestIDHeader, "client-supplied")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Header().Get(requestIDHeader) != "client-supplied" {
		t.Fatalf("incoming id must be propagated, got %q", w2.Header().Get(requestIDHeader))
	}
}

func TestRedact_ScrubsIdentifiers(t *testing.T) {
	in := "user=0c7af249-0c81-4664-9774-02a1d7c4aa1f&mail=ana@example.com&tel=+34 612 345 678"
	out := redact(in)
	if strings.Contains(out, "0c7af249") {
		t.Fatalf("uuid leak: %q", out)
	}
	if strings.Contains(out, "example.com") {
		t.Fatalf("email leak: %q", out)
	}
	if strings.Contains(out, "612 345 678") {
		t.Fatalf("phone leak: %q", out)
	}
	if nanp := redact("call (555) 123-4567 now"); strings.Contains(nanp, "123-4567") {
		t.Fatalf("phone leak: %q", nanp)
	}
	if !strings.Contains(out, "[REDACTED:id]") || !strings.Contains(out, "[REDACTED:email]") {
		t.Fatalf("expected redaction markers: %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := truncate("abcdefgh", 4); got != "abcd…" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := truncate("anything", 0); got != "anything" {
		t.Fatalf("max<=0 must disable truncation: %q", got)
	}
}

func TestRecovery_PanicsToJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body: %v (%s)", err, w.Body.String())
	}
	if body["code"] != "internal_error" {
		t.Fatalf("unexpected code: %v", body["code"])
	}
	if body["request_id"] == "" {
		t.Fatalf("expected correlation id in panic response")
	}
}

func TestLoggerFrom_FallbackNeverNil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("LoggerFrom must never return nil")
	}
}
