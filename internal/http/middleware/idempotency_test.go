package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func idemRouter(lookup IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "u1") }) // simulate Auth
	r.Use(IdempotencyValidator(IdempotencyOptions{MaxLen: 32}, lookup))
	r.POST("/chats/:id/messages", func(c *gin.Context) {
		key, hasKey := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{
			"key":    key,
			"hasKey": hasKey,
			"replay": IsReplay(c),
			"bypass": IsRateBypass(c),
		})
	})
	return r
}

func postWithKey(t *testing.T, r *gin.Engine, key string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chats/c1/messages", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestIdempotencyValidator_NoHeaderPassesThrough(t *testing.T) {
	r := idemRouter(nil)
	w, body := postWithKey(t, r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["hasKey"] != false || body["replay"] != false {
		t.Fatalf("bare request must carry no idempotency state: %v", body)
	}
}

func TestIdempotencyValidator_InvalidKeys(t *testing.T) {
	r := idemRouter(nil)

	for name, key := range map[string]string{
		"too long":     strings.Repeat("a", 33),
		"bad chars":    "no spaces allowed",
		"non ascii":    "ключ",
		"angle quote":  `k<script>`,
	} {
		t.Run(name, func(t *testing.T) {
			w, body := postWithKey(t, r, key)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if body["code"] != "bad_request" {
				t.Fatalf("unexpected code: %v", body["code"])
			}
		})
	}
}

func TestIdempotencyValidator_ValidKeyStored(t *testing.T) {
	r := idemRouter(nil)
	w, body := postWithKey(t, r, "retry-1:abc.DEF_2")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["key"] != "retry-1:abc.DEF_2" || body["hasKey"] != true {
		t.Fatalf("key not stashed: %v", body)
	}
	if body["replay"] != false || body["bypass"] != false {
		t.Fatalf("no lookup configured, must not flag replay: %v", body)
	}
}

func TestIdempotencyValidator_ReplayDetection(t *testing.T) {
	var gotUser, gotChat, gotKey string
	lookup := func(ctx context.Context, userID, chatID, key string, now time.Time) (bool, error) {
		gotUser, gotChat, gotKey = userID, chatID, key
		return key == "seen-before", nil
	}
	r := idemRouter(lookup)

	_, fresh := postWithKey(t, r, "brand-new")
	if fresh["replay"] != false || fresh["bypass"] != false {
		t.Fatalf("unknown key must not replay: %v", fresh)
	}

	_, replay := postWithKey(t, r, "seen-before")
	if replay["replay"] != true || replay["bypass"] != true {
		t.Fatalf("known key must flag replay and rate bypass: %v", replay)
	}
	if gotUser != "u1" || gotChat != "c1" || gotKey != "seen-before" {
		t.Fatalf("lookup got wrong tuple: %q %q %q", gotUser, gotChat, gotKey)
	}
}
