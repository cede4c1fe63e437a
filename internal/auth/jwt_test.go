package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier("secret", "marketplace")

	tok, err := v.Issue("u1", "Ana", "López", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != "u1" || claims.FirstName != "Ana" || claims.LastName != "López" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerify_Expired(t *testing.T) {
	v := NewVerifier("secret", "")
	tok, err := v.Issue("u1", "a", "b", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := v.Verify(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewVerifier("one-secret", "")
	tok, err := issuer.Issue("u1", "a", "b", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other := NewVerifier("other-secret", "")
	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_IssuerMismatch(t *testing.T) {
	signer := NewVerifier("secret", "someone-else")
	tok, err := signer.Issue("u1", "a", "b", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v := NewVerifier("secret", "marketplace")
	if _, err := v.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// No configured issuer accepts any iss claim.
	open := NewVerifier("secret", "")
	if _, err := open.Verify(tok); err != nil {
		t.Fatalf("issuer check must be optional: %v", err)
	}
}

func TestVerify_RejectsWrongAlgAndEmptySubject(t *testing.T) {
	v := NewVerifier("secret", "")

	// alg=none is always invalid.
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := v.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg=none: expected ErrInvalidToken, got %v", err)
	}

	// A structurally valid token without a subject is useless to us.
	empty, err := v.Issue("", "a", "b", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := v.Verify(empty); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty subject: expected ErrInvalidToken, got %v", err)
	}

	if _, err := v.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: expected ErrInvalidToken, got %v", err)
	}
}
