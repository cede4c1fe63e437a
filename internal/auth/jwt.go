// Package auth implements the identity verifier consumed by the HTTP layer.
// Identity issuance lives in an external service; this package only validates
// bearer tokens and extracts the stable user id plus display-name claims.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims defines the claim structure expected from the identity provider.
type Claims struct {
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	jwt.RegisteredClaims
}

// UserID returns the stable user identifier (the subject claim).
func (c *Claims) UserID() string { return c.Subject }

// Verifier validates HS256-signed bearer tokens.
type Verifier struct {
	secretKey []byte
	issuer    string
}

// NewVerifier creates a Verifier for the given shared secret. When issuer is
// non-empty, tokens from any other issuer are rejected.
func NewVerifier(secretKey, issuer string) *Verifier {
	return &Verifier{secretKey: []byte(secretKey), issuer: issuer}
}

// Verify parses and validates a JWT string and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	keyFn := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secretKey, nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFn, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issue signs a token for userID with the given names and validity. The
// production issuer lives elsewhere; this is used by tests and local tooling.
func (v *Verifier) Issue(userID, firstName, lastName string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		FirstName: firstName,
		LastName:  lastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secretKey)
}
