package oidc

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/peopleops/docflow/pkg/middleware"
)

type hmacToken struct {
	claims jwt.MapClaims
}

func (t *hmacToken) Claims(v interface{}) error {
	if m, ok := v.(*map[string]interface{}); ok {
		*m = t.claims
		return nil
	}
	return fmt.Errorf("unsupported claims target %T", v)
}

// HMACVerifier validates HS256 tokens against a shared secret. Used when the
// service runs without an OIDC provider, e.g. behind an internal gateway that
// mints its own tokens.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required for the HMAC verifier")
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &hmacToken{claims: claims}, nil
}
