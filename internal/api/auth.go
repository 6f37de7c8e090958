package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LocalSubject is the operator subject used when auth is disabled.
const LocalSubject = "local"

var (
	errUnauthorized    = errors.New("unauthorized")
	errFeatureDisabled = errors.New("feature disabled")
)

type subjectKey struct{}

// authMiddleware validates the HS256 bearer token issued by the hosted auth
// service and stores its subject in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.jwtSecret) == 0 {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, LocalSubject)))
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			s.writeError(w, fmt.Errorf("%w: missing bearer token", errUnauthorized))
			return
		}
		subject, err := ParseToken(s.jwtSecret, raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, subject)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok && token != "" {
		return token, true
	}
	// Browsers cannot set headers on websocket upgrades.
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// ParseToken validates an HS256 token and returns its subject.
func ParseToken(secret []byte, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", errUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", errUnauthorized)
	}
	return claims.Subject, nil
}

// IssueToken signs an HS256 token for subject. Used by tooling and tests;
// production tokens come from the hosted auth service.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Subject returns the operator subject of the request.
func Subject(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey{}).(string); ok {
		return s
	}
	return LocalSubject
}
