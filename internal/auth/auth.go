// Package auth issues and checks the bearer tokens game servers present to the hive.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenIssuer = "hive"

type serverKey struct{}

// WithServer attaches an authenticated game server name to ctx.
func WithServer(ctx context.Context, server string) context.Context {
	return context.WithValue(ctx, serverKey{}, server)
}

// ServerFromContext returns the game server name taken from the bearer token.
func ServerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(serverKey{}).(string)
	return v, ok
}

// IssueServerToken signs an HS256 token identifying a game server.
// A zero ttl issues a token that never expires.
func IssueServerToken(secret []byte, server string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty signing secret")
	}
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  server,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseServerToken validates raw and returns its subject.
func ParseServerToken(secret []byte, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid server bearer token.
func Middleware(secret []byte, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			server, err := ParseServerToken(secret, raw)
			if err != nil {
				logger.Debugw("rejected server token", "path", r.URL.Path, "err", err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithServer(r.Context(), server)))
		})
	}
}
