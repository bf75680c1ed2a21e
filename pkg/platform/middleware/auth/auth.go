// Package auth resolves the acting user from a bearer token. The token
// subject becomes the actor recorded on audit records; requests without
// a token pass through as anonymous.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type actorKey struct{}

// Verifier validates HMAC-signed bearer tokens and stores the subject in
// the context. A missing Authorization header is allowed (anonymous); a
// present but invalid token is rejected.
func Verifier(signingKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				http.Error(w, "token missing subject", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), subject)))
		})
	}
}

// Actor retrieves the acting user ID from the context. It satisfies
// audit.ActorResolver.
func Actor(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// WithActor injects an actor ID into a context. Useful for tests and
// console commands acting on behalf of a user.
func WithActor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
