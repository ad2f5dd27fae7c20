package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	goTodo "github.com/MrEthical07/goTodo"
)

// HeaderAuth carries the session token on requests and responses.
const HeaderAuth = "x-auth"

// Authenticator is satisfied by *goTodo.Engine.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*goTodo.Principal, error)
}

type principalContextKey struct{}

// PrincipalFromContext returns the principal stored by [RequireSession].
func PrincipalFromContext(ctx context.Context) (*goTodo.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*goTodo.Principal)
	return p, ok && p != nil
}

// WithPrincipal stores p in ctx. Handlers normally get it from RequireSession.
func WithPrincipal(ctx context.Context, p *goTodo.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// RequireSession rejects the request with 401 unless its token authenticates.
func RequireSession(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				writeUnauthorized(w)
				return
			}

			token, ok := sessionToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func sessionToken(r *http.Request) (string, bool) {
	if token := strings.TrimSpace(r.Header.Get(HeaderAuth)); token != "" {
		return token, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": goTodo.ErrUnauthorized.Error()})
}
