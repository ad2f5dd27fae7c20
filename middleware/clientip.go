package middleware

import (
	"net"
	"net/http"
	"strings"

	goTodo "github.com/MrEthical07/goTodo"
)

// ClientIP attaches the caller address to the request context. The address
// is RemoteAddr without port. When trustForwarded is set, the first
// X-Forwarded-For hop wins instead; enable it only behind a proxy that
// overwrites the header.
func ClientIP(trustForwarded bool) func(http.Handler) http.Handler {
	resolve := RemoteIP
	if trustForwarded {
		resolve = ForwardedIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := goTodo.WithClientIP(r.Context(), resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RemoteIP returns the host part of r.RemoteAddr. Request headers are ignored.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedIP returns the first X-Forwarded-For hop, falling back to
// [RemoteIP] when the header is absent or empty.
func ForwardedIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return RemoteIP(r)
}
