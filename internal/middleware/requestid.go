package middleware

import (
	"context"
	"net/http"
	"regexp"

	"rowguard/internal/domain"
)

type requestIDKey struct{}

// validRequestID bounds what we accept from the X-Request-ID header. Anything
// else could forge log lines, so it is replaced with a generated ID.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// RequestID assigns each request an ID for log correlation. A well-formed
// incoming X-Request-ID header is reused so IDs survive proxies; otherwise a
// fresh one is generated. The ID is echoed on the response and stored in the
// request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !validRequestID.MatchString(id) {
			id = domain.NewID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext extracts the request ID, or "" if none was assigned.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
