// Package middleware holds HTTP middleware shared by the relay's routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID carries the correlation ID on requests and responses.
const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

var requestIDKey contextKey

// RequestID propagates an incoming X-Request-ID header or generates a new
// UUID, echoes it on the response, and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), requestIDKey, id),
		))
	})
}

// GetRequestID extracts the request ID from the context, or "" if absent.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
