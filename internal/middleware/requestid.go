package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// GetRequestID returns the ID assigned by chi's RequestID middleware, or "".
func GetRequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
