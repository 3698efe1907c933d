package handler

import (
	"context"

	"github.com/tripmate/tripmate/internal/api/middleware"
)

// GetUserID retrieves the authenticated user ID from the context.
// It is empty when the API runs without auth.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}
