package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
)

type contextKey string

const ContextKeyUser contextKey = "user"

// CurrentUser returns the authenticated user stored by Auth. The user was
// loaded from the store for this request, so its role and active flag are
// current, not whatever the token was minted with.
func CurrentUser(ctx context.Context) (*domain.User, bool) {
	v, ok := ctx.Value(ContextKeyUser).(*domain.User)
	return v, ok
}

// UserIDFromContext returns the authenticated user's ID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	u, ok := CurrentUser(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return u.ID, true
}
