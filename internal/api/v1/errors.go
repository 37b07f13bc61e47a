package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/server/middleware"
)

// mapDomainError translates sentinel errors into HTTP problem responses.
// Invalid transitions surface as 400 (the request names an impossible move),
// concurrent-write conflicts as 409, rule-payload failures as 422. The
// resource name feeds the 404 message only.
func mapDomainError(err error, resource string) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrPermissionDenied):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(resource + " not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, domain.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("the record changed while processing this request, retry")
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}

// actorID pulls the authenticated user's ID out of the request context.
func actorID(ctx context.Context) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, huma.Error401Unauthorized("authentication required")
	}
	return id, nil
}
