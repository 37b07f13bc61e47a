package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ViewerGrant is a read-only access right on an audit, independent of the
// auditor/reviewer assignment. Deleting the granting user nulls GrantedBy;
// the grant itself persists until explicitly revoked.
type ViewerGrant struct {
	AuditID      uuid.UUID  `json:"audit_id"`
	ViewerUserID uuid.UUID  `json:"user_id"`
	GrantedBy    *uuid.UUID `json:"granted_by,omitempty"`
	GrantedAt    time.Time  `json:"granted_at"`
}

type ViewerGrantRepository interface {
	// Grant is an idempotent upsert keyed by (audit, viewer user).
	Grant(ctx context.Context, g *ViewerGrant) error
	Revoke(ctx context.Context, auditID, viewerUserID uuid.UUID) error
	Exists(ctx context.Context, auditID, viewerUserID uuid.UUID) (bool, error)
	ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*ViewerGrant, error)
}
