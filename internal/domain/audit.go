package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditStatus string

const (
	AuditStatusActive   AuditStatus = "active"
	AuditStatusArchived AuditStatus = "archived"
)

// Audit is a unit of audit work. Exactly one auditor and one reviewer are
// assigned at a time; reassignment mutates these fields without touching the
// records the audit owns — ownership is recomputed from the current
// assignment at permission-check time.
type Audit struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	AuditorID  uuid.UUID   `json:"auditor_id"`
	ReviewerID uuid.UUID   `json:"reviewer_id"`
	Status     AuditStatus `json:"status"`
	CreatedBy  uuid.UUID   `json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type AuditRepository interface {
	Create(ctx context.Context, a *Audit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Audit, error)
	Update(ctx context.Context, a *Audit) error
	List(ctx context.Context) ([]*Audit, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Audit, error)

	// Reassign updates the auditor and/or reviewer assignment and appends
	// the given audit-level history entry in the same transaction. Nil IDs
	// leave the corresponding assignment unchanged.
	Reassign(ctx context.Context, id uuid.UUID, auditorID, reviewerID *uuid.UUID, entry *StateHistoryEntry) (*Audit, error)
}
