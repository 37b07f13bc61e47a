package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordType distinguishes the two record variants sharing one workflow.
type RecordType string

const (
	RecordTypeRisk  RecordType = "risk"
	RecordTypeIssue RecordType = "issue"
)

func (t RecordType) Valid() bool {
	return t == RecordTypeRisk || t == RecordTypeIssue
}

type RecordStatus string

const (
	RecordStatusDraft     RecordStatus = "draft"
	RecordStatusInReview  RecordStatus = "in_review"
	RecordStatusAdminHold RecordStatus = "admin_hold"
	RecordStatusSignedOff RecordStatus = "signed_off"
)

func (s RecordStatus) Valid() bool {
	switch s {
	case RecordStatusDraft, RecordStatusInReview, RecordStatusAdminHold, RecordStatusSignedOff:
		return true
	}
	return false
}

// OwnerRole is the role currently entitled to edit a record. It is a pure
// function of the record status, never stored independently.
type OwnerRole string

const (
	OwnerRoleAuditor  OwnerRole = "auditor"
	OwnerRoleReviewer OwnerRole = "reviewer"
	OwnerRoleNone     OwnerRole = "none"
)

// OwnerRoleFor derives the owning role from a record status.
func OwnerRoleFor(s RecordStatus) OwnerRole {
	switch s {
	case RecordStatusDraft:
		return OwnerRoleAuditor
	case RecordStatusInReview:
		return OwnerRoleReviewer
	default:
		return OwnerRoleNone
	}
}

// Record is a risk or issue-log row subject to the approval workflow.
// Workflow fields are mutated only through the transition engine; records are
// never deleted, archiving the containing audit hides them instead.
type Record struct {
	ID               uuid.UUID    `json:"id"`
	AuditID          uuid.UUID    `json:"audit_id"`
	RecordType       RecordType   `json:"record_type"`
	Ref              string       `json:"ref"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	RecordStatus     RecordStatus `json:"record_status"`
	CurrentOwnerRole OwnerRole    `json:"current_owner_role"`
	AdminLockReason  string       `json:"admin_lock_reason,omitempty"`
	AdminLockedBy    *uuid.UUID   `json:"admin_locked_by,omitempty"`
	AdminLockedAt    *time.Time   `json:"admin_locked_at,omitempty"`
	SignedOffBy      *uuid.UUID   `json:"signed_off_by,omitempty"`
	SignedOffAt      *time.Time   `json:"signed_off_at,omitempty"`
	CreatedBy        uuid.UUID    `json:"created_by"`
	UpdatedBy        uuid.UUID    `json:"updated_by"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TransitionFunc inspects the freshly loaded record inside the transition
// transaction, mutates it to its post-transition state, and returns the
// history entry to append. Returning an error aborts the transaction with no
// partial effect.
type TransitionFunc func(rec *Record) (*StateHistoryEntry, error)

type RecordRepository interface {
	// Create inserts the record and its creation history entry in one
	// transaction.
	Create(ctx context.Context, rec *Record, entry *StateHistoryEntry) error

	GetByID(ctx context.Context, recordType RecordType, id uuid.UUID) (*Record, error)
	ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*Record, error)

	// UpdateContent persists the editable content fields (ref, title,
	// description, updated_by) without touching workflow state.
	UpdateContent(ctx context.Context, rec *Record) error

	// Transition applies decide to the record under a write-serializing
	// transaction: the row is read and locked, decide computes the new
	// state, and a conditional update (WHERE record_status = the status
	// just read) plus exactly one history insert commit together. A zero-row
	// conditional update surfaces ErrConflict; any error rolls everything
	// back.
	Transition(ctx context.Context, recordType RecordType, id uuid.UUID, decide TransitionFunc) (*Record, *StateHistoryEntry, error)
}
