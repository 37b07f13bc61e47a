package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/workflow"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Audits() domain.AuditRepository
	Records() domain.RecordRepository
	History() domain.HistoryRepository
	Grants() domain.ViewerGrantRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	CreateUser(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error)
}

// WorkflowService abstracts record workflow operations for handler testing.
// *records.Service satisfies this interface.
type WorkflowService interface {
	CreateRecord(ctx context.Context, actorID, auditID uuid.UUID, recordType domain.RecordType, ref, title, description string) (*domain.Record, error)
	GetRecord(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error)
	ListRecords(ctx context.Context, actorID, auditID uuid.UUID) ([]*domain.Record, error)
	UpdateContent(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, ref, title, description string) (*domain.Record, error)
	Transition(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, action workflow.Action, p workflow.Payload) (*domain.Record, error)
	History(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) ([]*domain.StateHistoryEntry, error)
	SearchHistory(ctx context.Context, actorID uuid.UUID, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error)
}
