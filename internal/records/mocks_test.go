package records_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	updateFunc     func(ctx context.Context, u *domain.User) error
	listFunc       func(ctx context.Context) ([]*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock AuditRepository
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	createFunc      func(ctx context.Context, a *domain.Audit) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Audit, error)
	updateFunc      func(ctx context.Context, a *domain.Audit) error
	listFunc        func(ctx context.Context) ([]*domain.Audit, error)
	listForUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Audit, error)
	reassignFunc    func(ctx context.Context, id uuid.UUID, auditorID, reviewerID *uuid.UUID, entry *domain.StateHistoryEntry) (*domain.Audit, error)
}

func (m *mockAuditRepo) Create(ctx context.Context, a *domain.Audit) error {
	return m.createFunc(ctx, a)
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockAuditRepo) Update(ctx context.Context, a *domain.Audit) error {
	return m.updateFunc(ctx, a)
}

func (m *mockAuditRepo) List(ctx context.Context) ([]*domain.Audit, error) {
	return m.listFunc(ctx)
}

func (m *mockAuditRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Audit, error) {
	return m.listForUserFunc(ctx, userID)
}

func (m *mockAuditRepo) Reassign(ctx context.Context, id uuid.UUID, auditorID, reviewerID *uuid.UUID, entry *domain.StateHistoryEntry) (*domain.Audit, error) {
	return m.reassignFunc(ctx, id, auditorID, reviewerID, entry)
}

// ---------------------------------------------------------------------------
// Mock RecordRepository
// ---------------------------------------------------------------------------

type mockRecordRepo struct {
	createFunc        func(ctx context.Context, rec *domain.Record, entry *domain.StateHistoryEntry) error
	getByIDFunc       func(ctx context.Context, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error)
	listByAuditFunc   func(ctx context.Context, auditID uuid.UUID) ([]*domain.Record, error)
	updateContentFunc func(ctx context.Context, rec *domain.Record) error
	transitionFunc    func(ctx context.Context, recordType domain.RecordType, id uuid.UUID, decide domain.TransitionFunc) (*domain.Record, *domain.StateHistoryEntry, error)
}

func (m *mockRecordRepo) Create(ctx context.Context, rec *domain.Record, entry *domain.StateHistoryEntry) error {
	return m.createFunc(ctx, rec, entry)
}

func (m *mockRecordRepo) GetByID(ctx context.Context, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error) {
	return m.getByIDFunc(ctx, recordType, id)
}

func (m *mockRecordRepo) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*domain.Record, error) {
	return m.listByAuditFunc(ctx, auditID)
}

func (m *mockRecordRepo) UpdateContent(ctx context.Context, rec *domain.Record) error {
	return m.updateContentFunc(ctx, rec)
}

func (m *mockRecordRepo) Transition(ctx context.Context, recordType domain.RecordType, id uuid.UUID, decide domain.TransitionFunc) (*domain.Record, *domain.StateHistoryEntry, error) {
	return m.transitionFunc(ctx, recordType, id, decide)
}

// ---------------------------------------------------------------------------
// Mock ViewerGrantRepository
// ---------------------------------------------------------------------------

type mockGrantRepo struct {
	grantFunc       func(ctx context.Context, g *domain.ViewerGrant) error
	revokeFunc      func(ctx context.Context, auditID, viewerUserID uuid.UUID) error
	existsFunc      func(ctx context.Context, auditID, viewerUserID uuid.UUID) (bool, error)
	listByAuditFunc func(ctx context.Context, auditID uuid.UUID) ([]*domain.ViewerGrant, error)
}

func (m *mockGrantRepo) Grant(ctx context.Context, g *domain.ViewerGrant) error {
	return m.grantFunc(ctx, g)
}

func (m *mockGrantRepo) Revoke(ctx context.Context, auditID, viewerUserID uuid.UUID) error {
	return m.revokeFunc(ctx, auditID, viewerUserID)
}

func (m *mockGrantRepo) Exists(ctx context.Context, auditID, viewerUserID uuid.UUID) (bool, error) {
	return m.existsFunc(ctx, auditID, viewerUserID)
}

func (m *mockGrantRepo) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*domain.ViewerGrant, error) {
	return m.listByAuditFunc(ctx, auditID)
}

// ---------------------------------------------------------------------------
// Mock HistoryRepository
// ---------------------------------------------------------------------------

type mockHistoryRepo struct {
	listByRecordFunc func(ctx context.Context, recordType domain.RecordType, recordID uuid.UUID) ([]*domain.StateHistoryEntry, error)
	searchFunc       func(ctx context.Context, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error)
}

func (m *mockHistoryRepo) ListByRecord(ctx context.Context, recordType domain.RecordType, recordID uuid.UUID) ([]*domain.StateHistoryEntry, error) {
	return m.listByRecordFunc(ctx, recordType, recordID)
}

func (m *mockHistoryRepo) Search(ctx context.Context, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error) {
	return m.searchFunc(ctx, filter)
}

// ---------------------------------------------------------------------------
// Mock Publisher / Notifier
// ---------------------------------------------------------------------------

type publishedMsg struct {
	channel string
	payload []byte
}

type mockPublisher struct {
	published []publishedMsg
}

func (m *mockPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	m.published = append(m.published, publishedMsg{channel: channel, payload: payload})
	return nil
}

type mockNotifier struct {
	signedOff int
	locked    int
	reason    string
}

func (m *mockNotifier) RecordSignedOff(_ context.Context, _ *domain.Audit, _ *domain.Record, _ *domain.User) {
	m.signedOff++
}

func (m *mockNotifier) RecordLocked(_ context.Context, _ *domain.Audit, _ *domain.Record, _ *domain.User, reason string) {
	m.locked++
	m.reason = reason
}
