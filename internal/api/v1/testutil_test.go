package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/server/middleware"
	"github.com/gosuda/attest/internal/workflow"
)

// userCtx builds a request context as the Auth middleware would: the loaded
// user stored under the middleware's context key.
func userCtx(u *domain.User) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUser, u)
}

func adminCtx() (context.Context, *domain.User) {
	u := &domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin, Active: true}
	return userCtx(u), u
}

func auditorCtx() (context.Context, *domain.User) {
	u := &domain.User{ID: uuid.New(), Email: "auditor@example.com", Role: domain.RoleAuditor, Active: true}
	return userCtx(u), u
}

func reviewerCtx() (context.Context, *domain.User) {
	u := &domain.User{ID: uuid.New(), Email: "reviewer@example.com", Role: domain.RoleReviewer, Active: true}
	return userCtx(u), u
}

func viewerCtx() (context.Context, *domain.User) {
	u := &domain.User{ID: uuid.New(), Email: "viewer@example.com", Role: domain.RoleViewer, Active: true}
	return userCtx(u), u
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users   *mockUserRepo
	audits  *mockAuditRepo
	records *mockRecordRepo
	history *mockHistoryRepo
	grants  *mockGrantRepo
}

func (m *mockDataStore) Users() domain.UserRepository         { return m.users }
func (m *mockDataStore) Audits() domain.AuditRepository       { return m.audits }
func (m *mockDataStore) Records() domain.RecordRepository     { return m.records }
func (m *mockDataStore) History() domain.HistoryRepository    { return m.history }
func (m *mockDataStore) Grants() domain.ViewerGrantRepository { return m.grants }

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
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	loginFunc        func(ctx context.Context, email, password string) (string, string, *domain.User, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
	createUserFunc   func(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) CreateUser(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	return m.createUserFunc(ctx, email, password, name, role)
}

// ---------------------------------------------------------------------------
// Mock WorkflowService
// ---------------------------------------------------------------------------

type mockWorkflowService struct {
	createRecordFunc  func(ctx context.Context, actorID, auditID uuid.UUID, recordType domain.RecordType, ref, title, description string) (*domain.Record, error)
	getRecordFunc     func(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error)
	listRecordsFunc   func(ctx context.Context, actorID, auditID uuid.UUID) ([]*domain.Record, error)
	updateContentFunc func(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, ref, title, description string) (*domain.Record, error)
	transitionFunc    func(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, action workflow.Action, p workflow.Payload) (*domain.Record, error)
	historyFunc       func(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) ([]*domain.StateHistoryEntry, error)
	searchHistoryFunc func(ctx context.Context, actorID uuid.UUID, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error)
}

func (m *mockWorkflowService) CreateRecord(ctx context.Context, actorID, auditID uuid.UUID, recordType domain.RecordType, ref, title, description string) (*domain.Record, error) {
	return m.createRecordFunc(ctx, actorID, auditID, recordType, ref, title, description)
}

func (m *mockWorkflowService) GetRecord(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error) {
	return m.getRecordFunc(ctx, actorID, recordType, id)
}

func (m *mockWorkflowService) ListRecords(ctx context.Context, actorID, auditID uuid.UUID) ([]*domain.Record, error) {
	return m.listRecordsFunc(ctx, actorID, auditID)
}

func (m *mockWorkflowService) UpdateContent(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, ref, title, description string) (*domain.Record, error) {
	return m.updateContentFunc(ctx, actorID, recordType, id, ref, title, description)
}

func (m *mockWorkflowService) Transition(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, action workflow.Action, p workflow.Payload) (*domain.Record, error) {
	return m.transitionFunc(ctx, actorID, recordType, id, action, p)
}

func (m *mockWorkflowService) History(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) ([]*domain.StateHistoryEntry, error) {
	return m.historyFunc(ctx, actorID, recordType, id)
}

func (m *mockWorkflowService) SearchHistory(ctx context.Context, actorID uuid.UUID, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error) {
	return m.searchHistoryFunc(ctx, actorID, filter)
}
