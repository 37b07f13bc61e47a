package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/attest/internal/domain"
	redisstore "github.com/gosuda/attest/internal/store/redis"
	"github.com/gosuda/attest/internal/workflow"
)

// Publisher fans workflow events out to live subscribers. A nil Publisher
// disables event publication.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Notifier delivers human-facing notifications for the transitions worth
// interrupting someone for. A nil Notifier disables them.
type Notifier interface {
	RecordSignedOff(ctx context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User)
	RecordLocked(ctx context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User, reason string)
}

// Event is the JSON payload published after each successful transition.
type Event struct {
	AuditID     uuid.UUID            `json:"audit_id"`
	RecordID    uuid.UUID            `json:"record_id"`
	RecordType  domain.RecordType    `json:"record_type"`
	Action      string               `json:"action"`
	FromStatus  *domain.RecordStatus `json:"from_status,omitempty"`
	ToStatus    domain.RecordStatus  `json:"to_status"`
	PerformedBy uuid.UUID            `json:"performed_by"`
	PerformedAt time.Time            `json:"performed_at"`
}

// Service coordinates record workflow operations: it resolves the acting
// user's current role and assignment from the store on every call, evaluates
// the transition rules, and hands the state change to the repository's
// transactional path.
type Service struct {
	users    domain.UserRepository
	audits   domain.AuditRepository
	records  domain.RecordRepository
	grants   domain.ViewerGrantRepository
	history  domain.HistoryRepository
	events   Publisher
	notifier Notifier
	now      func() time.Time
}

func NewService(
	users domain.UserRepository,
	audits domain.AuditRepository,
	records domain.RecordRepository,
	grants domain.ViewerGrantRepository,
	history domain.HistoryRepository,
	events Publisher,
	notifier Notifier,
) *Service {
	return &Service{
		users:    users,
		audits:   audits,
		records:  records,
		grants:   grants,
		history:  history,
		events:   events,
		notifier: notifier,
		now:      time.Now,
	}
}

// actorAndAudit loads the acting user and the audit fresh from the store.
// Roles and assignments are never taken from tokens or cached copies.
func (s *Service) actorAndAudit(ctx context.Context, actorID, auditID uuid.UUID) (*domain.User, *domain.Audit, error) {
	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, fmt.Errorf("records.Service: load actor: %w", err)
	}
	if !user.Active {
		return nil, nil, fmt.Errorf("records.Service: %w", domain.ErrPermissionDenied)
	}

	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return nil, nil, fmt.Errorf("records.Service: load audit: %w", err)
	}

	return user, audit, nil
}

func (s *Service) canView(ctx context.Context, user *domain.User, audit *domain.Audit) (bool, error) {
	hasGrant := false
	if user.Role == domain.RoleViewer {
		var err error
		hasGrant, err = s.grants.Exists(ctx, audit.ID, user.ID)
		if err != nil {
			return false, fmt.Errorf("records.Service: check grant: %w", err)
		}
	}

	return workflow.CanViewAudit(user, audit, hasGrant), nil
}

// CreateRecord opens a new draft record in the audit. Only the assigned
// auditor may create records.
func (s *Service) CreateRecord(ctx context.Context, actorID, auditID uuid.UUID, recordType domain.RecordType, ref, title, description string) (*domain.Record, error) {
	if !recordType.Valid() {
		return nil, fmt.Errorf("records.Service.CreateRecord: %w: unknown record type %q", domain.ErrValidation, recordType)
	}

	user, audit, err := s.actorAndAudit(ctx, actorID, auditID)
	if err != nil {
		return nil, err
	}

	rec, entry, err := workflow.NewRecord(user, audit, recordType, ref, title, description, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.records.Create(ctx, rec, entry); err != nil {
		return nil, fmt.Errorf("records.Service.CreateRecord: %w", err)
	}

	s.publish(ctx, rec, entry)

	return rec, nil
}

// GetRecord returns the record when the actor is allowed to see its audit.
func (s *Service) GetRecord(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error) {
	rec, err := s.records.GetByID(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("records.Service.GetRecord: %w", err)
	}

	user, audit, err := s.actorAndAudit(ctx, actorID, rec.AuditID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canView(ctx, user, audit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("records.Service.GetRecord: %w", domain.ErrPermissionDenied)
	}

	return rec, nil
}

// ListRecords returns the audit's records for any actor who may view the
// audit.
func (s *Service) ListRecords(ctx context.Context, actorID, auditID uuid.UUID) ([]*domain.Record, error) {
	user, audit, err := s.actorAndAudit(ctx, actorID, auditID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canView(ctx, user, audit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("records.Service.ListRecords: %w", domain.ErrPermissionDenied)
	}

	recs, err := s.records.ListByAudit(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("records.Service.ListRecords: %w", err)
	}

	return recs, nil
}

// UpdateContent edits the descriptive fields of a record. Edit rights track
// the workflow state: the assigned auditor in draft, the assigned reviewer in
// review, nobody otherwise.
func (s *Service) UpdateContent(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, ref, title, description string) (*domain.Record, error) {
	if title == "" {
		return nil, fmt.Errorf("records.Service.UpdateContent: %w: title is required", domain.ErrValidation)
	}

	rec, err := s.records.GetByID(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("records.Service.UpdateContent: %w", err)
	}

	user, audit, err := s.actorAndAudit(ctx, actorID, rec.AuditID)
	if err != nil {
		return nil, err
	}

	if !workflow.CanEditRecord(user, audit, rec) {
		return nil, fmt.Errorf("records.Service.UpdateContent: %w", domain.ErrPermissionDenied)
	}

	rec.Ref = ref
	rec.Title = title
	rec.Description = description
	rec.UpdatedBy = user.ID

	if err := s.records.UpdateContent(ctx, rec); err != nil {
		return nil, fmt.Errorf("records.Service.UpdateContent: %w", err)
	}

	return rec, nil
}

// Transition performs one workflow action on a record. The rules run twice:
// once up front against the actor's current assignment, and again inside the
// repository transaction against the locked row, so a state that moved under
// us is rejected rather than silently overwritten.
func (s *Service) Transition(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID, action workflow.Action, p workflow.Payload) (*domain.Record, error) {
	rec, err := s.records.GetByID(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("records.Service.Transition: %w", err)
	}

	user, audit, err := s.actorAndAudit(ctx, actorID, rec.AuditID)
	if err != nil {
		return nil, err
	}

	if !workflow.CanPerformAction(user, audit, rec, action) {
		return nil, s.transitionDenial(rec, user, audit, action, p)
	}

	now := s.now()
	updated, entry, err := s.records.Transition(ctx, recordType, id, func(fresh *domain.Record) (*domain.StateHistoryEntry, error) {
		return workflow.Apply(fresh, user, audit, action, p, now)
	})
	if err != nil {
		return nil, fmt.Errorf("records.Service.Transition: %w", err)
	}

	s.publish(ctx, updated, entry)
	s.notify(ctx, audit, updated, user, action, p)

	return updated, nil
}

// transitionDenial re-runs the rule evaluation on a copy of the record so the
// caller gets the precise refusal (wrong state vs. wrong actor) instead of a
// generic one.
func (s *Service) transitionDenial(rec *domain.Record, user *domain.User, audit *domain.Audit, action workflow.Action, p workflow.Payload) error {
	clone := *rec
	if _, err := workflow.Apply(&clone, user, audit, action, p, s.now()); err != nil {
		return err
	}

	return fmt.Errorf("records.Service.Transition: %w", domain.ErrPermissionDenied)
}

// History returns the full trail for one record, oldest first.
func (s *Service) History(ctx context.Context, actorID uuid.UUID, recordType domain.RecordType, id uuid.UUID) ([]*domain.StateHistoryEntry, error) {
	rec, err := s.records.GetByID(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("records.Service.History: %w", err)
	}

	user, audit, err := s.actorAndAudit(ctx, actorID, rec.AuditID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canView(ctx, user, audit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("records.Service.History: %w", domain.ErrPermissionDenied)
	}

	entries, err := s.history.ListByRecord(ctx, recordType, id)
	if err != nil {
		return nil, fmt.Errorf("records.Service.History: %w", err)
	}

	return entries, nil
}

// SearchHistory runs an admin-only query over the whole trail.
func (s *Service) SearchHistory(ctx context.Context, actorID uuid.UUID, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error) {
	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("records.Service.SearchHistory: %w", err)
	}
	if user.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("records.Service.SearchHistory: %w", domain.ErrPermissionDenied)
	}

	entries, err := s.history.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("records.Service.SearchHistory: %w", err)
	}

	return entries, nil
}

// publish sends the transition event to the audit's channel and the global
// trail channel. Delivery is best effort; failures are logged, never
// surfaced, because the state change has already committed.
func (s *Service) publish(ctx context.Context, rec *domain.Record, entry *domain.StateHistoryEntry) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(Event{
		AuditID:     rec.AuditID,
		RecordID:    rec.ID,
		RecordType:  rec.RecordType,
		Action:      entry.Action,
		FromStatus:  entry.FromStatus,
		ToStatus:    entry.ToStatus,
		PerformedBy: entry.PerformedBy,
		PerformedAt: entry.PerformedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("marshal transition event")
		return
	}

	for _, channel := range []string{redisstore.AuditChannel(rec.AuditID), redisstore.TrailChannel()} {
		if err := s.events.Publish(ctx, channel, payload); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("publish transition event")
		}
	}
}

func (s *Service) notify(ctx context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User, action workflow.Action, p workflow.Payload) {
	if s.notifier == nil {
		return
	}

	switch action {
	case workflow.ActionSignOff:
		s.notifier.RecordSignedOff(ctx, audit, rec, actor)
	case workflow.ActionAdminLock:
		s.notifier.RecordLocked(ctx, audit, rec, actor, p.Reason)
	}
}
