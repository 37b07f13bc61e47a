package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
)

// Action identifies a workflow transition request.
type Action string

const (
	ActionCreate             Action = "create"
	ActionSubmitForReview    Action = "submit_for_review"
	ActionReturnToAuditor    Action = "return_to_auditor"
	ActionSignOff            Action = "sign_off"
	ActionAdminLock          Action = "admin_lock"
	ActionAdminUnlock        Action = "admin_unlock"
	ActionAdminUnlockSignoff Action = "admin_unlock_signoff"
)

// Confirmation literals. Matched exactly: case-sensitive and
// whitespace-significant.
const (
	ConfirmSignOff       = "SIGN OFF"
	ConfirmUnlockSignoff = "UNLOCK SIGNED OFF"
)

// Payload carries the request body fields a transition may require.
type Payload struct {
	Notes        string
	Reason       string
	Confirmation string
	ReturnTo     domain.RecordStatus
}

// rule describes one row of the transition table: which statuses the action
// is valid from, who may perform it, what payload it requires, and how it
// mutates the record. Unlisted (status, action) pairs are invalid
// transitions by construction.
type rule struct {
	validFrom func(domain.RecordStatus) bool
	actor     func(*domain.User, *domain.Audit) bool
	validate  func(Payload) error
	target    func(Payload) domain.RecordStatus
	apply     func(rec *domain.Record, actor uuid.UUID, p Payload, now time.Time)
}

func from(statuses ...domain.RecordStatus) func(domain.RecordStatus) bool {
	return func(s domain.RecordStatus) bool {
		for _, v := range statuses {
			if s == v {
				return true
			}
		}
		return false
	}
}

func assignedAuditor(u *domain.User, a *domain.Audit) bool {
	return u.Role == domain.RoleAuditor && u.ID == a.AuditorID
}

func assignedReviewer(u *domain.User, a *domain.Audit) bool {
	return u.Role == domain.RoleReviewer && u.ID == a.ReviewerID
}

func isAdmin(u *domain.User, _ *domain.Audit) bool {
	return u.Role == domain.RoleAdmin
}

func fixedTarget(s domain.RecordStatus) func(Payload) domain.RecordStatus {
	return func(Payload) domain.RecordStatus { return s }
}

func validateReturnTo(p Payload) error {
	if p.Reason == "" {
		return fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if p.ReturnTo != domain.RecordStatusDraft && p.ReturnTo != domain.RecordStatusInReview {
		return fmt.Errorf("%w: return_to must be draft or in_review", domain.ErrValidation)
	}
	return nil
}

var rules = map[Action]rule{
	ActionSubmitForReview: {
		validFrom: from(domain.RecordStatusDraft),
		actor:     assignedAuditor,
		validate:  func(Payload) error { return nil }, // notes optional
		target:    fixedTarget(domain.RecordStatusInReview),
		apply:     func(*domain.Record, uuid.UUID, Payload, time.Time) {},
	},
	ActionReturnToAuditor: {
		validFrom: from(domain.RecordStatusInReview),
		actor:     assignedReviewer,
		validate: func(p Payload) error {
			if p.Notes == "" {
				return fmt.Errorf("%w: notes are required", domain.ErrValidation)
			}
			return nil
		},
		target: fixedTarget(domain.RecordStatusDraft),
		apply:  func(*domain.Record, uuid.UUID, Payload, time.Time) {},
	},
	ActionSignOff: {
		validFrom: from(domain.RecordStatusInReview),
		actor:     assignedReviewer,
		validate: func(p Payload) error {
			if p.Confirmation != ConfirmSignOff {
				return fmt.Errorf("%w: confirmation must be %q", domain.ErrValidation, ConfirmSignOff)
			}
			return nil
		},
		target: fixedTarget(domain.RecordStatusSignedOff),
		apply: func(rec *domain.Record, actor uuid.UUID, _ Payload, now time.Time) {
			rec.SignedOffBy = &actor
			rec.SignedOffAt = &now
		},
	},
	ActionAdminLock: {
		validFrom: func(s domain.RecordStatus) bool { return s != domain.RecordStatusAdminHold },
		actor:     isAdmin,
		validate: func(p Payload) error {
			if p.Reason == "" {
				return fmt.Errorf("%w: reason is required", domain.ErrValidation)
			}
			return nil
		},
		target: fixedTarget(domain.RecordStatusAdminHold),
		apply: func(rec *domain.Record, actor uuid.UUID, p Payload, now time.Time) {
			rec.AdminLockReason = p.Reason
			rec.AdminLockedBy = &actor
			rec.AdminLockedAt = &now
			// Locking a signed-off record leaves signed_off; the sign-off
			// fields go with the status.
			rec.SignedOffBy = nil
			rec.SignedOffAt = nil
		},
	},
	ActionAdminUnlock: {
		validFrom: from(domain.RecordStatusAdminHold),
		actor:     isAdmin,
		validate:  validateReturnTo,
		target:    func(p Payload) domain.RecordStatus { return p.ReturnTo },
		apply: func(rec *domain.Record, _ uuid.UUID, _ Payload, _ time.Time) {
			rec.AdminLockReason = ""
			rec.AdminLockedBy = nil
			rec.AdminLockedAt = nil
		},
	},
	ActionAdminUnlockSignoff: {
		validFrom: from(domain.RecordStatusSignedOff),
		actor:     isAdmin,
		validate: func(p Payload) error {
			if err := validateReturnTo(p); err != nil {
				return err
			}
			if p.Confirmation != ConfirmUnlockSignoff {
				return fmt.Errorf("%w: confirmation must be %q", domain.ErrValidation, ConfirmUnlockSignoff)
			}
			return nil
		},
		target: func(p Payload) domain.RecordStatus { return p.ReturnTo },
		apply: func(rec *domain.Record, _ uuid.UUID, _ Payload, _ time.Time) {
			rec.SignedOffBy = nil
			rec.SignedOffAt = nil
		},
	},
}

// Apply validates action against the record's current status, the actor's
// role and assignment, and the payload, in that order, then mutates rec to
// its post-transition state and returns the history entry to append. The
// permission check runs against the record as passed in, so callers invoking
// Apply on a freshly read row inside a transaction get the race guard the
// workflow requires.
func Apply(rec *domain.Record, user *domain.User, audit *domain.Audit, action Action, p Payload, now time.Time) (*domain.StateHistoryEntry, error) {
	rule, ok := rules[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidTransition, action)
	}

	if !rule.validFrom(rec.RecordStatus) {
		return nil, fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, action, rec.RecordStatus)
	}
	if !rule.actor(user, audit) {
		return nil, fmt.Errorf("%w: %s may not %s", domain.ErrPermissionDenied, user.Role, action)
	}
	if err := rule.validate(p); err != nil {
		return nil, err
	}

	fromStatus := rec.RecordStatus
	toStatus := rule.target(p)

	rec.RecordStatus = toStatus
	rec.CurrentOwnerRole = domain.OwnerRoleFor(toStatus)
	rule.apply(rec, user.ID, p, now)
	rec.UpdatedBy = user.ID
	rec.UpdatedAt = now

	return &domain.StateHistoryEntry{
		ID:          uuid.New(),
		RecordType:  string(rec.RecordType),
		RecordID:    rec.ID,
		FromStatus:  &fromStatus,
		ToStatus:    toStatus,
		Action:      string(action),
		PerformedBy: user.ID,
		PerformedAt: now,
		Notes:       p.Notes,
		Reason:      p.Reason,
	}, nil
}

// NewRecord builds a record in its initial draft state together with its
// creation history entry. Only the audit's assigned auditor may create.
func NewRecord(user *domain.User, audit *domain.Audit, recordType domain.RecordType, ref, title, description string, now time.Time) (*domain.Record, *domain.StateHistoryEntry, error) {
	if !assignedAuditor(user, audit) {
		return nil, nil, fmt.Errorf("%w: only the assigned auditor may create records", domain.ErrPermissionDenied)
	}
	if title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	rec := &domain.Record{
		ID:               uuid.New(),
		AuditID:          audit.ID,
		RecordType:       recordType,
		Ref:              ref,
		Title:            title,
		Description:      description,
		RecordStatus:     domain.RecordStatusDraft,
		CurrentOwnerRole: domain.OwnerRoleAuditor,
		CreatedBy:        user.ID,
		UpdatedBy:        user.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	entry := &domain.StateHistoryEntry{
		ID:          uuid.New(),
		RecordType:  string(recordType),
		RecordID:    rec.ID,
		ToStatus:    domain.RecordStatusDraft,
		Action:      string(ActionCreate),
		PerformedBy: user.ID,
		PerformedAt: now,
	}

	return rec, entry, nil
}
