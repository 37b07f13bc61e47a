// Package workflow holds the pure decision core of the approval workflow:
// permission evaluation and the record state machine. Nothing here performs
// I/O; callers fetch the user, audit, and record and pass them in.
package workflow

import "github.com/gosuda/attest/internal/domain"

// CanViewAudit reports whether user may read the audit and its records.
// hasGrant is the result of a ViewerGrant lookup for (audit, user); it only
// matters for the viewer role.
func CanViewAudit(user *domain.User, audit *domain.Audit, hasGrant bool) bool {
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleAuditor:
		return user.ID == audit.AuditorID
	case domain.RoleReviewer:
		return user.ID == audit.ReviewerID
	case domain.RoleViewer:
		return hasGrant
	}
	return false
}

// CanManageViewers reports whether user may grant, revoke, or list viewer
// access on the audit: the assigned auditor, the assigned reviewer, or an
// admin. Viewers never manage grants, with or without one of their own.
func CanManageViewers(user *domain.User, audit *domain.Audit) bool {
	return CanViewAudit(user, audit, false)
}

// CanEditRecord reports whether user may edit the record's content. Edit
// rights follow the owner role derived from the record status: the assigned
// auditor edits drafts, the assigned reviewer edits records in review.
// Admin never edits content directly; admin power is locking and unlocking.
func CanEditRecord(user *domain.User, audit *domain.Audit, rec *domain.Record) bool {
	switch rec.RecordStatus {
	case domain.RecordStatusDraft:
		return user.Role == domain.RoleAuditor && user.ID == audit.AuditorID
	case domain.RecordStatusInReview:
		return user.Role == domain.RoleReviewer && user.ID == audit.ReviewerID
	}
	return false
}

// CanPerformAction reports whether user may request action on the record in
// its currently persisted status. The check is table-driven off the same
// rules the transition engine applies, so permission and transition validity
// cannot drift apart.
func CanPerformAction(user *domain.User, audit *domain.Audit, rec *domain.Record, action Action) bool {
	rule, ok := rules[action]
	if !ok {
		return false
	}
	if !rule.validFrom(rec.RecordStatus) {
		return false
	}
	return rule.actor(user, audit)
}
