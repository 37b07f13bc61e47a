package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryRecordType values extend RecordType with the audit-level entry kind
// used for assignment changes, which are documented against the audit rather
// than fabricated as per-record transitions.
const HistoryRecordTypeAudit = "audit"

// StateHistoryEntry is one immutable row of the audit trail. Entries are
// appended once per record creation and once per successful transition; no
// update or delete path exists for any role.
type StateHistoryEntry struct {
	ID          uuid.UUID     `json:"id"`
	RecordType  string        `json:"record_type"`
	RecordID    uuid.UUID     `json:"record_id"`
	FromStatus  *RecordStatus `json:"from_status,omitempty"`
	ToStatus    RecordStatus  `json:"to_status"`
	Action      string        `json:"action"`
	PerformedBy uuid.UUID     `json:"performed_by"`
	PerformedAt time.Time     `json:"performed_at"`
	Notes       string        `json:"notes,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

// HistoryFilter narrows audit-trail queries for compliance reporting. Zero
// values mean "no constraint".
type HistoryFilter struct {
	RecordType  string
	PerformedBy uuid.UUID
	Action      string
	From        time.Time
	To          time.Time
	Limit       int
}

type HistoryRepository interface {
	ListByRecord(ctx context.Context, recordType RecordType, recordID uuid.UUID) ([]*StateHistoryEntry, error)
	Search(ctx context.Context, filter HistoryFilter) ([]*StateHistoryEntry, error)
}
