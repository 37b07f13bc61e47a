package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/attest/internal/domain"
)

type HistoryRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

const historyColumns = `id, record_type, record_id, from_status, to_status, action,
	        performed_by, performed_at, notes, reason`

// insertHistory appends one trail entry inside the caller's transaction.
// There is no update or delete counterpart anywhere in this package.
func insertHistory(ctx context.Context, tx pgx.Tx, e *domain.StateHistoryEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO record_state_history (id, record_type, record_id, from_status, to_status, action, performed_by, performed_at, notes, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.RecordType, e.RecordID, e.FromStatus, e.ToStatus, e.Action,
		e.PerformedBy, e.PerformedAt, e.Notes, e.Reason,
	)
	if err != nil {
		return fmt.Errorf("insertHistory: %w", err)
	}

	return nil
}

func (r *HistoryRepo) ListByRecord(ctx context.Context, recordType domain.RecordType, recordID uuid.UUID) ([]*domain.StateHistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+historyColumns+` FROM record_state_history
		 WHERE record_type = $1 AND record_id = $2
		 ORDER BY performed_at
		 LIMIT 1000`,
		recordType, recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.ListByRecord: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows, "historyRepo.ListByRecord")
}

func (r *HistoryRepo) Search(ctx context.Context, filter domain.HistoryFilter) ([]*domain.StateHistoryEntry, error) {
	var (
		where []string
		args  []any
	)

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.RecordType != "" {
		add("record_type = $%d", filter.RecordType)
	}
	if filter.PerformedBy != uuid.Nil {
		add("performed_by = $%d", filter.PerformedBy)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if !filter.From.IsZero() {
		add("performed_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("performed_at <= $%d", filter.To)
	}

	query := `SELECT ` + historyColumns + ` FROM record_state_history`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY performed_at DESC`

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.Search: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows, "historyRepo.Search")
}

func scanHistory(rows pgx.Rows, op string) ([]*domain.StateHistoryEntry, error) {
	var entries []*domain.StateHistoryEntry
	for rows.Next() {
		var e domain.StateHistoryEntry
		err := rows.Scan(
			&e.ID, &e.RecordType, &e.RecordID, &e.FromStatus, &e.ToStatus, &e.Action,
			&e.PerformedBy, &e.PerformedAt, &e.Notes, &e.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
