package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/attest/internal/domain"
)

type RecordRepo struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

const recordColumns = `id, audit_id, record_type, ref, title, description, record_status,
	        current_owner_role, admin_lock_reason, admin_locked_by, admin_locked_at,
	        signed_off_by, signed_off_at, created_by, updated_by, created_at, updated_at`

func (r *RecordRepo) Create(ctx context.Context, rec *domain.Record, entry *domain.StateHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("recordRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO records (id, audit_id, record_type, ref, title, description, record_status,
		        current_owner_role, admin_lock_reason, admin_locked_by, admin_locked_at,
		        signed_off_by, signed_off_at, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		rec.ID, rec.AuditID, rec.RecordType, rec.Ref, rec.Title, rec.Description, rec.RecordStatus,
		rec.CurrentOwnerRole, rec.AdminLockReason, rec.AdminLockedBy, rec.AdminLockedAt,
		rec.SignedOffBy, rec.SignedOffAt, rec.CreatedBy, rec.UpdatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("recordRepo.Create: %w", err)
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return fmt.Errorf("recordRepo.Create: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("recordRepo.Create: commit: %w", err)
	}

	return nil
}

func (r *RecordRepo) GetByID(ctx context.Context, recordType domain.RecordType, id uuid.UUID) (*domain.Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM records WHERE record_type = $1 AND id = $2`,
		recordType, id))
	if err != nil {
		return nil, fmt.Errorf("recordRepo.GetByID: %w", err)
	}

	return rec, nil
}

func (r *RecordRepo) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*domain.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM records WHERE audit_id = $1
		 ORDER BY created_at
		 LIMIT 1000`,
		auditID,
	)
	if err != nil {
		return nil, fmt.Errorf("recordRepo.ListByAudit: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("recordRepo.ListByAudit: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *RecordRepo) UpdateContent(ctx context.Context, rec *domain.Record) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE records SET ref = $1, title = $2, description = $3, updated_by = $4, updated_at = now()
		 WHERE record_type = $5 AND id = $6`,
		rec.Ref, rec.Title, rec.Description, rec.UpdatedBy, rec.RecordType, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("recordRepo.UpdateContent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recordRepo.UpdateContent: %w", domain.ErrNotFound)
	}

	return nil
}

// Transition loads the record under FOR UPDATE, lets decide compute the new
// state, then commits a conditional update plus exactly one history row. The
// update is guarded by the status the row had when read, so a racing writer
// that slipped in between surfaces as ErrConflict rather than a lost update.
func (r *RecordRepo) Transition(ctx context.Context, recordType domain.RecordType, id uuid.UUID, decide domain.TransitionFunc) (*domain.Record, *domain.StateHistoryEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("recordRepo.Transition: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := scanRecord(tx.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM records WHERE record_type = $1 AND id = $2 FOR UPDATE`,
		recordType, id))
	if err != nil {
		return nil, nil, fmt.Errorf("recordRepo.Transition: %w", err)
	}

	expectedStatus := rec.RecordStatus

	entry, err := decide(rec)
	if err != nil {
		return nil, nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE records
		 SET record_status = $1, current_owner_role = $2, admin_lock_reason = $3,
		     admin_locked_by = $4, admin_locked_at = $5, signed_off_by = $6, signed_off_at = $7,
		     updated_by = $8, updated_at = $9
		 WHERE record_type = $10 AND id = $11 AND record_status = $12`,
		rec.RecordStatus, rec.CurrentOwnerRole, rec.AdminLockReason,
		rec.AdminLockedBy, rec.AdminLockedAt, rec.SignedOffBy, rec.SignedOffAt,
		rec.UpdatedBy, rec.UpdatedAt,
		recordType, id, expectedStatus,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("recordRepo.Transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, fmt.Errorf("recordRepo.Transition: %w", domain.ErrConflict)
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return nil, nil, fmt.Errorf("recordRepo.Transition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("recordRepo.Transition: commit: %w", err)
	}

	return rec, entry, nil
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var rec domain.Record

	err := row.Scan(
		&rec.ID, &rec.AuditID, &rec.RecordType, &rec.Ref, &rec.Title, &rec.Description, &rec.RecordStatus,
		&rec.CurrentOwnerRole, &rec.AdminLockReason, &rec.AdminLockedBy, &rec.AdminLockedAt,
		&rec.SignedOffBy, &rec.SignedOffAt, &rec.CreatedBy, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
