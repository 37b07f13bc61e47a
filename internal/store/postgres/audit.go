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

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const auditColumns = `id, title, auditor_id, reviewer_id, status, created_by, created_at, updated_at`

func (r *AuditRepo) Create(ctx context.Context, a *domain.Audit) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audits (id, title, auditor_id, reviewer_id, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Title, a.AuditorID, a.ReviewerID, a.Status, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Create: %w", err)
	}

	return nil
}

func (r *AuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Audit, error) {
	var a domain.Audit

	err := r.pool.QueryRow(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.AuditorID, &a.ReviewerID, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("auditRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auditRepo.GetByID: %w", err)
	}

	return &a, nil
}

func (r *AuditRepo) Update(ctx context.Context, a *domain.Audit) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE audits SET title = $1, status = $2, updated_at = now() WHERE id = $3`,
		a.Title, a.Status, a.ID,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("auditRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AuditRepo) List(ctx context.Context) ([]*domain.Audit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audits ORDER BY created_at DESC LIMIT 1000`)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.List: %w", err)
	}
	defer rows.Close()

	return scanAudits(rows, "auditRepo.List")
}

func (r *AuditRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Audit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audits
		 WHERE auditor_id = $1 OR reviewer_id = $1
		    OR id IN (SELECT audit_id FROM viewer_grants WHERE viewer_user_id = $1)
		 ORDER BY created_at DESC
		 LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListForUser: %w", err)
	}
	defer rows.Close()

	return scanAudits(rows, "auditRepo.ListForUser")
}

// Reassign swaps assignments and writes the audit-level history entry
// atomically, so an assignment change can never appear without its trail row.
func (r *AuditRepo) Reassign(ctx context.Context, id uuid.UUID, auditorID, reviewerID *uuid.UUID, entry *domain.StateHistoryEntry) (*domain.Audit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.Reassign: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var a domain.Audit
	err = tx.QueryRow(ctx,
		`UPDATE audits
		 SET auditor_id = COALESCE($1, auditor_id),
		     reviewer_id = COALESCE($2, reviewer_id),
		     updated_at = now()
		 WHERE id = $3
		 RETURNING `+auditColumns,
		auditorID, reviewerID, id,
	).Scan(&a.ID, &a.Title, &a.AuditorID, &a.ReviewerID, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("auditRepo.Reassign: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auditRepo.Reassign: %w", err)
	}

	if err := insertHistory(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("auditRepo.Reassign: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("auditRepo.Reassign: commit: %w", err)
	}

	return &a, nil
}

func scanAudits(rows pgx.Rows, op string) ([]*domain.Audit, error) {
	var audits []*domain.Audit
	for rows.Next() {
		var a domain.Audit
		err := rows.Scan(&a.ID, &a.Title, &a.AuditorID, &a.ReviewerID, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		audits = append(audits, &a)
	}

	return audits, rows.Err()
}
