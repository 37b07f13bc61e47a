package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/attest/internal/domain"
)

type ViewerGrantRepo struct {
	pool *pgxpool.Pool
}

func NewViewerGrantRepo(pool *pgxpool.Pool) *ViewerGrantRepo {
	return &ViewerGrantRepo{pool: pool}
}

func (r *ViewerGrantRepo) Grant(ctx context.Context, g *domain.ViewerGrant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO viewer_grants (audit_id, viewer_user_id, granted_by, granted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (audit_id, viewer_user_id) DO NOTHING`,
		g.AuditID, g.ViewerUserID, g.GrantedBy, g.GrantedAt,
	)
	if err != nil {
		return fmt.Errorf("viewerGrantRepo.Grant: %w", err)
	}

	return nil
}

func (r *ViewerGrantRepo) Revoke(ctx context.Context, auditID, viewerUserID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM viewer_grants WHERE audit_id = $1 AND viewer_user_id = $2`,
		auditID, viewerUserID,
	)
	if err != nil {
		return fmt.Errorf("viewerGrantRepo.Revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("viewerGrantRepo.Revoke: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ViewerGrantRepo) Exists(ctx context.Context, auditID, viewerUserID uuid.UUID) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM viewer_grants WHERE audit_id = $1 AND viewer_user_id = $2)`,
		auditID, viewerUserID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("viewerGrantRepo.Exists: %w", err)
	}

	return exists, nil
}

func (r *ViewerGrantRepo) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*domain.ViewerGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT audit_id, viewer_user_id, granted_by, granted_at
		 FROM viewer_grants WHERE audit_id = $1
		 ORDER BY granted_at`,
		auditID,
	)
	if err != nil {
		return nil, fmt.Errorf("viewerGrantRepo.ListByAudit: %w", err)
	}
	defer rows.Close()

	var grants []*domain.ViewerGrant
	for rows.Next() {
		var g domain.ViewerGrant
		err := rows.Scan(&g.AuditID, &g.ViewerUserID, &g.GrantedBy, &g.GrantedAt)
		if err != nil {
			return nil, fmt.Errorf("viewerGrantRepo.ListByAudit: %w", err)
		}
		grants = append(grants, &g)
	}

	return grants, rows.Err()
}
