package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/attest/internal/domain"
)

type Store struct {
	pool    *pgxpool.Pool
	users   *UserRepo
	audits  *AuditRepo
	records *RecordRepo
	history *HistoryRepo
	grants  *ViewerGrantRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:    pool,
		users:   NewUserRepo(pool),
		audits:  NewAuditRepo(pool),
		records: NewRecordRepo(pool),
		history: NewHistoryRepo(pool),
		grants:  NewViewerGrantRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate applies any pending embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.pool)
}

func (s *Store) Users() domain.UserRepository          { return s.users }
func (s *Store) Audits() domain.AuditRepository        { return s.audits }
func (s *Store) Records() domain.RecordRepository      { return s.records }
func (s *Store) History() domain.HistoryRepository     { return s.history }
func (s *Store) Grants() domain.ViewerGrantRepository  { return s.grants }
