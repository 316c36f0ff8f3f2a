package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrPersistenceUnavailable = errors.New("persistence_unavailable")
)

// Store wraps DB access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// Connect opens and pings the database at dsn. Any failure, including an empty dsn, is
// reported as ErrPersistenceUnavailable wrapping the cause.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: no dsn configured", ErrPersistenceUnavailable)
	}
	st, err := New(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	return st, nil
}

// Open returns a database-backed client for dsn, or Offline when dsn is empty or the
// database cannot be reached. The game runs the same either way.
func Open(ctx context.Context, dsn string) PersistenceClient {
	if dsn == "" {
		log.Info().Msg("persistence_offline")
		return Offline{}
	}
	st, err := Connect(ctx, dsn)
	if err != nil {
		log.Warn().Err(err).Msg("persistence_unreachable")
		return Offline{}
	}
	log.Info().Msg("persistence_online")
	return st
}
