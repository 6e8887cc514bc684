package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"patient-records/internal/config"
)

// SQLSTATE raised when the configured database does not exist yet.
const invalidCatalogName = "3D000"

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name        TEXT NOT NULL,
	national_id TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS exams (
	id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	description TEXT NOT NULL,
	taken_at    TIMESTAMPTZ NOT NULL,
	patient_id  BIGINT NOT NULL REFERENCES patients (id) ON DELETE CASCADE
);
`

// Provider hands out one connection per call. Implementations guarantee
// the database and both tables exist after a successful Acquire.
type Provider interface {
	Acquire(ctx context.Context) (*pgx.Conn, error)
	Release(ctx context.Context, conn *pgx.Conn)
}

// Postgres connects per call with no pooling. Every acquisition re-runs
// the idempotent schema statements; callers tolerate that cost.
type Postgres struct {
	cfg *config.Config
}

func NewPostgres(cfg *config.Config) *Postgres {
	return &Postgres{cfg: cfg}
}

func (p *Postgres) Acquire(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, p.cfg.DSN())
	if isInvalidCatalog(err) {
		if err = p.createDatabase(ctx); err != nil {
			return nil, err
		}
		conn, err = pgx.Connect(ctx, p.cfg.DSN())
	}
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := conn.Exec(ctx, schema); err != nil {
		p.Release(ctx, conn)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return conn, nil
}

// Release is nil-safe and idempotent; close failures are logged only.
func (p *Postgres) Release(ctx context.Context, conn *pgx.Conn) {
	if conn == nil || conn.IsClosed() {
		return
	}
	if err := conn.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("closing connection")
	}
}

func (p *Postgres) createDatabase(ctx context.Context) error {
	admin, err := pgx.Connect(ctx, p.cfg.MaintenanceDSN())
	if err != nil {
		return fmt.Errorf("connect maintenance db: %w", err)
	}
	defer p.Release(ctx, admin)

	// CREATE DATABASE takes no bind parameters; quote the identifier.
	name := pgx.Identifier{p.cfg.DatabaseName}.Sanitize()
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+name); err != nil {
		return fmt.Errorf("create database %s: %w", p.cfg.DatabaseName, err)
	}
	log.Info().Str("database", p.cfg.DatabaseName).Msg("database created")
	return nil
}

func isInvalidCatalog(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidCatalogName
}
