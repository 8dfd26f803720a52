//go:build integration

package containers

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// schema creates the tables the postgres-backed stores expect. Integration
// tests own the schema; production deployments provision it out of band.
const schema = `
CREATE TABLE IF NOT EXISTS trust_settings (
	domain      TEXT        NOT NULL,
	fingerprint TEXT        NOT NULL,
	certificate BYTEA       NOT NULL,
	settings    JSONB       NOT NULL,
	position    BIGSERIAL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (domain, fingerprint)
);

CREATE INDEX IF NOT EXISTS trust_settings_domain_position_idx
	ON trust_settings (domain, position);

CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	category    TEXT        NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	action      TEXT        NOT NULL,
	scope       TEXT        NOT NULL DEFAULT '',
	domain      TEXT        NOT NULL DEFAULT '',
	outcome     TEXT        NOT NULL DEFAULT '',
	fingerprint TEXT        NOT NULL DEFAULT '',
	subject     TEXT        NOT NULL DEFAULT '',
	match_count INTEGER     NOT NULL DEFAULT 0,
	reason      TEXT        NOT NULL DEFAULT '',
	request_id  TEXT        NOT NULL DEFAULT '',
	actor_id    TEXT        NOT NULL DEFAULT '',
	client_ip   TEXT        NOT NULL DEFAULT '',
	device      TEXT        NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx
	ON audit_events (timestamp DESC);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// schema applied and an open database handle.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("anchorage_test"),
		tcpostgres.WithUsername("anchorage"),
		tcpostgres.WithPassword("anchorage"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables wipes the given tables. Use between tests to ensure isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, "TRUNCATE "+strings.Join(tables, ", "))
	return err
}
