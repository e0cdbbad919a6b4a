package queue

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when schema.sql
// changes; an existing database bootstrapped at an older version is
// rejected rather than silently migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates an existing database's recorded schema
// version doesn't match the version this build expects.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Bootstrap creates the task tables. Production deployments never call
// this — the schema is FOM's DDL to own per spec.md §1 and §6 ("the daemon
// issues no DDL") — but tests and the "fod db bootstrap" dev command need a
// database to point at. Bootstrap is idempotent: calling it again against
// an already-initialized database just verifies the recorded
// schema_version instead of re-applying the DDL.
func (s *Store) Bootstrap(ctx context.Context) error {
	var tableExists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&tableExists); err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (bootstrap a fresh database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bootstrap tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply bootstrap schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}
