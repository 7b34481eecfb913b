// Package snapshot optionally persists raw cell formulas — never the
// dependency graph, which is always rebuilt by replaying them through
// the dispatcher — to Postgres, so a sheet can be saved and restored
// across process runs. The driver is wired to one concrete backend
// rather than selected at runtime, since a spreadsheet session has
// exactly one persistence concern.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"
)

// Store persists raw command lines, in order, under a named snapshot
// so a sheet's formulas — not its computed values — survive a
// restart.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres via dsn and ensures the backing table
// exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("snapshot: ping: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sheet_snapshots (
	id        UUID PRIMARY KEY,
	name      TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	line      TEXT NOT NULL
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("snapshot: create schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save replaces the stored command lines for name with lines, in
// order — replaying them in sequence through the parser and
// dispatcher reconstructs the sheet exactly, since every mutation
// (literal, formula, aggregate) already goes through that one path.
func (s *Store) Save(ctx context.Context, name string, lines []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_snapshots WHERE name = $1`, name); err != nil {
		return fmt.Errorf("snapshot: clear %q: %w", name, err)
	}
	for i, line := range lines {
		id := uuid.New()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_snapshots (id, name, seq, line) VALUES ($1, $2, $3, $4)`,
			id, name, i, line,
		); err != nil {
			return fmt.Errorf("snapshot: insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit: %w", err)
	}
	return nil
}

// Load returns the stored command lines for name, in the order Save
// wrote them.
func (s *Store) Load(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line FROM sheet_snapshots WHERE name = $1 ORDER BY seq ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: query %q: %w", name, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("snapshot: scan: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
