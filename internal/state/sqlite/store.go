// Package sqlite implements a durable state.Reader/state.Committer backed by
// SQLite, for single-node deployments that need state to survive a process
// restart. Reads pin to a generation the way core/state's HistoryReaderV3
// pins point-in-time reads to a txNum in the teacher corpus; commits append
// a new generation rather than mutating rows in place.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/ledgerforge/transact/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS state_snapshots (
	generation INTEGER PRIMARY KEY AUTOINCREMENT,
	parent     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS state_values (
	generation INTEGER NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	deleted    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (generation, key)
);
`

// Store is a SQLite-backed state.Reader/state.Committer. The zero
// generation ("0") is the empty snapshot every chain is rooted at.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if necessary) a SQLite database at path and ensures
// its schema exists, reconnecting with backoff if the handle isn't
// immediately reachable (a cold local disk, a slow mount) — this is a
// reconnect policy, not a retry of a failed application-level read.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("state/sqlite: open %s: %w", path, err)
	}

	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, b); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state/sqlite: connect %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state/sqlite: migrate schema: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements state.Reader, resolving keys as of the given generation by
// walking the generation's ancestry until each key is found or the root is
// reached.
func (s *Store) Get(ctx context.Context, stateID string, keys []string) (map[string]string, error) {
	gen, err := parseGeneration(stateID)
	if err != nil {
		return nil, state.NewReadError(stateID, err)
	}

	out := make(map[string]string, len(keys))
	remaining := make(map[string]bool, len(keys))
	for _, k := range keys {
		remaining[k] = true
	}

	for gen != 0 && len(remaining) > 0 {
		for key := range remaining {
			var value string
			var deleted bool
			err := s.db.QueryRowContext(ctx,
				`SELECT value, deleted FROM state_values WHERE generation = ? AND key = ?`,
				gen, key,
			).Scan(&value, &deleted)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				continue
			case err != nil:
				return nil, state.NewReadError(stateID, err)
			default:
				if !deleted {
					out[key] = value
				}
				delete(remaining, key)
			}
		}
		if len(remaining) == 0 {
			break
		}
		var parent int64
		if err := s.db.QueryRowContext(ctx,
			`SELECT parent FROM state_snapshots WHERE generation = ?`, gen,
		).Scan(&parent); err != nil {
			return nil, state.NewReadError(stateID, err)
		}
		gen = parent
	}

	return out, nil
}

// Commit implements state.Committer, appending a new generation whose
// parent is base and whose rows record only the changed keys (a sparse
// diff against the ancestry, not a full copy).
func (s *Store) Commit(ctx context.Context, base string, changes []state.Change) (string, error) {
	baseGen, err := parseGeneration(base)
	if err != nil {
		return "", state.NewReadError(base, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("state/sqlite: begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO state_snapshots (parent) VALUES (?)`, baseGen)
	if err != nil {
		return "", fmt.Errorf("state/sqlite: insert generation: %w", err)
	}
	newGen, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("state/sqlite: read new generation id: %w", err)
	}

	for _, c := range changes {
		deleted := 0
		value := c.Value
		if c.Kind == state.ChangeDelete {
			deleted = 1
			value = ""
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state_values (generation, key, value, deleted) VALUES (?, ?, ?, ?)`,
			newGen, c.Key, value, deleted,
		); err != nil {
			return "", fmt.Errorf("state/sqlite: write change for %q: %w", c.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("state/sqlite: commit generation: %w", err)
	}

	return strconv.FormatInt(newGen, 10), nil
}

func parseGeneration(stateID string) (int64, error) {
	if stateID == "" {
		return 0, nil
	}
	gen, err := strconv.ParseInt(stateID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid generation state id %q: %w", stateID, err)
	}
	return gen, nil
}
