// Package snapshot keeps an audit trail of cost basis summaries in SQLite.
//
// A snapshot stores the summary as it was reported: its lots, its market
// inputs and every computed figure. On read the summary is recomputed from
// the stored inputs and compared with the reported figures, so a change in
// the computation never silently rewrites the audit trail.
package snapshot

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/costbasis"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	symbol     TEXT NOT NULL,
	as_of      TEXT NOT NULL,
	priced     INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	body       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_symbol ON snapshots(symbol, created_at);
`

// Snapshot is a stored summary.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	// Summary is recomputed from the stored lots and market inputs.
	Summary costbasis.Summary
	// Reported is the summary JSON exactly as it was saved.
	Reported json.RawMessage
	// Drifted is true when Summary no longer matches the Reported figures.
	Drifted bool
}

// Store handles snapshot persistence.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens (or creates) the snapshot database at path. Use ":memory:" for tests.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	s, err := New(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a store on an existing database and ensures the schema exists.
func New(db *sql.DB, log zerolog.Logger) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &Store{
		db:  db,
		log: log.With().Str("repository", "snapshot").Logger(),
		now: time.Now,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save records a summary and returns the new snapshot ID.
func (s *Store) Save(ctx context.Context, summary costbasis.Summary) (string, error) {
	body, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, symbol, as_of, priced, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		id,
		summary.Symbol,
		summary.AsOf.String(),
		summary.IsPriced(),
		s.now().UnixNano(),
		string(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}
	s.log.Debug().Str("id", id).Str("symbol", summary.Symbol).Msg("snapshot saved")
	return id, nil
}

// Get returns the snapshot with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at, body FROM snapshots WHERE id = ?`, id)
	snap, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap, err
}

// List returns the snapshots of symbol, oldest first. An empty symbol lists every snapshot.
func (s *Store) List(ctx context.Context, symbol string) ([]Snapshot, error) {
	query := `SELECT id, created_at, body FROM snapshots WHERE symbol = ? ORDER BY created_at, id`
	args := []any{symbol}
	if symbol == "" {
		query = `SELECT id, created_at, body FROM snapshots ORDER BY created_at, id`
		args = nil
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scan(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}
	return snaps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Snapshot, error) {
	var (
		snap    Snapshot
		created int64
		body    string
	)
	if err := row.Scan(&snap.ID, &created, &body); err != nil {
		return Snapshot{}, err
	}
	snap.CreatedAt = time.Unix(0, created)
	snap.Reported = json.RawMessage(body)
	if err := json.Unmarshal(snap.Reported, &snap.Summary); err != nil {
		return Snapshot{}, fmt.Errorf("corrupted snapshot %s: %w", snap.ID, err)
	}
	recomputed, err := json.Marshal(snap.Summary)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}
	var reported bytes.Buffer
	if err := json.Compact(&reported, snap.Reported); err != nil {
		return Snapshot{}, fmt.Errorf("corrupted snapshot %s: %w", snap.ID, err)
	}
	snap.Drifted = !bytes.Equal(reported.Bytes(), recomputed)
	return snap, nil
}
