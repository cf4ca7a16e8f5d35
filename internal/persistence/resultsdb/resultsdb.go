// Package resultsdb keeps an SQLite index of finished diffusion runs so that
// repeated inputs can be recognised and earlier timings compared.
package resultsdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded evaluation. Digest, Engine, WordBits, Rounds, Order
// and Stable together identify comparable runs.
type Run struct {
	Input       string
	Digest      string
	Engine      string
	WordBits    int
	Order       string
	Stable      bool
	Rows        int
	Cols        int
	Rounds      int
	Empty       int
	StableRound int
	Elapsed     time.Duration
	RecordedAt  time.Time
}

// Index is an open results database.
type Index struct {
	db *sql.DB
}

// Digest returns the hex SHA-256 of a layout, used to match repeated inputs.
func Digest(layout string) string {
	sum := sha256.Sum256([]byte(layout))
	return hex.EncodeToString(sum[:])
}

// OpenSQLite opens or creates the database at path, creating its directory.
func OpenSQLite(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

const columns = `input,digest,engine,word_bits,priority_order,stable,grid_rows,grid_cols,rounds,empty,stable_round,elapsed_ns,recorded_at`

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			digest TEXT NOT NULL,
			engine TEXT NOT NULL,
			word_bits INTEGER NOT NULL,
			priority_order TEXT NOT NULL,
			stable INTEGER NOT NULL,
			grid_rows INTEGER NOT NULL,
			grid_cols INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			empty INTEGER NOT NULL,
			stable_round INTEGER NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_digest ON runs(digest, engine, word_bits, rounds, priority_order, stable);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record appends r. A zero RecordedAt is replaced by the current time.
func (x *Index) Record(ctx context.Context, r Run) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	_, err := x.db.ExecContext(ctx,
		`INSERT INTO runs(`+columns+`)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.Input, r.Digest, r.Engine, r.WordBits, r.Order, r.Stable, r.Rows, r.Cols, r.Rounds, r.Empty, r.StableRound,
		r.Elapsed.Nanoseconds(), r.RecordedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record %s: %w", r.Input, err)
	}
	return nil
}

// Lookup returns the most recent run comparable to key: same layout, engine,
// word width, round budget, priority order and stable flag.
func (x *Index) Lookup(ctx context.Context, key Run) (Run, bool, error) {
	row := x.db.QueryRowContext(ctx,
		`SELECT `+columns+`
		 FROM runs WHERE digest=? AND engine=? AND word_bits=? AND rounds=? AND priority_order=? AND stable=?
		 ORDER BY id DESC LIMIT 1`,
		key.Digest, key.Engine, key.WordBits, key.Rounds, key.Order, key.Stable)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return r, true, nil
}

// Recent returns up to n runs, newest first.
func (x *Index) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT `+columns+`
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r         Run
		elapsedNs int64
		recorded  string
	)
	if err := s.Scan(&r.Input, &r.Digest, &r.Engine, &r.WordBits, &r.Order, &r.Stable, &r.Rows, &r.Cols, &r.Rounds,
		&r.Empty, &r.StableRound, &elapsedNs, &recorded); err != nil {
		return Run{}, err
	}
	r.Elapsed = time.Duration(elapsedNs)
	t, err := time.Parse(time.RFC3339Nano, recorded)
	if err != nil {
		return Run{}, fmt.Errorf("recorded_at %q: %w", recorded, err)
	}
	r.RecordedAt = t
	return r, nil
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}
