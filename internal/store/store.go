// Package store keeps finished optimizer runs in SQLite.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/evaluator"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/search"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	context_hash  TEXT NOT NULL,
	best_damage   REAL NOT NULL,
	stats_json    TEXT NOT NULL,
	builds_zstd   BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_context ON runs(context_hash, created_at);
`

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Summary describes a stored run without its builds.
type Summary struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"createdAt"`
	ContextHash string       `json:"contextHash"`
	BestDamage  float64      `json:"bestDamage"`
	Stats       search.Stats `json:"stats"`
}

// Run is a stored run with its ranked builds.
type Run struct {
	Summary
	Builds []evaluator.Build `json:"builds"`
}

// Store manages saved runs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashContext is the key runs over the same input document share.
func HashContext(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// Save records a finished search. An empty id gets a fresh one.
func (s *Store) Save(id string, doc []byte, res search.Result) (Summary, error) {
	if id == "" {
		id = uuid.New().String()
	}
	sum := Summary{
		ID:          id,
		CreatedAt:   time.Now().UTC(),
		ContextHash: HashContext(doc),
		Stats:       res.Stats,
	}
	if len(res.Builds) > 0 {
		sum.BestDamage = res.Builds[0].Damage
	}

	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return Summary{}, fmt.Errorf("marshal stats: %w", err)
	}
	blob, err := compressBuilds(res.Builds)
	if err != nil {
		return Summary{}, err
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, created_at, context_hash, best_damage, stats_json, builds_zstd)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, sum.CreatedAt.Format(timeLayout), sum.ContextHash, sum.BestDamage, string(statsJSON), blob,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("insert run: %w", err)
	}
	return sum, nil
}

// Get loads one run with its builds.
func (s *Store) Get(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, context_hash, best_damage, stats_json, builds_zstd
		 FROM runs WHERE id = ?`, id)

	var (
		run  Run
		blob []byte
	)
	if err := scanSummary(row, &run.Summary, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	builds, err := decompressBuilds(blob)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", id, err)
	}
	run.Builds = builds
	return run, nil
}

// List returns the newest runs first, at most limit of them. A non-empty
// contextHash restricts the list to runs over that document.
func (s *Store) List(contextHash string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, context_hash, best_damage, stats_json, NULL
		 FROM runs WHERE ? = '' OR context_hash = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		contextHash, contextHash, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum  Summary
			blob []byte
		)
		if err := scanSummary(rows, &sum, &blob); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner, sum *Summary, blob *[]byte) error {
	var created, statsJSON string
	if err := sc.Scan(&sum.ID, &created, &sum.ContextHash, &sum.BestDamage, &statsJSON, blob); err != nil {
		return err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	sum.CreatedAt = t
	if err := json.Unmarshal([]byte(statsJSON), &sum.Stats); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return nil
}

func compressBuilds(builds []evaluator.Build) ([]byte, error) {
	raw, err := json.Marshal(builds)
	if err != nil {
		return nil, fmt.Errorf("marshal builds: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func decompressBuilds(blob []byte) ([]evaluator.Build, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress builds: %w", err)
	}
	var builds []evaluator.Build
	if err := json.Unmarshal(raw, &builds); err != nil {
		return nil, fmt.Errorf("unmarshal builds: %w", err)
	}
	return builds, nil
}
