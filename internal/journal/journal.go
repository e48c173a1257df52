// Package journal keeps a local sqlite record of how article pages were
// resolved, per domain. It stores domains and outcomes only.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const table = "resolutions"

type Journal struct {
	readDB  *sql.DB
	writeDB *sql.DB
	// run tags every attempt recorded through this handle
	run string
}

// DomainStats summarises the attempts recorded for one domain.
type DomainStats struct {
	Domain      string
	Total       int
	Direct      int
	Fallback    int
	Empty       int
	Failed      int
	Runs        int
	AvgDuration time.Duration
	LastSeen    time.Time
}

func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	j := &Journal{writeDB: writeDB, run: uuid.NewString()}
	if err := j.init(); err != nil {
		j.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	j.readDB = readDB
	return j, nil
}

func (j *Journal) init() error {
	_, err := j.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS resolutions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			domain      TEXT NOT NULL,
			method      TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			reason      TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			resolved_at INTEGER NOT NULL,
			run_id      TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_resolutions_domain ON resolutions(domain);
		CREATE INDEX IF NOT EXISTS idx_resolutions_resolved_at ON resolutions(resolved_at);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Run identifies this process's attempts in the journal.
func (j *Journal) Run() string {
	return j.run
}

func (j *Journal) Close() error {
	var first error
	for _, db := range []*sql.DB{j.readDB, j.writeDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Record stores one attempt. Attempts without a domain are ignored.
func (j *Journal) Record(ctx context.Context, a news.Attempt) error {
	if a.Domain == "" {
		return nil
	}
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}

	query, args, err := sq.Insert(table).
		Columns("domain", "method", "outcome", "reason", "duration_ms", "resolved_at", "run_id").
		Values(a.Domain, a.Method.String(), a.Outcome, a.Reason, a.Duration.Milliseconds(), at.Unix(), j.run).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := j.writeDB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording %s: %w", a.Domain, err)
	}
	return nil
}

// Stats returns per-domain totals for attempts at or after since, most
// attempted domains first. A zero since covers everything; limit <= 0
// means 50.
func (j *Journal) Stats(ctx context.Context, since time.Time, limit int) ([]DomainStats, error) {
	if limit <= 0 {
		limit = 50
	}

	builder := sq.Select(
		"domain",
		"COUNT(*) AS total",
		"SUM(CASE WHEN method = 'direct' AND outcome != 'failed' THEN 1 ELSE 0 END)",
		"SUM(CASE WHEN method = 'fallback' AND outcome != 'failed' THEN 1 ELSE 0 END)",
		"SUM(CASE WHEN outcome = 'empty' THEN 1 ELSE 0 END)",
		"SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END)",
		"COUNT(DISTINCT run_id)",
		"CAST(AVG(duration_ms) AS INTEGER)",
		"MAX(resolved_at)",
	).
		From(table).
		GroupBy("domain").
		OrderBy("total DESC", "domain ASC").
		Limit(uint64(limit))
	if !since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"resolved_at": since.Unix()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building stats query: %w", err)
	}
	rows, err := j.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var out []DomainStats
	for rows.Next() {
		var (
			s        DomainStats
			avgMS    int64
			lastSeen int64
		)
		if err := rows.Scan(&s.Domain, &s.Total, &s.Direct, &s.Fallback, &s.Empty, &s.Failed, &s.Runs, &avgMS, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}
		s.AvgDuration = time.Duration(avgMS) * time.Millisecond
		s.LastSeen = time.Unix(lastSeen, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes attempts older than before and reports how many went.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := sq.Delete(table).
		Where(sq.Lt{"resolved_at": before.Unix()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building prune: %w", err)
	}
	res, err := j.writeDB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning journal: %w", err)
	}
	return res.RowsAffected()
}
