package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id              TEXT PRIMARY KEY,
	fingerprint     TEXT NOT NULL,
	policy_identity TEXT NOT NULL,
	decision        TEXT NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	cache_hit       INTEGER NOT NULL DEFAULT 0,
	latency_micros  INTEGER NOT NULL DEFAULT 0,
	observed_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_fingerprint ON audit_records(fingerprint);
CREATE INDEX IF NOT EXISTS idx_audit_observed_at ON audit_records(observed_at);
CREATE INDEX IF NOT EXISTS idx_audit_decision ON audit_records(decision);
`

// SQLiteStorage implements audit.Storage on a SQLite database file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if needed) the database at the
// configured path and prepares the schema.
func NewSQLiteStorage(cfg *config.SQLiteConfig) (*SQLiteStorage, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing audit schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	const query = `INSERT INTO audit_records
		(id, fingerprint, policy_identity, decision, reason, cache_hit, latency_micros, observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	cacheHit := 0
	if record.CacheHit {
		cacheHit = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Fingerprint,
		record.PolicyIdentity,
		record.Decision,
		record.Reason,
		cacheHit,
		record.LatencyMicros,
		record.ObservedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("storing audit record: %w", err)
	}
	return nil
}

// Query returns records matching the filter, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, filter audit.Filter) ([]*audit.Record, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Fingerprint != "" {
		conditions = append(conditions, "fingerprint = ?")
		args = append(args, filter.Fingerprint)
	}
	if filter.PolicyIdentity != "" {
		conditions = append(conditions, "policy_identity = ?")
		args = append(args, filter.PolicyIdentity)
	}
	if filter.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, filter.Decision)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "observed_at >= ?")
		args = append(args, filter.Since.UnixMicro())
	}

	query := `SELECT id, fingerprint, policy_identity, decision, reason, cache_hit, latency_micros, observed_at
		FROM audit_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY observed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	var results []*audit.Record
	for rows.Next() {
		var (
			r          audit.Record
			cacheHit   int
			observedAt int64
		)
		if err := rows.Scan(&r.ID, &r.Fingerprint, &r.PolicyIdentity, &r.Decision, &r.Reason, &cacheHit, &r.LatencyMicros, &observedAt); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		r.CacheHit = cacheHit != 0
		r.ObservedAt = time.UnixMicro(observedAt).UTC()
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit records: %w", err)
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting audit records: %w", err)
	}
	return count, nil
}

// DeleteBefore removes records observed before the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_records WHERE observed_at < ?", cutoff.UnixMicro())
	if err != nil {
		return 0, fmt.Errorf("pruning audit records: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning audit records: %w", err)
	}
	return removed, nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
