// Package store persists composed digests so a (field, week) digest is
// produced once and can be served afterwards.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

// ErrNotFound is returned when no digest has the requested id.
var ErrNotFound = errors.New("digest not found")

// Record is the persisted artifact: the digest, the articles it was composed
// from, and opaque delivery-side metadata such as rendered file paths.
type Record struct {
	Digest     *core.ComposedDigest `json:"digest"`
	Articles   []core.Article       `json:"articles"`
	Validation *validation.Result   `json:"validation,omitempty"`
	Artifacts  map[string]string    `json:"artifacts,omitempty"`
}

// Summary is one row of a digest listing.
type Summary struct {
	ID          string       `json:"id"`
	Field       core.FieldID `json:"field"`
	Year        int          `json:"year"`
	Week        int          `json:"week"`
	Articles    int          `json:"articles"`
	ReadingTime int          `json:"reading_time"`
	ComposedAt  time.Time    `json:"composed_at"`
}

// Store represents the SQL digest store
type Store struct {
	db     *sql.DB
	driver string
	path   string
	sb     sq.StatementBuilderType
}

const schema = `
CREATE TABLE IF NOT EXISTS digests (
	id TEXT PRIMARY KEY,
	field TEXT NOT NULL,
	year INTEGER NOT NULL,
	week INTEGER NOT NULL,
	article_count INTEGER NOT NULL,
	reading_time INTEGER NOT NULL,
	composed_at BIGINT NOT NULL,
	payload TEXT NOT NULL,
	updated_at BIGINT NOT NULL
)`

const fieldIndex = `CREATE INDEX IF NOT EXISTS idx_digests_field_composed ON digests (field, composed_at)`

// Open opens the store selected by cfg.
func Open(cfg config.Database) (*Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DataDir)
	case "postgres":
		return NewPostgres(cfg.DSN)
	default:
		return nil, &core.ConfigurationError{Field: "database.driver", Message: fmt.Sprintf("unsupported driver %q", cfg.Driver)}
	}
}

// NewSQLite creates a store backed by a SQLite file in dataDir.
func NewSQLite(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "scholarly.db")
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return initialize(db, "sqlite", dbPath, sq.Question)
}

// NewPostgres creates a store backed by Postgres.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return initialize(db, "postgres", "", sq.Dollar)
}

func initialize(db *sql.DB, driver, path string, placeholders sq.PlaceholderFormat) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range []string{schema, fieldIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	return &Store{
		db:     db,
		driver: driver,
		path:   path,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholders),
	}, nil
}

// Driver returns "sqlite" or "postgres".
func (s *Store) Driver() string { return s.driver }

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDigest inserts the record, replacing any digest stored under the same id.
func (s *Store) SaveDigest(ctx context.Context, rec Record) error {
	if rec.Digest == nil || rec.Digest.ID == "" {
		return errors.New("save digest: record has no digest id")
	}
	d := rec.Digest

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode digest %s: %w", d.ID, err)
	}

	query, args, err := s.sb.Insert("digests").
		Columns("id", "field", "year", "week", "article_count", "reading_time", "composed_at", "payload", "updated_at").
		Values(d.ID, string(d.Field), d.Year, d.WeekNumber, len(d.FeaturedArticles), d.TotalReadingTime,
			d.ComposedAt.UnixNano(), string(payload), time.Now().UnixNano()).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			field = EXCLUDED.field,
			year = EXCLUDED.year,
			week = EXCLUDED.week,
			article_count = EXCLUDED.article_count,
			reading_time = EXCLUDED.reading_time,
			composed_at = EXCLUDED.composed_at,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save digest %s: %w", d.ID, err)
	}
	return nil
}

// GetDigest loads a record by digest id.
func (s *Store) GetDigest(ctx context.Context, id string) (*Record, error) {
	query, args, err := s.sb.Select("payload").From("digests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var payload string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load digest %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode digest %s: %w", id, err)
	}
	return &rec, nil
}

// DigestExists reports whether a digest is stored under id.
func (s *Store) DigestExists(ctx context.Context, id string) (bool, error) {
	query, args, err := s.sb.Select("COUNT(*)").From("digests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build select: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check digest %s: %w", id, err)
	}
	return n > 0, nil
}

// ListDigests returns digests newest first. An empty field lists every field;
// limit <= 0 means no limit.
func (s *Store) ListDigests(ctx context.Context, field core.FieldID, limit int) ([]Summary, error) {
	q := s.sb.Select("id", "field", "year", "week", "article_count", "reading_time", "composed_at").
		From("digests").
		OrderBy("composed_at DESC", "id")
	if field != "" {
		q = q.Where(sq.Eq{"field": string(field)})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var (
			sum        Summary
			rawField   string
			composedAt int64
		)
		if err := rows.Scan(&sum.ID, &rawField, &sum.Year, &sum.Week, &sum.Articles, &sum.ReadingTime, &composedAt); err != nil {
			return nil, fmt.Errorf("failed to scan digest: %w", err)
		}
		sum.Field = core.FieldID(rawField)
		sum.ComposedAt = time.Unix(0, composedAt).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteDigest removes a digest. Deleting a missing id is not an error.
func (s *Store) DeleteDigest(ctx context.Context, id string) error {
	query, args, err := s.sb.Delete("digests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete digest %s: %w", id, err)
	}
	return nil
}

// Stats represents store statistics
type Stats struct {
	DigestCount int
	Size        int64 // database file size; 0 for Postgres
	LastUpdated time.Time
}

// Stats returns statistics about the store
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM digests").Scan(&stats.DigestCount); err != nil {
		return nil, fmt.Errorf("failed to get count: %w", err)
	}
	if s.path != "" {
		if info, err := os.Stat(s.path); err == nil {
			stats.Size = info.Size()
			stats.LastUpdated = info.ModTime()
		}
	}
	return stats, nil
}
