package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// DefaultPath is the database location used when none is configured.
const DefaultPath = "data/docintel.db"

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Ensure Store implements the interface.
var _ driven.AuditLog = (*Store)(nil)

// Store is the SQLite-backed audit log.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path and applies pending migrations.
// If path is empty, DefaultPath is used.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("audit log: opened %s", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		logger.Debug("audit log: applied migration %s", name)
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LogInteraction appends an answered question and returns its row ID.
func (s *Store) LogInteraction(ctx context.Context, in domain.Interaction) (int64, error) {
	retrieved, err := marshalResults(in.Retrieved)
	if err != nil {
		return 0, fmt.Errorf("marshalling retrieved chunks: %w", err)
	}
	citations, err := marshalResults(in.Citations)
	if err != nil {
		return 0, fmt.Errorf("marshalling citations: %w", err)
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	if in.Status == "" {
		in.Status = domain.AnswerStatusAnswered
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_logs (timestamp, question, retrieved_chunks, answer, citations, execution_time, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, formatTime(in.Timestamp), in.Question, retrieved, in.Answer, citations,
		in.ExecutionTime.Seconds(), string(in.Status), nullString(in.Error))
	if err != nil {
		return 0, fmt.Errorf("logging interaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading interaction id: %w", err)
	}
	logger.Debug("audit log: logged interaction %d", id)
	return id, nil
}

// LogMetric appends a measurement.
func (s *Store) LogMetric(ctx context.Context, m domain.Metric) error {
	var metadata sql.NullString
	if len(m.Metadata) > 0 {
		b, err := json.Marshal(m.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metric metadata: %w", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_metrics (timestamp, metric_name, metric_value, metadata)
		VALUES (?, ?, ?, ?)
	`, formatTime(m.Timestamp), m.Name, m.Value, metadata)
	if err != nil {
		return fmt.Errorf("logging metric %s: %w", m.Name, err)
	}
	return nil
}

// LogTestQuery appends an evaluation result.
func (s *Store) LogTestQuery(ctx context.Context, q domain.TestQuery) error {
	citations, err := marshalResults(q.Citations)
	if err != nil {
		return fmt.Errorf("marshalling citations: %w", err)
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO test_queries (query, expected_topic, answer, citations, timestamp, success)
		VALUES (?, ?, ?, ?, ?, ?)
	`, q.Query, q.ExpectedTopic, q.Answer, citations, formatTime(q.Timestamp), q.Success)
	if err != nil {
		return fmt.Errorf("logging test query: %w", err)
	}
	return nil
}

// RecentInteractions returns up to limit interactions, newest first.
func (s *Store) RecentInteractions(ctx context.Context, limit int) ([]domain.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, question, retrieved_chunks, answer, citations, execution_time, status, error
		FROM chat_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, normaliseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var (
			in                   domain.Interaction
			ts, status           string
			retrieved, citations sql.NullString
			execTime             sql.NullFloat64
			errText              sql.NullString
		)
		if err := rows.Scan(&in.ID, &ts, &in.Question, &retrieved, &in.Answer, &citations,
			&execTime, &status, &errText); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		if in.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		if in.Retrieved, err = unmarshalResults(retrieved); err != nil {
			return nil, fmt.Errorf("interaction %d retrieved chunks: %w", in.ID, err)
		}
		if in.Citations, err = unmarshalResults(citations); err != nil {
			return nil, fmt.Errorf("interaction %d citations: %w", in.ID, err)
		}
		in.ExecutionTime = time.Duration(execTime.Float64 * float64(time.Second))
		in.Status = domain.AnswerStatus(status)
		in.Error = errText.String
		out = append(out, in)
	}
	return out, rows.Err()
}

// Metrics returns up to limit measurements named name, newest first.
// An empty name matches every metric.
func (s *Store) Metrics(ctx context.Context, name string, limit int) ([]domain.Metric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, metric_name, metric_value, metadata
		FROM system_metrics
		WHERE ? = '' OR metric_name = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, name, name, normaliseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.Metric
	for rows.Next() {
		var (
			m        domain.Metric
			ts       string
			value    sql.NullFloat64
			metadata sql.NullString
		)
		if err := rows.Scan(&m.ID, &ts, &m.Name, &value, &metadata); err != nil {
			return nil, fmt.Errorf("scanning metric: %w", err)
		}
		if m.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		m.Value = value.Float64
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &m.Metadata); err != nil {
				return nil, fmt.Errorf("metric %d metadata: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TestQueries returns every evaluation result in insertion order.
func (s *Store) TestQueries(ctx context.Context) ([]domain.TestQuery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, expected_topic, answer, citations, timestamp, success
		FROM test_queries
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying test queries: %w", err)
	}
	defer rows.Close()

	var out []domain.TestQuery
	for rows.Next() {
		var (
			q         domain.TestQuery
			expected  sql.NullString
			citations sql.NullString
			ts        string
		)
		if err := rows.Scan(&q.ID, &q.Query, &expected, &q.Answer, &citations, &ts, &q.Success); err != nil {
			return nil, fmt.Errorf("scanning test query: %w", err)
		}
		q.ExpectedTopic = expected.String
		if q.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		if q.Citations, err = unmarshalResults(citations); err != nil {
			return nil, fmt.Errorf("test query %d citations: %w", q.ID, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// normaliseLimit maps a non-positive limit to SQLite's "no limit".
func normaliseLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func marshalResults(results []domain.RetrievalResult) (string, error) {
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	b, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalResults(s sql.NullString) ([]domain.RetrievalResult, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var results []domain.RetrievalResult
	if err := json.Unmarshal([]byte(s.String), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// nullString converts an empty string to sql.NullString{Valid: false}.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
