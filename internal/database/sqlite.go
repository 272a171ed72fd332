package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kb_topics (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS kb_sources (
			topic TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			credibility REAL NOT NULL,
			supports INTEGER NOT NULL,
			excerpt TEXT NOT NULL,
			PRIMARY KEY (topic, position),
			FOREIGN KEY (topic) REFERENCES kb_topics(name) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL,
			remote_addr TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			method TEXT NOT NULL,
			request_size INTEGER NOT NULL,
			response_code INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_logs(timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTopic validates topic and replaces any stored topic of the same name.
// New topics are appended after existing ones; replaced topics keep their place.
func (s *SQLiteStore) SaveTopic(ctx context.Context, topic knowledge.Topic) error {
	// Validate through the same rules the in-memory base applies.
	if _, err := knowledge.New([]knowledge.Topic{topic}); err != nil {
		return err
	}
	name := strings.ToLower(strings.TrimSpace(topic.Name))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kb_topics (name, position, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM kb_topics), ?)
		ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save topic: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM kb_sources WHERE topic = ?`, name); err != nil {
		return fmt.Errorf("failed to clear sources: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kb_sources (topic, position, title, credibility, supports, excerpt)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, src := range topic.Sources {
		if _, err := stmt.ExecContext(ctx, name, i, src.Title, src.Credibility, src.Supports, src.Excerpt); err != nil {
			return fmt.Errorf("failed to save source %q: %w", src.Title, err)
		}
	}

	return tx.Commit()
}

// DeleteTopic removes a topic and its sources.
func (s *SQLiteStore) DeleteTopic(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kb_topics WHERE name = ?`, strings.ToLower(strings.TrimSpace(name)))
	return err
}

// LoadKnowledgeBase builds a knowledge base from the catalog, preserving topic
// and source order.
func (s *SQLiteStore) LoadKnowledgeBase(ctx context.Context) (*knowledge.Base, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, s.title, s.credibility, s.supports, s.excerpt
		FROM kb_topics t LEFT JOIN kb_sources s ON s.topic = t.name
		ORDER BY t.position, s.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge base: %w", err)
	}
	defer rows.Close()

	var topics []knowledge.Topic
	for rows.Next() {
		var name string
		var title, excerpt sql.NullString
		var credibility sql.NullFloat64
		var supports sql.NullBool
		if err := rows.Scan(&name, &title, &credibility, &supports, &excerpt); err != nil {
			return nil, err
		}
		if len(topics) == 0 || topics[len(topics)-1].Name != name {
			topics = append(topics, knowledge.Topic{Name: name})
		}
		if !title.Valid {
			continue
		}
		last := &topics[len(topics)-1]
		last.Sources = append(last.Sources, knowledge.Source{
			Title:       title.String,
			Credibility: credibility.Float64,
			Supports:    supports.Bool,
			Excerpt:     excerpt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return knowledge.New(topics)
}

// ListTopics returns every stored topic with its source count and mean credibility.
func (s *SQLiteStore) ListTopics(ctx context.Context) ([]models.TopicSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, COUNT(s.title), COALESCE(AVG(s.credibility), 0)
		FROM kb_topics t LEFT JOIN kb_sources s ON s.topic = t.name
		GROUP BY t.name ORDER BY t.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.TopicSummary{}
	for rows.Next() {
		var ts models.TopicSummary
		if err := rows.Scan(&ts.Topic, &ts.SourceCount, &ts.AverageCredibility); err != nil {
			return nil, err
		}
		summaries = append(summaries, ts)
	}
	return summaries, rows.Err()
}

// LogRequest stores an audit log entry.
func (s *SQLiteStore) LogRequest(ctx context.Context, log *models.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, request_id, remote_addr, endpoint, method, request_size, response_code, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.RequestID, log.RemoteAddr, log.Endpoint, log.Method, log.RequestSize,
		log.ResponseCode, log.DurationMs, log.Timestamp)
	return err
}

// GetAuditLogs returns paginated audit logs, newest first.
func (s *SQLiteStore) GetAuditLogs(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, remote_addr, endpoint, method, request_size, response_code, duration_ms, timestamp
		FROM audit_logs ORDER BY timestamp DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.RequestID, &l.RemoteAddr, &l.Endpoint, &l.Method,
			&l.RequestSize, &l.ResponseCode, &l.DurationMs, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
