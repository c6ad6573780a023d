package datastore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Publish run statuses recorded in the history table
const (
	StatusStarted   = "STARTED"
	StatusPublished = "PUBLISHED"
	StatusFailed    = "FAILED"
)

// HistoryStore wraps the SQL database connection and records every
// workflow run and the post it produced.
type HistoryStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// PublishHistoryEntry represents a record in the publish_history table.
type PublishHistoryEntry struct {
	ID           int64
	SessionID    string
	WorkflowID   string
	StartTime    time.Time
	EndTime      sql.NullTime
	Status       string
	PostFilePath sql.NullString
	PostTitle    sql.NullString
	DebugURL     sql.NullString
	ErrorMessage sql.NullString
}

// NewHistoryStore initializes a new store and ensures the schema is set up.
func NewHistoryStore(dataSourceName string, logger zerolog.Logger) (*HistoryStore, error) {
	componentLogger := logger.With().Str("component", "HistoryStore").Logger()
	componentLogger.Info().Str("db_path", dataSourceName).Msg("Initializing publish history database connection")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		componentLogger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		componentLogger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	store := &HistoryStore{
		db:     dbInstance,
		logger: componentLogger,
	}

	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		componentLogger.Error().Err(err).Msg("Failed to initialize database schema")
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the publish_history table if it doesn't already exist.
func (s *HistoryStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS publish_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT UNIQUE,
		workflow_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		status TEXT NOT NULL,
		post_file_path TEXT,
		post_title TEXT,
		debug_url TEXT,
		error_message TEXT
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize publish_history schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a new record with status STARTED and returns the
// ID of the newly inserted row.
func (s *HistoryStore) RecordRunStart(sessionID, workflowID string, startTime time.Time) (int64, error) {
	query := `INSERT INTO publish_history (session_id, workflow_id, start_time, status) VALUES (?, ?, ?, ?)`
	result, err := s.db.Exec(query, sessionID, workflowID, startTime, StatusStarted)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to record run start")
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	s.logger.Debug().Int64("db_id", id).Str("session_id", sessionID).Msg("Recorded run start")
	return id, nil
}

// RecordRunCompletion updates an existing record with completion details.
func (s *HistoryStore) RecordRunCompletion(id int64, endTime time.Time, status, postFilePath, postTitle, debugURL, errorMessage string) error {
	query := `UPDATE publish_history SET end_time = ?, status = ?, post_file_path = ?, post_title = ?, debug_url = ?, error_message = ? WHERE id = ?`
	_, err := s.db.Exec(query,
		endTime,
		status,
		sql.NullString{String: postFilePath, Valid: postFilePath != ""},
		sql.NullString{String: postTitle, Valid: postTitle != ""},
		sql.NullString{String: debugURL, Valid: debugURL != ""},
		sql.NullString{String: errorMessage, Valid: errorMessage != ""},
		id,
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("db_id", id).Msg("Failed to record run completion")
		return fmt.Errorf("failed to update run completion for ID %d: %w", id, err)
	}

	s.logger.Debug().Int64("db_id", id).Str("status", status).Msg("Recorded run completion")
	return nil
}

// GetLastPublishTime retrieves the start time of the most recent
// successfully published run. sql.ErrNoRows is returned when no run has
// been published yet.
func (s *HistoryStore) GetLastPublishTime() (*time.Time, error) {
	query := `SELECT start_time FROM publish_history WHERE status = ? ORDER BY start_time DESC LIMIT 1`
	var startTime time.Time
	err := s.db.QueryRow(query, StatusPublished).Scan(&startTime)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Debug().Msg("No published run found in history")
			return nil, err
		}
		return nil, fmt.Errorf("failed to query last publish time: %w", err)
	}

	return &startTime, nil
}

// GetEntryBySession retrieves one history entry by its session ID.
func (s *HistoryStore) GetEntryBySession(sessionID string) (*PublishHistoryEntry, error) {
	query := `SELECT id, session_id, workflow_id, start_time, end_time, status, post_file_path, post_title, debug_url, error_message
		FROM publish_history WHERE session_id = ?`

	var entry PublishHistoryEntry
	err := s.db.QueryRow(query, sessionID).Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.WorkflowID,
		&entry.StartTime,
		&entry.EndTime,
		&entry.Status,
		&entry.PostFilePath,
		&entry.PostTitle,
		&entry.DebugURL,
		&entry.ErrorMessage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history entry for session %s: %w", sessionID, err)
	}

	return &entry, nil
}
