package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/afroash/roomsim/internal/models"
	"github.com/afroash/roomsim/internal/stats"
)

// Store defines the interface for the flat SQLite export of simulation runs
type Store interface {
	Close() error
	Migrate() error
	InsertBatch(runID string, events []models.Event) error
	CountReadings(runID string) (int64, error)
	GetRoomStats(runID string) ([]RoomKindStat, error)
	VerifyRun(runID string, want []stats.RoomStatistics) error
	GetRunIDs() ([]string, error)
	DeleteRun(runID string) (int64, error)
	GetStorageStats() (*StorageStats, error)
}

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore writes simulation events to a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RoomKindStat is the SQL aggregate of one room and sensor kind within a run
type RoomKindStat struct {
	Room         string      `json:"room"`
	Kind         models.Kind `json:"sensor_type"`
	MinValue     float64     `json:"min_value"`
	MaxValue     float64     `json:"max_value"`
	AvgValue     float64     `json:"avg_value"`
	ReadingCount int         `json:"reading_count"`
}

// StorageStats contains information about the database
type StorageStats struct {
	TotalReadings  int64   `json:"total_readings"`
	Runs           int     `json:"runs"`
	Rooms          int     `json:"rooms"`
	DatabaseSizeMB float64 `json:"database_size_mb"`
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("SQLite store initialized")

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the database schema if it doesn't exist
func (s *SQLiteStore) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		sensor_type TEXT NOT NULL,
		room TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		occupied INTEGER,
		hour REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_readings_run_room ON readings(run_id, room, sensor_type);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Debug().Msg("Database schema migrated")
	return nil
}

const insertReading = `
	INSERT INTO readings (run_id, sensor_type, room, value, unit, occupied, hour)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

func occupiedColumn(e models.Event) sql.NullBool {
	if e.Occupied == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *e.Occupied, Valid: true}
}

// InsertBatch inserts multiple events in a single transaction
func (s *SQLiteStore) InsertBatch(runID string, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertReading)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.Exec(
			runID,
			string(e.Kind),
			e.Room,
			e.Value,
			e.Unit,
			occupiedColumn(e),
			e.Hour,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reading in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug().Str("run_id", runID).Int("count", len(events)).Msg("Batch insert completed")
	return nil
}

// CountReadings returns the number of events stored for a run
func (s *SQLiteStore) CountReadings(runID string) (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM readings WHERE run_id = ?", runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return n, nil
}

// GetRoomStats aggregates a run per room and sensor kind
func (s *SQLiteStore) GetRoomStats(runID string) ([]RoomKindStat, error) {
	query := `
		SELECT
			room,
			sensor_type,
			MIN(value) as min_value,
			MAX(value) as max_value,
			AVG(value) as avg_value,
			COUNT(*) as reading_count
		FROM readings
		WHERE run_id = ?
		GROUP BY room, sensor_type
		ORDER BY MIN(id)
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query room stats: %w", err)
	}
	defer rows.Close()

	var result []RoomKindStat
	for rows.Next() {
		var stat RoomKindStat
		var kind string

		err := rows.Scan(
			&stat.Room,
			&kind,
			&stat.MinValue,
			&stat.MaxValue,
			&stat.AvgValue,
			&stat.ReadingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room stat: %w", err)
		}
		stat.Kind = models.Kind(kind)

		result = append(result, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// GetRunIDs returns every run stored in the database, oldest first
func (s *SQLiteStore) GetRunIDs() ([]string, error) {
	rows, err := s.db.Query("SELECT run_id FROM readings GROUP BY run_id ORDER BY MIN(id)")
	if err != nil {
		return nil, fmt.Errorf("failed to query run IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// DeleteRun removes every event of a run
func (s *SQLiteStore) DeleteRun(runID string) (int64, error) {
	result, err := s.db.Exec("DELETE FROM readings WHERE run_id = ?", runID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete run: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Info().
		Str("run_id", runID).
		Int64("deleted", deleted).
		Msg("Deleted run")

	return deleted, nil
}

// GetStorageStats returns statistics about the database
func (s *SQLiteStore) GetStorageStats() (*StorageStats, error) {
	st := &StorageStats{}

	err := s.db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&st.TotalReadings)
	if err != nil {
		return nil, fmt.Errorf("failed to count readings: %w", err)
	}

	if st.TotalReadings == 0 {
		return st, nil
	}

	err = s.db.QueryRow("SELECT COUNT(DISTINCT run_id), COUNT(DISTINCT room) FROM readings").
		Scan(&st.Runs, &st.Rooms)
	if err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	var pageCount, pageSize int64
	s.db.QueryRow("PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	st.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)

	return st, nil
}
