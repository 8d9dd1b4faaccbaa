package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"viveLasoAPasoAPI/internal/habit"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS habit_records (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	habit_type  TEXT NOT NULL,
	value       REAL NOT NULL,
	unit        TEXT NOT NULL,
	notes       TEXT,
	mood        TEXT,
	record_date INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	synced      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_habit_records_user_date ON habit_records (user_id, record_date);
CREATE INDEX IF NOT EXISTS idx_habit_records_synced ON habit_records (synced);
`

const sqliteColumns = "id, user_id, habit_type, value, unit, notes, mood, record_date, created_at"

// SQLiteStore stores timestamps as unix milliseconds so range filters compare
// integers.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	if s.path != ":memory:" {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	dsn := "file:" + s.path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection avoids SQLITE_BUSY between concurrent writers.
	db.SetMaxOpenConns(1)
	s.db = db

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec habit.Record, synced bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_records (`+sqliteColumns+`, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			habit_type = excluded.habit_type,
			value = excluded.value,
			unit = excluded.unit,
			notes = excluded.notes,
			mood = excluded.mood,
			record_date = excluded.record_date,
			synced = excluded.synced`,
		rec.ID,
		rec.UserID,
		string(rec.HabitType),
		rec.Value,
		rec.Unit,
		nullString(rec.Notes),
		nullString(rec.Mood),
		rec.RecordDate.UnixMilli(),
		rec.CreatedAt.UnixMilli(),
		boolToInt(synced),
	)
	if err != nil {
		return fmt.Errorf("failed to save habit record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*habit.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM habit_records WHERE id = ?`, id)
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habit_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete habit record %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]habit.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM habit_records
		WHERE user_id = ? AND record_date >= ? AND record_date <= ?
		ORDER BY record_date DESC`,
		userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list habit records: %w", err)
	}
	defer rows.Close()

	return collectSQLiteRecords(rows)
}

func (s *SQLiteStore) ListUnsynced(ctx context.Context, userID string) ([]habit.Record, error) {
	query := `SELECT ` + sqliteColumns + ` FROM habit_records WHERE synced = 0`
	var args []any
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY record_date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced records: %w", err)
	}
	defer rows.Close()

	return collectSQLiteRecords(rows)
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.ExecContext(ctx, `UPDATE habit_records SET synced = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to mark records synced: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("sqlite store not initialized")
	}
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (habit.Record, error) {
	var rec habit.Record
	var habitType string
	var notes, mood sql.NullString
	var recordDate, createdAt int64

	err := row.Scan(&rec.ID, &rec.UserID, &habitType, &rec.Value, &rec.Unit, &notes, &mood, &recordDate, &createdAt)
	if err != nil {
		return habit.Record{}, err
	}

	rec.HabitType = habit.Type(habitType)
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if mood.Valid {
		rec.Mood = &mood.String
	}
	rec.RecordDate = time.UnixMilli(recordDate).UTC()
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

func collectSQLiteRecords(rows *sql.Rows) ([]habit.Record, error) {
	records := []habit.Record{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habit records: %w", err)
	}
	return records, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
