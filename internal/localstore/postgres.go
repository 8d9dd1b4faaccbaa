package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viveLasoAPasoAPI/internal/habit"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS habit_records (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	habit_type  TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	unit        TEXT NOT NULL,
	notes       TEXT,
	mood        TEXT,
	record_date TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	synced      BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS idx_habit_records_user_date ON habit_records (user_id, record_date);
CREATE INDEX IF NOT EXISTS idx_habit_records_unsynced ON habit_records (synced) WHERE NOT synced;
`

const postgresColumns = "id, user_id, habit_type, value, unit, notes, mood, record_date, created_at"

type PostgresStore struct {
	dbURL string
	db    *pgxpool.Pool
}

func NewPostgresStore(dbURL string) *PostgresStore {
	return &PostgresStore{dbURL: dbURL}
}

func (s *PostgresStore) Init(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(s.dbURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	s.db = db

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec habit.Record, synced bool) error {
	query := `
	INSERT INTO habit_records (` + postgresColumns + `, synced)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		habit_type = EXCLUDED.habit_type,
		value = EXCLUDED.value,
		unit = EXCLUDED.unit,
		notes = EXCLUDED.notes,
		mood = EXCLUDED.mood,
		record_date = EXCLUDED.record_date,
		synced = EXCLUDED.synced
	`

	_, err := s.db.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.HabitType),
		rec.Value,
		rec.Unit,
		rec.Notes,
		rec.Mood,
		rec.RecordDate,
		rec.CreatedAt,
		synced,
	)
	if err != nil {
		return fmt.Errorf("failed to save habit record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*habit.Record, error) {
	row := s.db.QueryRow(ctx, `SELECT `+postgresColumns+` FROM habit_records WHERE id = $1`, id)
	rec, err := scanPostgresRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM habit_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit record %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]habit.Record, error) {
	query := `
	SELECT ` + postgresColumns + `
	FROM habit_records
	WHERE user_id = $1
		AND record_date >= $2
		AND record_date <= $3
	ORDER BY record_date DESC
	`

	rows, err := s.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit records: %w", err)
	}
	defer rows.Close()

	return collectPostgresRecords(rows)
}

func (s *PostgresStore) ListUnsynced(ctx context.Context, userID string) ([]habit.Record, error) {
	query := `SELECT ` + postgresColumns + ` FROM habit_records WHERE NOT synced`
	var args []any
	if userID != "" {
		query += ` AND user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY record_date`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced records: %w", err)
	}
	defer rows.Close()

	return collectPostgresRecords(rows)
}

func (s *PostgresStore) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, `UPDATE habit_records SET synced = true WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to mark records synced: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("postgres store not initialized")
	}
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

func scanPostgresRecord(row pgx.Row) (habit.Record, error) {
	var rec habit.Record
	var habitType string

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&habitType,
		&rec.Value,
		&rec.Unit,
		&rec.Notes,
		&rec.Mood,
		&rec.RecordDate,
		&rec.CreatedAt,
	)
	if err != nil {
		return habit.Record{}, err
	}

	rec.HabitType = habit.Type(habitType)
	rec.RecordDate = rec.RecordDate.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func collectPostgresRecords(rows pgx.Rows) ([]habit.Record, error) {
	records := []habit.Record{}
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
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
