package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/d1vyadharsh1n1/MetroX/core/history"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// SQLiteStore persists daily feeds in a SQLite database, one row per train
// and date.
type SQLiteStore struct {
	db *sql.DB
}

var _ history.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS daily_data (
        day TEXT,
        train_id TEXT,
        record TEXT,
        PRIMARY KEY(day, train_id)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveDay deletes the rows of date and inserts recs in one transaction.
func (s *SQLiteStore) SaveDay(ctx context.Context, date string, recs []model.DailyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_data WHERE day = ?`, date); err != nil {
		return fmt.Errorf("clear %s: %w", date, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_data (day, train_id, record) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, date, r.TrainID, string(b)); err != nil {
			return fmt.Errorf("insert %s: %w", r.TrainID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Day(ctx context.Context, date string) ([]model.DailyRecord, error) {
	return s.scan(ctx, `SELECT record FROM daily_data WHERE day = ? ORDER BY train_id`, date)
}

func (s *SQLiteStore) Latest(ctx context.Context) (string, []model.DailyRecord, error) {
	var day sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(day) FROM daily_data`).Scan(&day); err != nil {
		return "", nil, err
	}
	if !day.Valid {
		return "", nil, history.ErrEmpty
	}
	recs, err := s.Day(ctx, day.String)
	return day.String, recs, err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(ctx context.Context, trainID string, start, end time.Time) ([]model.DailyRecord, error) {
	q := `SELECT record FROM daily_data WHERE day >= ? AND day <= ?`
	args := []any{history.Day(start), history.Day(end)}
	if trainID != "" {
		q += ` AND train_id = ?`
		args = append(args, trainID)
	}
	q += ` ORDER BY day, train_id`
	return s.scan(ctx, q, args...)
}

func (s *SQLiteStore) scan(ctx context.Context, query string, args ...any) ([]model.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.DailyRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r model.DailyRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, errors.Join(fmt.Errorf("corrupt history row"), err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
