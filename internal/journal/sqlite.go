package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"rsimaster/internal/model"
)

// SQLiteStore keeps day records as JSON documents in a single table,
// one row per date. Each Save runs in a transaction, so replacements
// are atomic even under concurrent readers.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the journal database with WAL mode
// and a single-writer connection pool.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS journal_days (
		date       TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, date string) (*model.JournalDay, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM journal_days WHERE date = ?`, date).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: load %s: %w", date, err)
	}

	var day model.JournalDay
	if err := json.Unmarshal([]byte(data), &day); err != nil {
		return nil, false, fmt.Errorf("sqlite: decode %s: %w", date, err)
	}
	return &day, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, day *model.JournalDay) error {
	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return fmt.Errorf("sqlite: encode %s: %w", day.Date, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO journal_days (date, data) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`,
		day.Date, string(data))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: save %s: %w", day.Date, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
