package artifact

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists artifacts in a single SQLite database. Each artifact
// is one row; the upsert makes writes atomic per key so a concurrent reader
// sees either the complete payload or no row at all.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if necessary) the artifact database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping artifact database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS artifacts (
			day     TEXT NOT NULL,
			slot    TEXT NOT NULL,
			kind    TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (day, slot, kind)
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create artifact schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteStore) Get(day, slot string, kind Kind) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM artifacts WHERE day = ? AND slot = ? AND kind = ?`,
		day, slot, string(kind),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("artifact get %s/%s/%s: %w", day, slot, kind, err)
	}
	return payload, true, nil
}

func (s *SQLiteStore) Put(day, slot string, kind Kind, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO artifacts (day, slot, kind, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT (day, slot, kind) DO UPDATE SET payload = excluded.payload`,
		day, slot, string(kind), payload,
	)
	if err != nil {
		return fmt.Errorf("artifact put %s/%s/%s: %w", day, slot, kind, err)
	}
	return nil
}

func (s *SQLiteStore) Exists(day, slot string, kind Kind) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM artifacts WHERE day = ? AND slot = ? AND kind = ?`,
		day, slot, string(kind),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("artifact exists %s/%s/%s: %w", day, slot, kind, err)
	}
	return true, nil
}

func (s *SQLiteStore) Delete(day, slot string, kind Kind) error {
	_, err := s.db.Exec(
		`DELETE FROM artifacts WHERE day = ? AND slot = ? AND kind = ?`,
		day, slot, string(kind),
	)
	if err != nil {
		return fmt.Errorf("artifact delete %s/%s/%s: %w", day, slot, kind, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteDay(day string, kinds []Kind) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("artifact delete day %s: %w", day, err)
	}
	defer tx.Rollback()

	for _, kind := range kinds {
		if _, err := tx.Exec(
			`DELETE FROM artifacts WHERE day = ? AND kind = ?`,
			day, string(kind),
		); err != nil {
			return fmt.Errorf("artifact delete day %s kind %s: %w", day, kind, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListDays(kind Kind) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT day FROM artifacts WHERE kind = ? ORDER BY day`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("artifact list days %s: %w", kind, err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("artifact list days %s: %w", kind, err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("artifact list days %s: %w", kind, err)
	}
	return days, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
