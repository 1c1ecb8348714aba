package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLitePersistence stores save slots in a single sqlite database.
// Payloads are kept as JSON so the schema never has to track the
// snapshot format.
type SQLitePersistence struct {
	db *sql.DB
}

const savesSchema = `
CREATE TABLE IF NOT EXISTS saves (
	id         TEXT PRIMARY KEY,
	rules_name TEXT NOT NULL,
	saved_at   TEXT NOT NULL,
	payload    TEXT NOT NULL
);
`

// NewSQLitePersistence opens (creating if needed) the database at path.
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(savesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLitePersistence{db: db}, nil
}

// Close releases the underlying database handle.
func (p *SQLitePersistence) Close() error {
	return p.db.Close()
}

func (p *SQLitePersistence) Save(data *SaveData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal save data: %w", err)
	}

	_, err = p.db.Exec(
		`INSERT INTO saves (id, rules_name, saved_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET rules_name = excluded.rules_name,
		   saved_at = excluded.saved_at, payload = excluded.payload`,
		strings.ToLower(data.ID), data.RulesName, data.SavedAt.UTC().Format("2006-01-02T15:04:05Z"), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to write save row: %w", err)
	}
	return nil
}

func (p *SQLitePersistence) Load(id string) (*SaveData, error) {
	var payload string
	err := p.db.QueryRow(`SELECT payload FROM saves WHERE id = ?`, strings.ToLower(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save row: %w", err)
	}

	var data SaveData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveCorrupt, err)
	}
	return &data, nil
}

func (p *SQLitePersistence) Delete(id string) error {
	res, err := p.db.Exec(`DELETE FROM saves WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete save row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSaveNotFound
	}
	return nil
}

func (p *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM saves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan save id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *SQLitePersistence) Exists(id string) bool {
	var one int
	err := p.db.QueryRow(`SELECT 1 FROM saves WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}
