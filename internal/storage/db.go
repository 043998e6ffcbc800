package storage

import (
	"database/sql"
	"errors"
	"strings"

	"microblog/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Store-level errors. Callers distinguish them with errors.Is.
var (
	// ErrNotFound indicates the referenced entry id does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrValidation indicates a required field is empty.
	ErrValidation = errors.New("title and text are required")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// Open opens a database connection and runs migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		text TEXT NOT NULL
	)`)
	return err
}

// ListEntries retrieves all entries, newest first by id. An empty store
// yields an empty slice, not an error.
func (db *DB) ListEntries() ([]models.Entry, error) {
	rows, err := db.conn.Query("SELECT id, title, text FROM entries ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Text); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetEntry retrieves a single entry by ID.
func (db *DB) GetEntry(id int64) (*models.Entry, error) {
	row := db.conn.QueryRow(
		"SELECT id, title, text FROM entries WHERE id = ?",
		id,
	)

	var e models.Entry
	if err := row.Scan(&e.ID, &e.Title, &e.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts a new entry and returns its assigned id.
func (db *DB) CreateEntry(title, text string) (int64, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(text) == "" {
		return 0, ErrValidation
	}

	result, err := db.conn.Exec(
		"INSERT INTO entries (title, text) VALUES (?, ?)",
		title, text,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateEntry replaces the title and text of an existing entry in place.
func (db *DB) UpdateEntry(id int64, title, text string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(text) == "" {
		return ErrValidation
	}

	result, err := db.conn.Exec(
		"UPDATE entries SET title = ?, text = ? WHERE id = ?",
		title, text, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEntry removes an entry permanently. Deleting an id that does
// not exist returns ErrNotFound.
func (db *DB) DeleteEntry(id int64) error {
	result, err := db.conn.Exec("DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
