package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Event is one journaled dispatch.
type Event struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Action    string    `json:"action"`
	Length    float64   `json:"length"`
	Level     float64   `json:"level"`
	Percent   float64   `json:"percent"`
	Applied   bool      `json:"applied"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository reads and writes the dispatch journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts e, assigning an ID and a timestamp when they are unset.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO events (id, code, action, length, level, percent, applied, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Code, e.Action, e.Length, e.Level, e.Percent, e.Applied, e.CreatedAt,
	)
	return err
}

// List returns up to limit events, newest first. A limit <= 0 means
// DefaultListLimit.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, code, action, length, level, percent, applied, created_at
		 FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Latest returns the newest event, or ErrNotFound when the journal is empty.
func (r *EventRepository) Latest() (*Event, error) {
	row := r.db.QueryRow(
		`SELECT id, code, action, length, level, percent, applied, created_at
		 FROM events ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Count returns the number of journaled events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// DeleteAll clears the journal and returns how many events were removed.
func (r *EventRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Prune keeps the newest keep events and deletes the rest.
func (r *EventRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := r.db.Exec(
		`DELETE FROM events WHERE rowid NOT IN (
			SELECT rowid FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*Event, error) {
	e := &Event{}
	var applied int
	if err := row.Scan(&e.ID, &e.Code, &e.Action, &e.Length, &e.Level, &e.Percent, &applied, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Applied = applied != 0
	return e, nil
}
