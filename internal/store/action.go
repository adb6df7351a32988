package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ActionRecord is one input call made by the controller.
type ActionRecord struct {
	ID        string    `json:"id"`
	Gesture   string    `json:"gesture"`
	Kind      string    `json:"kind"`
	Key       string    `json:"key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActionRepository stores the action history.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action history repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

// Create inserts a record. A missing ID or timestamp is filled in.
func (r *ActionRepository) Create(a *ActionRecord) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO action_history (id, gesture, kind, key, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Gesture, a.Kind, a.Key, a.CreatedAt,
	)
	return err
}

// CreateBatch inserts several records in one transaction.
func (r *ActionRepository) CreateBatch(records []*ActionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO action_history (id, gesture, kind, key, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range records {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		if _, err := stmt.Exec(a.ID, a.Gesture, a.Kind, a.Key, a.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecent returns up to limit records, newest first.
func (r *ActionRepository) ListRecent(limit int) ([]*ActionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, kind, key, created_at FROM action_history
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ActionRecord
	for rows.Next() {
		a := &ActionRecord{}
		if err := rows.Scan(&a.ID, &a.Gesture, &a.Kind, &a.Key, &a.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of stored records.
func (r *ActionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM action_history`).Scan(&n)
	return n, err
}

// Prune keeps the newest keep records and deletes the rest.
func (r *ActionRepository) Prune(keep int) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM action_history WHERE rowid NOT IN (
			SELECT rowid FROM action_history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
