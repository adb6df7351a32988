package store

import (
	"database/sql"
	"errors"
	"time"
)

// Binding is a saved gesture-to-key override.
type Binding struct {
	Gesture   string    `json:"gesture"`
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

// Set creates or replaces the binding for a gesture.
func (r *BindingRepository) Set(gesture, key string) error {
	_, err := r.db.Exec(
		`INSERT INTO bindings (gesture, key, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(gesture) DO UPDATE SET key = excluded.key, updated_at = excluded.updated_at`,
		gesture, key, time.Now(),
	)
	return err
}

// Get retrieves the binding for a gesture.
func (r *BindingRepository) Get(gesture string) (*Binding, error) {
	b := &Binding{}
	err := r.db.QueryRow(
		`SELECT gesture, key, updated_at FROM bindings WHERE gesture = ?`,
		gesture,
	).Scan(&b.Gesture, &b.Key, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bindings ordered by gesture.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT gesture, key, updated_at FROM bindings ORDER BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b := &Binding{}
		if err := rows.Scan(&b.Gesture, &b.Key, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Map returns the saved bindings keyed by gesture.
func (r *BindingRepository) Map() (map[string]string, error) {
	bindings, err := r.List()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(bindings))
	for _, b := range bindings {
		m[b.Gesture] = b.Key
	}
	return m, nil
}

// Delete removes the binding for a gesture.
func (r *BindingRepository) Delete(gesture string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE gesture = ?`, gesture)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
