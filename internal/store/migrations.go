package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Bindings override the configured key for a one-shot gesture
		`CREATE TABLE IF NOT EXISTS bindings (
			gesture TEXT PRIMARY KEY,
			key TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Action history - one row per input call made by the controller
		`CREATE TABLE IF NOT EXISTS action_history (
			id TEXT PRIMARY KEY,
			gesture TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('key_down', 'key_up', 'key_tap', 'mouse_down', 'mouse_up')),
			key TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_action_history_created_at ON action_history(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
