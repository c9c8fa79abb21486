package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per dispatch that invoked an action
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			action TEXT NOT NULL,
			length REAL NOT NULL DEFAULT 0,
			level REAL NOT NULL DEFAULT 0,
			percent REAL NOT NULL DEFAULT 0,
			applied INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
