package store

import "fmt"

// seq orders entries: new detections take the next value, replacements keep
// theirs so an updated entry stays where it was.
const schemaHistory = `
CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	scope TEXT NOT NULL,
	seq INTEGER NOT NULL,
	track_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	album TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0 CHECK (duration_ms >= 0),
	external_url TEXT NOT NULL DEFAULT '',
	detected_at INTEGER NOT NULL
);`

const schemaHistoryIndexes = `
CREATE INDEX IF NOT EXISTS idx_history_scope_seq ON history(scope, seq DESC);
CREATE INDEX IF NOT EXISTS idx_history_scope_track ON history(scope, track_id, seq DESC);`

func (s *Store) migrate() error {
	for _, stmt := range []string{schemaHistory, schemaHistoryIndexes} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate schema: %w", err)
		}
	}
	return nil
}
