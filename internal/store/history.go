package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tessro/verse/internal/core"
	"github.com/tessro/verse/internal/history"
)

const historyColumns = `id, scope, track_id, title, artist, album, duration_ms, external_url, detected_at`

// Append records entry. A repeat detection of the same track within the
// dedup window updates the earlier row instead of adding one.
func (s *Store) Append(ctx context.Context, entry core.HistoryEntry) error {
	if entry.Scope == "" {
		entry.Scope = core.DefaultScope
	}
	if entry.ID == "" {
		entry.ID = core.EntryID(entry.TrackID, entry.DetectedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Only rows for the same track can match, newest first like the full list.
	rows, err := tx.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM history
		WHERE scope = ? AND track_id = ?
		ORDER BY seq DESC`, entry.Scope, entry.TrackID)
	if err != nil {
		return fmt.Errorf("store: load history: %w", err)
	}
	existing, err := scanEntries(rows)
	if err != nil {
		return err
	}

	if i := history.Find(existing, entry); i >= 0 {
		merged := history.Dedup(existing, entry)
		if err := updateEntry(ctx, tx, merged[i]); err != nil {
			return err
		}
	} else if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	if err := s.trim(ctx, tx, entry.Scope); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, e core.HistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO history (id, scope, seq, track_id, title, artist, album, duration_ms, external_url, detected_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM history), ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Scope, e.TrackID, e.Title, e.Artist, e.Album, e.DurationMs, e.ExternalURL, e.DetectedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("store: insert history: %w", err)
	}
	return nil
}

func updateEntry(ctx context.Context, tx *sql.Tx, e core.HistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE history
		SET title = ?, artist = ?, album = ?, duration_ms = ?, external_url = ?, detected_at = ?
		WHERE id = ?`,
		e.Title, e.Artist, e.Album, e.DurationMs, e.ExternalURL, e.DetectedAt.UnixMilli(), e.ID)
	if err != nil {
		return fmt.Errorf("store: update history: %w", err)
	}
	return nil
}

// trim drops the oldest entries beyond the per-scope cap.
func (s *Store) trim(ctx context.Context, tx *sql.Tx, scope string) error {
	if s.maxEntries < 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		DELETE FROM history
		WHERE scope = ? AND id NOT IN (
			SELECT id FROM history WHERE scope = ? ORDER BY seq DESC LIMIT ?
		)`, scope, scope, s.maxEntries)
	if err != nil {
		return fmt.Errorf("store: trim history: %w", err)
	}
	return nil
}

// List returns up to limit entries for scope, most recent first. A limit of
// zero or less returns all of them.
func (s *Store) List(ctx context.Context, scope string, limit int) ([]core.HistoryEntry, error) {
	if scope == "" {
		scope = core.DefaultScope
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM history
		WHERE scope = ?
		ORDER BY seq DESC
		LIMIT ?`, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	return scanEntries(rows)
}

// Remove deletes the entry with id.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: remove history: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return history.ErrNotFound
	}
	return nil
}

// Clear drops every entry in scope.
func (s *Store) Clear(ctx context.Context, scope string) error {
	if scope == "" {
		scope = core.DefaultScope
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("store: clear history: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]core.HistoryEntry, error) {
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var e core.HistoryEntry
		var detectedAt int64
		if err := rows.Scan(&e.ID, &e.Scope, &e.TrackID, &e.Title, &e.Artist, &e.Album,
			&e.DurationMs, &e.ExternalURL, &detectedAt); err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		e.DetectedAt = time.UnixMilli(detectedAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: history rows: %w", err)
	}
	return entries, nil
}

var _ core.HistorySink = (*Store)(nil)
