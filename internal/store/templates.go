// internal/store/templates.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeffreydtz/canchaya-slots/internal/models"
)

var ErrCourtNotFound = errors.New("court not found")

// UpsertCourt inserts or updates a court's reference data.
func (s *Store) UpsertCourt(ctx context.Context, court models.Court) error {
	if court.ID == "" {
		return fmt.Errorf("court id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courts (id, name, sport, surface, venue_id, hourly_price_cents)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			sport = excluded.sport,
			surface = excluded.surface,
			venue_id = excluded.venue_id,
			hourly_price_cents = excluded.hourly_price_cents,
			updated_at = CURRENT_TIMESTAMP`,
		court.ID, court.Name, court.Sport, court.Surface, court.VenueID, court.HourlyPrice,
	)
	if err != nil {
		return fmt.Errorf("upserting court %s: %w", court.ID, err)
	}
	return nil
}

// GetCourt fetches a court by id.
func (s *Store) GetCourt(ctx context.Context, courtID string) (models.Court, error) {
	var court models.Court
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, sport, surface, venue_id, hourly_price_cents
		FROM courts WHERE id = ?`, courtID,
	).Scan(&court.ID, &court.Name, &court.Sport, &court.Surface, &court.VenueID, &court.HourlyPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Court{}, ErrCourtNotFound
		}
		return models.Court{}, fmt.Errorf("fetching court %s: %w", courtID, err)
	}
	return court, nil
}

// ListCourtIDs returns the ids of all stored courts.
func (s *Store) ListCourtIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM courts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing courts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning court id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetWeeklyTemplate returns all template entries for a court, ordered by
// day of week then start time. Satisfies schedule.TemplateStore.
func (s *Store) GetWeeklyTemplate(ctx context.Context, courtID string) ([]models.TemplateEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_ref, court_id, day_of_week, starts_at, ends_at, end_marker, enabled
		FROM schedule_templates
		WHERE court_id = ?
		ORDER BY day_of_week, starts_at`, courtID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching weekly template for %s: %w", courtID, err)
	}
	defer rows.Close()

	var entries []models.TemplateEntry
	for rows.Next() {
		entry, err := scanTemplateEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpsertTemplateEntry inserts or updates one weekly availability window.
func (s *Store) UpsertTemplateEntry(ctx context.Context, entry models.TemplateEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_templates (template_ref, court_id, day_of_week, starts_at, ends_at, end_marker, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (template_ref) DO UPDATE SET
			court_id = excluded.court_id,
			day_of_week = excluded.day_of_week,
			starts_at = excluded.starts_at,
			ends_at = excluded.ends_at,
			end_marker = excluded.end_marker,
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP`,
		entry.TemplateRef, entry.CourtID, entry.DayOfWeek,
		entry.Start.String(), entry.End.String(), entry.EndMarker.String(), entry.Enabled,
	)
	if err != nil {
		return fmt.Errorf("upserting template entry %s: %w", entry.TemplateRef, err)
	}
	return nil
}

// ReplaceDayTemplate atomically swaps a court's entries for one weekday.
// This is the admin write path behind the template update endpoint.
func (s *Store) ReplaceDayTemplate(ctx context.Context, courtID string, dayOfWeek int, entries []models.TemplateEntry) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return fmt.Errorf("day of week must be 0..6, got %d", dayOfWeek)
	}
	for _, entry := range entries {
		if entry.CourtID != courtID || entry.DayOfWeek != dayOfWeek {
			return fmt.Errorf("entry %s does not match court %s day %d", entry.TemplateRef, courtID, dayOfWeek)
		}
		if err := entry.Validate(); err != nil {
			return err
		}
	}

	return s.runInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedule_templates WHERE court_id = ? AND day_of_week = ?`,
			courtID, dayOfWeek,
		); err != nil {
			return fmt.Errorf("clearing day template: %w", err)
		}
		for _, entry := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO schedule_templates (template_ref, court_id, day_of_week, starts_at, ends_at, end_marker, enabled)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				entry.TemplateRef, entry.CourtID, entry.DayOfWeek,
				entry.Start.String(), entry.End.String(), entry.EndMarker.String(), entry.Enabled,
			); err != nil {
				return fmt.Errorf("inserting template entry %s: %w", entry.TemplateRef, err)
			}
		}
		return nil
	})
}

// ReplaceWeeklyTemplate atomically swaps a court's whole weekly pattern,
// used by the sync job when refreshing from the backend.
func (s *Store) ReplaceWeeklyTemplate(ctx context.Context, courtID string, entries []models.TemplateEntry) error {
	for _, entry := range entries {
		if entry.CourtID != courtID {
			return fmt.Errorf("entry %s does not belong to court %s", entry.TemplateRef, courtID)
		}
		if err := entry.Validate(); err != nil {
			return err
		}
	}

	return s.runInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedule_templates WHERE court_id = ?`, courtID,
		); err != nil {
			return fmt.Errorf("clearing weekly template: %w", err)
		}
		for _, entry := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO schedule_templates (template_ref, court_id, day_of_week, starts_at, ends_at, end_marker, enabled)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				entry.TemplateRef, entry.CourtID, entry.DayOfWeek,
				entry.Start.String(), entry.End.String(), entry.EndMarker.String(), entry.Enabled,
			); err != nil {
				return fmt.Errorf("inserting template entry %s: %w", entry.TemplateRef, err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplateEntry(row rowScanner) (models.TemplateEntry, error) {
	var entry models.TemplateEntry
	var startsAt, endsAt, marker string
	if err := row.Scan(
		&entry.TemplateRef, &entry.CourtID, &entry.DayOfWeek,
		&startsAt, &endsAt, &marker, &entry.Enabled,
	); err != nil {
		return models.TemplateEntry{}, fmt.Errorf("scanning template entry: %w", err)
	}

	var err error
	if entry.Start, err = models.ParseClockTime(startsAt); err != nil {
		return models.TemplateEntry{}, fmt.Errorf("stored start time: %w", err)
	}
	if entry.End, err = models.ParseClockTime(endsAt); err != nil {
		return models.TemplateEntry{}, fmt.Errorf("stored end time: %w", err)
	}
	if entry.EndMarker, err = models.ParseEndMarker(marker); err != nil {
		return models.TemplateEntry{}, err
	}
	return entry, nil
}
