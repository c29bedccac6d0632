package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeffreydtz/canchaya-slots/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func seedCourt(t *testing.T, st *Store, id string) {
	t.Helper()
	err := st.UpsertCourt(context.Background(), models.Court{
		ID:          id,
		Name:        "Cancha Central",
		Sport:       "padel",
		Surface:     "synthetic",
		VenueID:     "venue-1",
		HourlyPrice: 250000,
	})
	if err != nil {
		t.Fatalf("seed court: %v", err)
	}
}

func entry(ref, court string, day int, start, end string, enabled bool) models.TemplateEntry {
	e := models.TemplateEntry{
		TemplateRef: ref,
		CourtID:     court,
		DayOfWeek:   day,
		Start:       models.MustClockTime(start),
		End:         models.MustClockTime(end),
		Enabled:     enabled,
	}
	if e.End.IsMidnight() {
		e.EndMarker = models.EndOfDay
	}
	return e
}

func TestUpsertAndGetCourt(t *testing.T) {
	st := newTestStore(t)
	seedCourt(t, st, "court-1")

	court, err := st.GetCourt(context.Background(), "court-1")
	if err != nil {
		t.Fatalf("get court: %v", err)
	}
	if court.Name != "Cancha Central" || court.HourlyPrice != 250000 {
		t.Fatalf("court: %+v", court)
	}

	// Upsert updates in place
	court.Name = "Cancha Norte"
	if err := st.UpsertCourt(context.Background(), court); err != nil {
		t.Fatalf("update court: %v", err)
	}
	updated, err := st.GetCourt(context.Background(), "court-1")
	if err != nil {
		t.Fatalf("get updated court: %v", err)
	}
	if updated.Name != "Cancha Norte" {
		t.Fatalf("name: %s", updated.Name)
	}

	if _, err := st.GetCourt(context.Background(), "missing"); !errors.Is(err, ErrCourtNotFound) {
		t.Fatalf("expected ErrCourtNotFound, got %v", err)
	}
}

func TestWeeklyTemplateRoundTrip(t *testing.T) {
	st := newTestStore(t)
	seedCourt(t, st, "court-1")

	entries := []models.TemplateEntry{
		entry("tpl-18", "court-1", 2, "18:00", "19:00", true),
		entry("tpl-23", "court-1", 2, "23:00", "00:00", true),
		entry("tpl-mon", "court-1", 1, "10:00", "11:00", false),
	}
	for _, e := range entries {
		if err := st.UpsertTemplateEntry(context.Background(), e); err != nil {
			t.Fatalf("upsert %s: %v", e.TemplateRef, err)
		}
	}

	stored, err := st.GetWeeklyTemplate(context.Background(), "court-1")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(stored))
	}
	// Ordered by day then start time
	if stored[0].TemplateRef != "tpl-mon" || stored[1].TemplateRef != "tpl-18" || stored[2].TemplateRef != "tpl-23" {
		t.Fatalf("order: %s, %s, %s", stored[0].TemplateRef, stored[1].TemplateRef, stored[2].TemplateRef)
	}
	if stored[2].EndMarker != models.EndOfDay {
		t.Fatalf("end marker lost: %v", stored[2].EndMarker)
	}
	if stored[2].Start.String() != "23:00" || stored[2].End.String() != "00:00" {
		t.Fatalf("times: %s-%s", stored[2].Start, stored[2].End)
	}
}

func TestUpsertTemplateEntry_RejectsInvalid(t *testing.T) {
	st := newTestStore(t)
	seedCourt(t, st, "court-1")

	bad := entry("tpl-bad", "court-1", 2, "19:00", "18:00", true)
	if err := st.UpsertTemplateEntry(context.Background(), bad); err == nil {
		t.Fatalf("expected error for inverted range")
	}

	unmarked := models.TemplateEntry{
		TemplateRef: "tpl-mid",
		CourtID:     "court-1",
		DayOfWeek:   2,
		Start:       models.MustClockTime("23:00"),
		End:         models.MustClockTime("00:00"),
		Enabled:     true,
	}
	if err := st.UpsertTemplateEntry(context.Background(), unmarked); err == nil {
		t.Fatalf("expected error for unmarked midnight end")
	}
}

func TestReplaceDayTemplate(t *testing.T) {
	st := newTestStore(t)
	seedCourt(t, st, "court-1")

	if err := st.UpsertTemplateEntry(context.Background(), entry("tpl-old", "court-1", 2, "08:00", "09:00", true)); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	if err := st.UpsertTemplateEntry(context.Background(), entry("tpl-mon", "court-1", 1, "10:00", "11:00", true)); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	err := st.ReplaceDayTemplate(context.Background(), "court-1", 2, []models.TemplateEntry{
		entry("tpl-new", "court-1", 2, "18:00", "19:00", true),
	})
	if err != nil {
		t.Fatalf("replace day: %v", err)
	}

	stored, err := st.GetWeeklyTemplate(context.Background(), "court-1")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(stored))
	}
	// Monday untouched, Tuesday replaced
	if stored[0].TemplateRef != "tpl-mon" || stored[1].TemplateRef != "tpl-new" {
		t.Fatalf("entries: %s, %s", stored[0].TemplateRef, stored[1].TemplateRef)
	}
}

func TestReplaceWeeklyTemplate(t *testing.T) {
	st := newTestStore(t)
	seedCourt(t, st, "court-1")
	seedCourt(t, st, "court-2")

	if err := st.UpsertTemplateEntry(context.Background(), entry("tpl-1", "court-1", 2, "08:00", "09:00", true)); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	if err := st.UpsertTemplateEntry(context.Background(), entry("tpl-other", "court-2", 2, "08:00", "09:00", true)); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	err := st.ReplaceWeeklyTemplate(context.Background(), "court-1", []models.TemplateEntry{
		entry("tpl-a", "court-1", 1, "10:00", "11:00", true),
		entry("tpl-b", "court-1", 3, "18:00", "19:00", true),
	})
	if err != nil {
		t.Fatalf("replace weekly: %v", err)
	}

	mine, err := st.GetWeeklyTemplate(context.Background(), "court-1")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(mine))
	}

	// Other courts keep their pattern
	other, err := st.GetWeeklyTemplate(context.Background(), "court-2")
	if err != nil {
		t.Fatalf("get other template: %v", err)
	}
	if len(other) != 1 || other[0].TemplateRef != "tpl-other" {
		t.Fatalf("other court entries: %+v", other)
	}
}

func TestListCourtIDs(t *testing.T) {
	st := newTestStore(t)
	seedCourt(t, st, "court-b")
	seedCourt(t, st, "court-a")

	ids, err := st.ListCourtIDs(context.Background())
	if err != nil {
		t.Fatalf("list courts: %v", err)
	}
	if len(ids) != 2 || ids[0] != "court-a" || ids[1] != "court-b" {
		t.Fatalf("ids: %v", ids)
	}
}
