package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jeffreydtz/canchaya-slots/internal/models"
	"github.com/jeffreydtz/canchaya-slots/internal/testutil"
)

type stubTemplateSource struct {
	templates map[string][]models.TemplateEntry
	errCourts map[string]bool
}

func (s *stubTemplateSource) GetWeeklyTemplate(ctx context.Context, courtID string) ([]models.TemplateEntry, error) {
	if s.errCourts[courtID] {
		return nil, fmt.Errorf("backend unavailable")
	}
	return s.templates[courtID], nil
}

func weeklyEntries(courtID string) []models.TemplateEntry {
	return []models.TemplateEntry{
		{
			TemplateRef: courtID + "-mon-18",
			DayOfWeek:   1,
			Start:       models.MustClockTime("18:00"),
			End:         models.MustClockTime("19:00"),
			Enabled:     true,
		},
		{
			TemplateRef: courtID + "-tue-23",
			DayOfWeek:   2,
			Start:       models.MustClockTime("23:00"),
			End:         models.MustClockTime("00:00"),
			EndMarker:   models.NextDayStart,
			Enabled:     true,
		},
	}
}

func TestSyncTemplates(t *testing.T) {
	st := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"court-1", "court-2"} {
		if err := st.UpsertCourt(ctx, models.Court{ID: id, Name: id}); err != nil {
			t.Fatalf("upsert court: %v", err)
		}
	}

	// Backend entries arrive without court ids set; sync fills them in.
	source := &stubTemplateSource{templates: map[string][]models.TemplateEntry{
		"court-1": weeklyEntries("court-1"),
		"court-2": weeklyEntries("court-2"),
	}}

	if err := SyncTemplates(ctx, st, source); err != nil {
		t.Fatalf("sync: %v", err)
	}

	for _, id := range []string{"court-1", "court-2"} {
		entries, err := st.GetWeeklyTemplate(ctx, id)
		if err != nil {
			t.Fatalf("get weekly template: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("court %s: %d entries", id, len(entries))
		}
		for _, entry := range entries {
			if entry.CourtID != id {
				t.Errorf("entry %s has court %s", entry.TemplateRef, entry.CourtID)
			}
		}
	}
}

func TestSyncTemplates_ReplacesStaleEntries(t *testing.T) {
	st := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := st.UpsertCourt(ctx, models.Court{ID: "court-1", Name: "Court 1"}); err != nil {
		t.Fatalf("upsert court: %v", err)
	}
	stale := models.TemplateEntry{
		TemplateRef: "stale-ref",
		CourtID:     "court-1",
		DayOfWeek:   5,
		Start:       models.MustClockTime("10:00"),
		End:         models.MustClockTime("11:00"),
		Enabled:     true,
	}
	if err := st.UpsertTemplateEntry(ctx, stale); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	source := &stubTemplateSource{templates: map[string][]models.TemplateEntry{
		"court-1": weeklyEntries("court-1"),
	}}
	if err := SyncTemplates(ctx, st, source); err != nil {
		t.Fatalf("sync: %v", err)
	}

	entries, err := st.GetWeeklyTemplate(ctx, "court-1")
	if err != nil {
		t.Fatalf("get weekly template: %v", err)
	}
	for _, entry := range entries {
		if entry.TemplateRef == "stale-ref" {
			t.Fatalf("stale entry survived the sync")
		}
	}
	if len(entries) != 2 {
		t.Fatalf("entries after sync: %d", len(entries))
	}
}

func TestSyncTemplates_PartialFailure(t *testing.T) {
	st := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"court-1", "court-2"} {
		if err := st.UpsertCourt(ctx, models.Court{ID: id, Name: id}); err != nil {
			t.Fatalf("upsert court: %v", err)
		}
	}

	source := &stubTemplateSource{
		templates: map[string][]models.TemplateEntry{
			"court-2": weeklyEntries("court-2"),
		},
		errCourts: map[string]bool{"court-1": true},
	}

	err := SyncTemplates(ctx, st, source)
	if err == nil {
		t.Fatal("expected an error for the failed court")
	}
	if !strings.Contains(err.Error(), "1 failed courts of 2") {
		t.Fatalf("error: %v", err)
	}

	// The healthy court still synced.
	entries, getErr := st.GetWeeklyTemplate(ctx, "court-2")
	if getErr != nil {
		t.Fatalf("get weekly template: %v", getErr)
	}
	if len(entries) != 2 {
		t.Fatalf("court-2 entries: %d", len(entries))
	}
}
