// internal/schedule/reconciler.go

// Package schedule merges the recurring weekly availability template with
// live, date-specific occupancy data into the ordered slot list a booking
// flow works from.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/canchaya"
	"github.com/jeffreydtz/canchaya-slots/internal/metrics"
	"github.com/jeffreydtz/canchaya-slots/internal/models"
)

// Slots that end after midnight are reported by the backend under the
// following calendar date, but not consistently: late starters keep their
// real start time, and one backend convention also tags some early-morning
// slots with the later date. These thresholds reproduce that tagging
// behavior and must not be tuned.
//
// Known gap: a slot starting between 06:00 and 23:00 that runs past
// midnight is not covered by either threshold. No such mis-tagging has been
// observed, so the rule is left as is rather than widened speculatively.
var (
	lateStartThreshold  = models.MustClockTime("23:00")
	earlyStartThreshold = models.MustClockTime("06:00")
)

// LiveOccupancySource is the advisory read side of the backend: concrete
// slots with their occupancy as of query time. canchaya.ErrNotFound means
// "no live data", which is a legitimate empty state.
type LiveOccupancySource interface {
	GetLiveOccupancy(ctx context.Context, courtID string, from, toExclusive models.Date) ([]models.ConcreteSlot, error)
}

// TemplateStore serves the recurring weekly pattern used when no live data
// exists for a date.
type TemplateStore interface {
	GetWeeklyTemplate(ctx context.Context, courtID string) ([]models.TemplateEntry, error)
}

type Reconciler struct {
	live      LiveOccupancySource
	templates TemplateStore
}

func NewReconciler(live LiveOccupancySource, templates TemplateStore) *Reconciler {
	return &Reconciler{live: live, templates: templates}
}

// BelongsToDate decides whether a slot the backend reported under
// `reported` logically belongs to `target`. A crossing start time (>= 23:00,
// started before midnight, or < 06:00, early-morning slot tagged with the
// later date) means the backend filed the slot under the day after the one
// it belongs to. Such a slot belongs to `target` only when reported on the
// following date; reported on the target date itself it is the previous
// day's slot and is excluded, so no slot is ever a member of two dates.
func BelongsToDate(reported, target models.Date, start models.ClockTime) bool {
	if reported.Equal(target) {
		return !crossesFromPreviousDay(start)
	}
	return reported.Equal(target.AddDays(1)) && crossesFromPreviousDay(start)
}

// crossesFromPreviousDay reports whether a start time marks a slot the
// backend files under the calendar date after the day it belongs to.
func crossesFromPreviousDay(start models.ClockTime) bool {
	return start.Compare(lateStartThreshold) >= 0 || start.Before(earlyStartThreshold)
}

// Reconcile produces the ordered bookable slots for a court on a date.
//
// Live occupancy is queried for [date, date+2d) so slots that spill past
// midnight are captured, then filtered down to the ones that belong to the
// date. When the backend has no live data at all (empty result or not
// found, as opposed to a transport failure), the weekly template supplies
// the slots instead, all marked free since no occupancy information exists
// in that mode.
//
// Every call re-queries; nothing is cached and nothing is mutated.
func (r *Reconciler) Reconcile(ctx context.Context, courtID string, date models.Date) ([]models.ConcreteSlot, error) {
	live, err := r.live.GetLiveOccupancy(ctx, courtID, date, date.AddDays(2))
	if err != nil && !errors.Is(err, canchaya.ErrNotFound) {
		metrics.ReconcileTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("querying live occupancy: %w", err)
	}

	if len(live) == 0 {
		slots, err := r.fallback(ctx, courtID, date)
		if err != nil {
			metrics.ReconcileTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.ReconcileTotal.WithLabelValues("fallback").Inc()
		log.Ctx(ctx).Debug().
			Str("court_id", courtID).
			Str("date", date.String()).
			Int("slots", len(slots)).
			Msg("No live occupancy data, served template fallback")
		return slots, nil
	}

	slots := make([]models.ConcreteSlot, 0, len(live))
	for _, slot := range live {
		if BelongsToDate(slot.Date, date, slot.Start) {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	metrics.ReconcileTotal.WithLabelValues("live").Inc()
	return slots, nil
}

// fallback synthesizes free slots from the enabled template entries for the
// date's weekday. Occupancy is unknown here; every slot reads free.
func (r *Reconciler) fallback(ctx context.Context, courtID string, date models.Date) ([]models.ConcreteSlot, error) {
	entries, err := r.templates.GetWeeklyTemplate(ctx, courtID)
	if err != nil {
		if errors.Is(err, canchaya.ErrNotFound) {
			return []models.ConcreteSlot{}, nil
		}
		return nil, fmt.Errorf("querying weekly template: %w", err)
	}

	weekday := date.Weekday()
	slots := make([]models.ConcreteSlot, 0, len(entries))
	for _, entry := range entries {
		if entry.DayOfWeek != weekday || !entry.Enabled {
			continue
		}
		slots = append(slots, models.ConcreteSlot{
			Date:        date,
			CourtID:     courtID,
			Start:       entry.Start,
			End:         entry.End,
			EndMarker:   entry.EndMarker,
			TemplateRef: entry.TemplateRef,
			Occupancy:   models.Free,
		})
	}
	sortSlots(slots)
	return slots, nil
}

func sortSlots(slots []models.ConcreteSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
}
