// internal/booking/deadline.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffreydtz/canchaya-slots/internal/models"
)

// confirmLead is how long before the scheduled start an unconfirmed booking
// is auto-released by the server. The monitor only derives the countdown;
// the release itself is server-enforced.
const confirmLead = 2 * time.Hour

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// DeadlineStatus classifies a booking's confirmation window.
type DeadlineStatus uint8

const (
	// DeadlineActive means the booking can still be confirmed.
	DeadlineActive DeadlineStatus = iota
	// DeadlinePassed means the cutoff is behind us; the confirm action
	// must not be offered even though only the server can expire the
	// booking.
	DeadlinePassed
	// DeadlineNotApplicable means the booking is not pending, or its
	// start is not in the future.
	DeadlineNotApplicable
)

func (s DeadlineStatus) String() string {
	switch s {
	case DeadlineActive:
		return "active"
	case DeadlinePassed:
		return "passed"
	default:
		return "not_applicable"
	}
}

// Monitor derives confirmation deadlines. Purely read-side: no timers, no
// background goroutines.
type Monitor struct {
	api   BookingAPI
	clock Clock
}

// NewMonitor builds a monitor. A nil clock uses real time.
func NewMonitor(api BookingAPI, clock Clock) *Monitor {
	if clock == nil {
		clock = realClock{}
	}
	return &Monitor{api: api, clock: clock}
}

// Remaining returns the time left to confirm a booking. The deadline is
// scheduledStart minus the confirmation lead; the duration is clamped to
// zero once the deadline has passed.
func (m *Monitor) Remaining(b models.Booking) (time.Duration, DeadlineStatus) {
	now := m.clock.Now()
	if b.State != models.BookingPending || !b.ScheduledStart.After(now) {
		return 0, DeadlineNotApplicable
	}

	remaining := b.ScheduledStart.Add(-confirmLead).Sub(now)
	if remaining <= 0 {
		return 0, DeadlinePassed
	}
	return remaining, DeadlineActive
}

// CanConfirm reports whether the confirm action should be offered for a
// booking.
func (m *Monitor) CanConfirm(b models.Booking) bool {
	_, status := m.Remaining(b)
	return status == DeadlineActive
}

// ErrConfirmClosed means the confirm action must not be offered: the
// booking is past its cutoff or not pending.
var ErrConfirmClosed = errors.New("confirmation window closed")

// Confirm performs the deadline-gated confirm action. Bookings past their
// cutoff or outside the pending state are refused locally; the server
// remains the final authority either way.
func (m *Monitor) Confirm(ctx context.Context, b models.Booking) error {
	_, status := m.Remaining(b)
	if status != DeadlineActive {
		return fmt.Errorf("booking %s: %w (%s)", b.ID, ErrConfirmClosed, status)
	}
	if err := m.api.ConfirmBooking(ctx, b.ID); err != nil {
		return fmt.Errorf("confirming booking %s: %w", b.ID, err)
	}
	return nil
}
