// internal/booking/submitter.go

// Package booking turns a user-selected slot into a booking request against
// the backend's at-most-one-winner contract and computes the confirmation
// countdown for pending bookings.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/canchaya"
	"github.com/jeffreydtz/canchaya-slots/internal/metrics"
	"github.com/jeffreydtz/canchaya-slots/internal/models"
	"github.com/jeffreydtz/canchaya-slots/internal/schedule"
)

// BookingAPI is the authoritative write side of the backend.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (string, error)
	ConfirmBooking(ctx context.Context, bookingID string) error
}

// OutcomeStatus classifies a submission attempt.
type OutcomeStatus uint8

const (
	// Booked means the backend accepted the request.
	Booked OutcomeStatus = iota
	// Rejected means the request failed validation, locally or server-side.
	Rejected
	// Conflict means another requester won the slot first. Terminal for
	// this attempt; the caller must re-reconcile and offer other slots.
	Conflict
)

func (s OutcomeStatus) String() string {
	switch s {
	case Booked:
		return "booked"
	case Rejected:
		return "rejected"
	default:
		return "conflict"
	}
}

// Outcome is the interpreted result of one submission attempt.
type Outcome struct {
	Status    OutcomeStatus
	BookingID string // set when Status == Booked
	Message   string // set when Status == Rejected
}

type Submitter struct {
	api    BookingAPI
	region *time.Location
}

// NewSubmitter builds a submitter. region is the venue's fixed UTC offset
// (the system targets a single timezone region); it comes from
// configuration, never from slot data.
func NewSubmitter(api BookingAPI, region *time.Location) *Submitter {
	return &Submitter{api: api, region: region}
}

// Submit validates the selected slot against the target date, constructs
// the canonical booking request, and interprets the backend's answer.
//
// The slot/date pairing is re-checked before the network call. A slot whose
// own date matches the target always passes: template-synthesized slots
// carry the target date directly, whatever their start time. A live slot
// reported under the day after the target passes only with the crossing
// tolerance the reconciler admits slots with. Occupied slots are rejected
// without touching the network.
//
// No retries. A conflict means the race was lost; the local slot list is
// stale and the caller must re-run reconciliation rather than flip flags.
func (s *Submitter) Submit(ctx context.Context, slot models.ConcreteSlot, date models.Date, requesterID string) (Outcome, error) {
	if requesterID == "" {
		return rejected("requester id is required"), nil
	}
	if slot.Occupancy == models.Occupied {
		return rejected("slot is already occupied"), nil
	}
	if !slot.Date.Equal(date) && !schedule.BelongsToDate(slot.Date, date, slot.Start) {
		return rejected(fmt.Sprintf("slot reported for %s does not belong to %s", slot.Date, date)), nil
	}

	req := models.BookingRequest{
		TemplateRef:    slot.TemplateRef,
		RequesterID:    requesterID,
		Timestamp:      date.At(slot.Start, s.region),
		IdempotencyKey: uuid.New().String(),
	}

	bookingID, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		var verr *canchaya.ValidationError
		switch {
		case errors.Is(err, canchaya.ErrConflict):
			metrics.SubmissionsTotal.WithLabelValues("conflict").Inc()
			log.Ctx(ctx).Info().
				Str("template_ref", slot.TemplateRef).
				Str("date", date.String()).
				Msg("Booking lost the race for slot")
			return Outcome{Status: Conflict}, nil
		case errors.As(err, &verr):
			return rejected(verr.Error()), nil
		default:
			metrics.SubmissionsTotal.WithLabelValues("error").Inc()
			return Outcome{}, fmt.Errorf("submitting booking: %w", err)
		}
	}

	metrics.SubmissionsTotal.WithLabelValues("booked").Inc()
	return Outcome{Status: Booked, BookingID: bookingID}, nil
}

func rejected(message string) Outcome {
	metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
	return Outcome{Status: Rejected, Message: message}
}
