// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/api/apiutil"
	"github.com/jeffreydtz/canchaya-slots/internal/booking"
	"github.com/jeffreydtz/canchaya-slots/internal/canchaya"
	"github.com/jeffreydtz/canchaya-slots/internal/models"
	"github.com/jeffreydtz/canchaya-slots/internal/ratelimit"
)

var (
	submitter *booking.Submitter
	monitor   *booking.Monitor
	limiter   *ratelimit.Limiter
	initOnce  sync.Once
)

const (
	submitTimeout  = 15 * time.Second
	bookingIDParam = "id"
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *booking.Submitter, m *booking.Monitor, l *ratelimit.Limiter) {
	if s == nil || m == nil {
		return
	}
	initOnce.Do(func() {
		submitter = s
		monitor = m
		limiter = l
	})
}

type slotPayload struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	TemplateRef string `json:"templateRef"`
	Occupied    bool   `json:"occupied"`
}

type createRequest struct {
	CourtID     string      `json:"courtId"`
	Date        string      `json:"date"`
	RequesterID string      `json:"requesterId"`
	Slot        slotPayload `json:"slot"`
}

type confirmRequest struct {
	State          string `json:"state"`
	ScheduledStart string `json:"scheduledStart"`
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if submitter == nil {
		logger.Error().Msg("Booking handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req createRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := apiutil.ParseDateField(req.Date, "date")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot, err := decodeSlot(req.Slot, req.CourtID)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if limiter != nil {
		if result := limiter.CheckSubmit(req.RequesterID); !result.Allowed {
			logger.Warn().
				Str("reason", result.Reason).
				Msg("Booking submission rate limited")
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			apiutil.WriteError(w, http.StatusTooManyRequests, "too many booking attempts, slow down")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	outcome, err := submitter.Submit(ctx, slot, date, req.RequesterID)
	if err != nil {
		logger.Error().Err(err).
			Str("template_ref", slot.TemplateRef).
			Str("date", date.String()).
			Msg("Booking submission failed")
		apiutil.WriteError(w, http.StatusBadGateway, "Booking is temporarily unavailable, try again")
		return
	}

	switch outcome.Status {
	case booking.Booked:
		apiutil.WriteJSON(w, http.StatusCreated, map[string]string{"bookingId": outcome.BookingID})
	case booking.Rejected:
		apiutil.WriteError(w, http.StatusBadRequest, outcome.Message)
	case booking.Conflict:
		apiutil.WriteError(w, http.StatusConflict, "slot no longer available, pick another")
	}
}

// POST /api/v1/bookings/{id}/confirm
//
// The caller supplies the booking's pending state and scheduled start as it
// knows them; the monitor refuses confirms past the cutoff, and the server
// re-checks everything anyway.
func HandleBookingConfirm(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if monitor == nil {
		logger.Error().Msg("Booking handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	bookingID, err := apiutil.RequiredPathValue(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req confirmRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := decodeBooking(bookingID, req)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	if err := monitor.Confirm(ctx, b); err != nil {
		switch {
		case errors.Is(err, booking.ErrConfirmClosed):
			apiutil.WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, canchaya.ErrNotFound):
			apiutil.WriteError(w, http.StatusNotFound, "booking not found")
		case errors.As(err, new(*canchaya.ValidationError)):
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error().Err(err).Str("booking_id", bookingID).Msg("Booking confirm failed")
			apiutil.WriteError(w, http.StatusBadGateway, "Confirmation is temporarily unavailable, try again")
		}
		return
	}

	apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// GET /api/v1/bookings/{id}/deadline?state=pending&scheduledStart=RFC3339
func HandleBookingDeadline(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if monitor == nil {
		logger.Error().Msg("Booking handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	bookingID, err := apiutil.RequiredPathValue(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := decodeBooking(bookingID, confirmRequest{
		State:          r.URL.Query().Get("state"),
		ScheduledStart: r.URL.Query().Get("scheduledStart"),
	})
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	remaining, status := monitor.Remaining(b)
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":           status.String(),
		"remainingSeconds": int(remaining.Seconds()),
	})
}

func decodeSlot(payload slotPayload, courtID string) (models.ConcreteSlot, error) {
	date, err := apiutil.ParseDateField(payload.Date, "slot.date")
	if err != nil {
		return models.ConcreteSlot{}, err
	}
	start, err := apiutil.ParseClockTimeField(payload.StartTime, "slot.startTime")
	if err != nil {
		return models.ConcreteSlot{}, err
	}
	end, err := apiutil.ParseClockTimeField(payload.EndTime, "slot.endTime")
	if err != nil {
		return models.ConcreteSlot{}, err
	}
	if payload.TemplateRef == "" {
		return models.ConcreteSlot{}, apiutil.FieldError{Field: "slot.templateRef", Reason: "is required"}
	}

	occupancy := models.Free
	if payload.Occupied {
		occupancy = models.Occupied
	}
	marker := models.EndExplicit
	switch {
	case end.IsMidnight():
		marker = models.EndOfDay
	case !start.Before(end):
		marker = models.NextDayStart
	}
	return models.ConcreteSlot{
		Date:        date,
		CourtID:     courtID,
		Start:       start,
		End:         end,
		EndMarker:   marker,
		TemplateRef: payload.TemplateRef,
		Occupancy:   occupancy,
	}, nil
}

func decodeBooking(bookingID string, req confirmRequest) (models.Booking, error) {
	if req.State == "" {
		return models.Booking{}, apiutil.FieldError{Field: "state", Reason: "is required"}
	}
	start, err := time.Parse(time.RFC3339, req.ScheduledStart)
	if err != nil {
		return models.Booking{}, apiutil.FieldError{Field: "scheduledStart", Reason: "must be a valid RFC3339 timestamp"}
	}
	return models.Booking{
		ID:             bookingID,
		State:          models.BookingState(req.State),
		ScheduledStart: start,
	}, nil
}
