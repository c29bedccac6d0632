// internal/api/templates/handlers.go

// Package templates exposes the administrative write side of the weekly
// availability pattern held in the local store.
package templates

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/api/apiutil"
	"github.com/jeffreydtz/canchaya-slots/internal/models"
	"github.com/jeffreydtz/canchaya-slots/internal/store"
)

var (
	templateStore *store.Store
	initOnce      sync.Once
)

const (
	storeTimeout   = 5 * time.Second
	courtIDParam   = "id"
	dayOfWeekParam = "dow"
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *store.Store) {
	if s == nil {
		return
	}
	initOnce.Do(func() {
		templateStore = s
	})
}

type entryPayload struct {
	TemplateRef string `json:"templateRef"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	EndMarker   string `json:"endMarker,omitempty"`
	Enabled     bool   `json:"enabled"`
}

type dayTemplateRequest struct {
	Entries []entryPayload `json:"entries"`
}

type courtRequest struct {
	Name        string `json:"name"`
	Sport       string `json:"sport"`
	Surface     string `json:"surface"`
	VenueID     string `json:"venueId"`
	HourlyPrice int64  `json:"hourlyPriceCents"`
}

// PUT /api/v1/courts/{id}
func HandleCourtUpsert(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if templateStore == nil {
		logger.Error().Msg("Template handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.RequiredPathValue(r, courtIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req courtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Sport == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "name and sport are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	err = templateStore.UpsertCourt(ctx, models.Court{
		ID:          courtID,
		Name:        req.Name,
		Sport:       req.Sport,
		Surface:     req.Surface,
		VenueID:     req.VenueID,
		HourlyPrice: req.HourlyPrice,
	})
	if err != nil {
		logger.Error().Err(err).Str("court_id", courtID).Msg("Failed to upsert court")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to save court")
		return
	}

	apiutil.WriteJSON(w, http.StatusOK, map[string]string{"courtId": courtID})
}

// PUT /api/v1/courts/{id}/template/{dow}
func HandleDayTemplateUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if templateStore == nil {
		logger.Error().Msg("Template handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.RequiredPathValue(r, courtIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dayOfWeek, err := apiutil.ParseDayOfWeekField(r.PathValue(dayOfWeekParam), dayOfWeekParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dayTemplateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entries := make([]models.TemplateEntry, 0, len(req.Entries))
	for _, payload := range req.Entries {
		entry, err := decodeEntry(payload, courtID, dayOfWeek)
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		entries = append(entries, entry)
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if _, err := templateStore.GetCourt(ctx, courtID); err != nil {
		if errors.Is(err, store.ErrCourtNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "court not found")
			return
		}
		logger.Error().Err(err).Str("court_id", courtID).Msg("Failed to load court")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load court")
		return
	}

	if err := templateStore.ReplaceDayTemplate(ctx, courtID, dayOfWeek, entries); err != nil {
		logger.Error().Err(err).
			Str("court_id", courtID).
			Int("day_of_week", dayOfWeek).
			Msg("Failed to update day template")
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"courtId":   courtID,
		"dayOfWeek": dayOfWeek,
		"entries":   len(entries),
	})
}

func decodeEntry(payload entryPayload, courtID string, dayOfWeek int) (models.TemplateEntry, error) {
	if payload.TemplateRef == "" {
		return models.TemplateEntry{}, apiutil.FieldError{Field: "templateRef", Reason: "is required"}
	}
	start, err := apiutil.ParseClockTimeField(payload.StartTime, "startTime")
	if err != nil {
		return models.TemplateEntry{}, err
	}
	end, err := apiutil.ParseClockTimeField(payload.EndTime, "endTime")
	if err != nil {
		return models.TemplateEntry{}, err
	}
	marker, err := models.ParseEndMarker(payload.EndMarker)
	if err != nil {
		return models.TemplateEntry{}, apiutil.FieldError{Field: "endMarker", Reason: "must be explicit, end_of_day or next_day_start"}
	}
	if end.IsMidnight() && marker == models.EndExplicit {
		// "00:00" is ambiguous between the two midnights; the admin must say which.
		return models.TemplateEntry{}, apiutil.FieldError{Field: "endMarker", Reason: "is required for a midnight end time"}
	}

	return models.TemplateEntry{
		TemplateRef: payload.TemplateRef,
		CourtID:     courtID,
		DayOfWeek:   dayOfWeek,
		Start:       start,
		End:         end,
		EndMarker:   marker,
		Enabled:     payload.Enabled,
	}, nil
}
