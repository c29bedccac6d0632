// internal/api/slots/handlers.go
package slots

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/api/apiutil"
	"github.com/jeffreydtz/canchaya-slots/internal/canchaya"
	"github.com/jeffreydtz/canchaya-slots/internal/models"
	"github.com/jeffreydtz/canchaya-slots/internal/schedule"
)

var (
	reconciler *schedule.Reconciler
	initOnce   sync.Once
)

const reconcileTimeout = 15 * time.Second

const courtIDParam = "id"

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(r *schedule.Reconciler) {
	if r == nil {
		return
	}
	initOnce.Do(func() {
		reconciler = r
	})
}

type slotResponse struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	EndMarker   string `json:"endMarker,omitempty"`
	TemplateRef string `json:"templateRef"`
	Occupancy   string `json:"occupancy"`
}

type slotListResponse struct {
	CourtID string         `json:"courtId"`
	Date    string         `json:"date"`
	Slots   []slotResponse `json:"slots"`
}

// GET /api/v1/courts/{id}/slots?date=YYYY-MM-DD
func HandleSlotList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if reconciler == nil {
		logger.Error().Msg("Slot handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.RequiredPathValue(r, courtIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := apiutil.DateFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reconcileTimeout)
	defer cancel()

	slots, err := reconciler.Reconcile(ctx, courtID, date)
	if err != nil {
		var verr *canchaya.ValidationError
		if errors.As(err, &verr) {
			apiutil.WriteError(w, http.StatusBadRequest, verr.Error())
			return
		}
		logger.Error().Err(err).
			Str("court_id", courtID).
			Str("date", date.String()).
			Msg("Slot reconciliation failed")
		apiutil.WriteError(w, http.StatusBadGateway, "Availability is temporarily unavailable, try again")
		return
	}

	apiutil.WriteJSON(w, http.StatusOK, slotListResponse{
		CourtID: courtID,
		Date:    date.String(),
		Slots:   toSlotResponses(slots),
	})
}

func toSlotResponses(slots []models.ConcreteSlot) []slotResponse {
	out := make([]slotResponse, len(slots))
	for i, slot := range slots {
		marker := ""
		if slot.EndMarker != models.EndExplicit {
			marker = slot.EndMarker.String()
		}
		out[i] = slotResponse{
			Date:        slot.Date.String(),
			StartTime:   slot.Start.String(),
			EndTime:     slot.End.String(),
			EndMarker:   marker,
			TemplateRef: slot.TemplateRef,
			Occupancy:   slot.Occupancy.String(),
		}
	}
	return out
}
