// internal/canchaya/client.go

// Package canchaya is the HTTP boundary to the authoritative booking
// backend. Occupancy reads are advisory snapshots; booking writes are the
// single source of truth for who won a slot.
package canchaya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeffreydtz/canchaya-slots/internal/models"
)

const (
	defaultTimeout = 10 * time.Second

	// maxRangeDays bounds occupancy queries; anything wider is rejected
	// before the request is issued.
	maxRangeDays = 31
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type occupancyItem struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	TemplateRef string `json:"templateRef"`
	Occupied    bool   `json:"occupied"`
}

type templateItem struct {
	DayOfWeek   int    `json:"dayOfWeek"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	TemplateRef string `json:"templateRef"`
	Enabled     bool   `json:"enabled"`
}

type createBookingPayload struct {
	TemplateRef    string `json:"templateRef"`
	Timestamp      string `json:"timestamp"`
	RequesterID    string `json:"requesterId"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type createBookingResponse struct {
	BookingID string `json:"bookingId"`
}

type errorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// GetLiveOccupancy fetches the backend's concrete slots for a court in the
// half-open range [from, toExclusive). A 404 maps to ErrNotFound so callers
// can distinguish "no live data" from a transport failure.
func (c *Client) GetLiveOccupancy(ctx context.Context, courtID string, from, toExclusive models.Date) ([]models.ConcreteSlot, error) {
	if err := validateOccupancyQuery(courtID, from, toExclusive); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/courts/%s/occupancy", c.baseURL, url.PathEscape(courtID))
	query := url.Values{}
	query.Set("from", from.String())
	query.Set("to", toExclusive.String())

	var items []occupancyItem
	if err := c.getJSON(ctx, endpoint+"?"+query.Encode(), &items); err != nil {
		return nil, err
	}

	slots := make([]models.ConcreteSlot, 0, len(items))
	for _, item := range items {
		slot, err := item.toSlot(courtID)
		if err != nil {
			return nil, fmt.Errorf("malformed occupancy item: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func validateOccupancyQuery(courtID string, from, toExclusive models.Date) error {
	var details []string
	if courtID == "" {
		details = append(details, "court id is required")
	}
	if !from.Before(toExclusive) {
		details = append(details, fmt.Sprintf("date range is inverted: %s >= %s", from, toExclusive))
	} else if from.DaysUntil(toExclusive) > maxRangeDays {
		details = append(details, fmt.Sprintf("date range exceeds %d days", maxRangeDays))
	}
	if len(details) > 0 {
		return invalid(details...)
	}
	return nil
}

func (i occupancyItem) toSlot(courtID string) (models.ConcreteSlot, error) {
	date, err := models.ParseDate(i.Date)
	if err != nil {
		return models.ConcreteSlot{}, err
	}
	start, err := models.ParseClockTime(i.StartTime)
	if err != nil {
		return models.ConcreteSlot{}, err
	}
	end, err := models.ParseClockTime(i.EndTime)
	if err != nil {
		return models.ConcreteSlot{}, err
	}

	occupancy := models.Free
	if i.Occupied {
		occupancy = models.Occupied
	}
	marker := models.EndExplicit
	switch {
	case end.IsMidnight():
		// The backend does not say which midnight it means.
		marker = models.EndOfDay
	case !start.Before(end):
		// End time wrapped past midnight into the next day.
		marker = models.NextDayStart
	}
	return models.ConcreteSlot{
		Date:        date,
		CourtID:     courtID,
		Start:       start,
		End:         end,
		EndMarker:   marker,
		TemplateRef: i.TemplateRef,
		Occupancy:   occupancy,
	}, nil
}

// GetWeeklyTemplate fetches the recurring weekly availability pattern for a
// court, enabled and disabled entries alike.
func (c *Client) GetWeeklyTemplate(ctx context.Context, courtID string) ([]models.TemplateEntry, error) {
	if courtID == "" {
		return nil, invalid("court id is required")
	}

	endpoint := fmt.Sprintf("%s/api/courts/%s/template", c.baseURL, url.PathEscape(courtID))
	var items []templateItem
	if err := c.getJSON(ctx, endpoint, &items); err != nil {
		return nil, err
	}

	entries := make([]models.TemplateEntry, 0, len(items))
	for _, item := range items {
		start, err := models.ParseClockTime(item.StartTime)
		if err != nil {
			return nil, fmt.Errorf("malformed template entry: %w", err)
		}
		end, err := models.ParseClockTime(item.EndTime)
		if err != nil {
			return nil, fmt.Errorf("malformed template entry: %w", err)
		}
		marker := models.EndExplicit
		if end.IsMidnight() {
			marker = models.EndOfDay
		}
		entries = append(entries, models.TemplateEntry{
			TemplateRef: item.TemplateRef,
			CourtID:     courtID,
			DayOfWeek:   item.DayOfWeek,
			Start:       start,
			End:         end,
			EndMarker:   marker,
			Enabled:     item.Enabled,
		})
	}
	return entries, nil
}

// CreateBooking submits a booking request and returns the new booking ID.
// A 400 surfaces as *ValidationError with the server's detail list; a 409
// surfaces as ErrConflict.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (string, error) {
	payload := createBookingPayload{
		TemplateRef:    req.TemplateRef,
		Timestamp:      req.Timestamp.Format(time.RFC3339),
		RequesterID:    req.RequesterID,
		IdempotencyKey: req.IdempotencyKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding booking request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bookings", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building booking request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("booking request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return "", ErrConflict
	case resp.StatusCode == http.StatusBadRequest:
		return "", decodeValidationError(resp.Body)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var created createBookingResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return "", fmt.Errorf("decoding booking response: %w", err)
		}
		return created.BookingID, nil
	default:
		return "", fmt.Errorf("booking request failed: unexpected status %d", resp.StatusCode)
	}
}

// ConfirmBooking confirms a pending booking before its deadline. Deadline
// gating happens in the caller; the server remains the final authority.
func (c *Client) ConfirmBooking(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return invalid("booking id is required")
	}

	endpoint := fmt.Sprintf("%s/api/bookings/%s/confirm", c.baseURL, url.PathEscape(bookingID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building confirm request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("confirm request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return decodeValidationError(resp.Body)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return fmt.Errorf("confirm request failed: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decoding backend response: %w", err)
		}
		return nil
	default:
		log.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Msg("Backend returned unexpected status")
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func decodeValidationError(body io.Reader) error {
	var er errorResponse
	if err := json.NewDecoder(body).Decode(&er); err != nil {
		return invalid("request rejected by backend")
	}
	details := er.Details
	if len(details) == 0 && er.Message != "" {
		details = []string{er.Message}
	}
	return &ValidationError{Details: details}
}
