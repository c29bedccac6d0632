package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jeffreydtz/canchaya-slots/internal/models"
)

const dateQueryKey = "date"

// ParseDateField parses a required "YYYY-MM-DD" field.
func ParseDateField(raw, field string) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Date{}, FieldError{Field: field, Reason: "is required"}
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, FieldError{Field: field, Reason: "must be a valid YYYY-MM-DD date"}
	}
	return date, nil
}

// ParseClockTimeField parses a required "HH:MM[:SS]" field.
func ParseClockTimeField(raw, field string) (models.ClockTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.ClockTime{}, FieldError{Field: field, Reason: "is required"}
	}
	ct, err := models.ParseClockTime(raw)
	if err != nil {
		return models.ClockTime{}, FieldError{Field: field, Reason: "must be a valid 24-hour time"}
	}
	return ct, nil
}

// ParseDayOfWeekField parses a 0=Sunday..6=Saturday day number.
func ParseDayOfWeekField(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	day, err := strconv.Atoi(raw)
	if err != nil || day < 0 || day > 6 {
		return 0, FieldError{Field: field, Reason: "must be a day number between 0 and 6"}
	}
	return day, nil
}

// DateFromQuery reads the required date query parameter.
func DateFromQuery(r *http.Request) (models.Date, error) {
	return ParseDateField(r.URL.Query().Get(dateQueryKey), dateQueryKey)
}

// RequiredPathValue reads a non-empty path parameter.
func RequiredPathValue(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}
