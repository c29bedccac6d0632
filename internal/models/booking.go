// internal/models/booking.go
package models

import "time"

// BookingState mirrors the server-owned booking lifecycle. Transitions are
// enforced server-side; this core only reads states for display gating.
type BookingState string

const (
	BookingPending   BookingState = "pending"
	BookingConfirmed BookingState = "confirmed"
	BookingCancelled BookingState = "cancelled"
	BookingCompleted BookingState = "completed"
)

// Booking is the slice of the server-owned booking this core needs: enough
// to compute the confirmation countdown and gate the confirm action.
type Booking struct {
	ID             string
	State          BookingState
	ScheduledStart time.Time
}

// BookingRequest is the canonical request submitted to the booking endpoint.
// It references the slot's weekly template entry rather than raw times; the
// server resolves the entry against the timestamp's date. Immutable once
// constructed.
type BookingRequest struct {
	TemplateRef    string
	RequesterID    string
	Timestamp      time.Time // date + slot start in the configured region
	IdempotencyKey string
}
