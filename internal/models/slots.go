// internal/models/slots.go
package models

import "fmt"

// Court is read-only reference data describing a bookable court.
type Court struct {
	ID          string
	Name        string
	Sport       string
	Surface     string
	VenueID     string
	HourlyPrice int64 // cents
}

// EndMarker disambiguates a slot whose end time reads "00:00". The backend
// never says which midnight it means, so the two readings are kept as
// distinct variants instead of silently picking one.
type EndMarker uint8

const (
	// EndExplicit is an end time strictly after the start on the same day.
	EndExplicit EndMarker = iota
	// EndOfDay reads "00:00"/"24:00" as the last instant of the slot's day.
	EndOfDay
	// NextDayStart reads "00:00" as midnight belonging to the following day.
	NextDayStart
)

func (m EndMarker) String() string {
	switch m {
	case EndOfDay:
		return "end_of_day"
	case NextDayStart:
		return "next_day_start"
	default:
		return "explicit"
	}
}

// ParseEndMarker parses the stored marker representation.
func ParseEndMarker(raw string) (EndMarker, error) {
	switch raw {
	case "explicit", "":
		return EndExplicit, nil
	case "end_of_day":
		return EndOfDay, nil
	case "next_day_start":
		return NextDayStart, nil
	default:
		return EndExplicit, fmt.Errorf("unknown end marker %q", raw)
	}
}

// TemplateEntry is one recurring weekly availability window for a court.
// Entries never cross midnight themselves; a window ending at midnight is
// represented with a midnight end time plus an EndMarker.
type TemplateEntry struct {
	TemplateRef string
	CourtID     string
	DayOfWeek   int // 0=Sunday .. 6=Saturday
	Start       ClockTime
	End         ClockTime
	EndMarker   EndMarker
	Enabled     bool
}

// Validate checks the template invariants before an entry is stored.
func (e TemplateEntry) Validate() error {
	if e.TemplateRef == "" {
		return fmt.Errorf("template ref is required")
	}
	if e.CourtID == "" {
		return fmt.Errorf("court id is required")
	}
	if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
		return fmt.Errorf("day of week must be 0..6, got %d", e.DayOfWeek)
	}
	if e.End.IsMidnight() {
		if e.EndMarker == EndExplicit {
			return fmt.Errorf("midnight end time requires an end marker")
		}
		return nil
	}
	if !e.Start.Before(e.End) {
		return fmt.Errorf("start %s must be before end %s", e.Start, e.End)
	}
	return nil
}

// Occupancy is the backend's view of a concrete slot at query time.
type Occupancy uint8

const (
	Free Occupancy = iota
	Occupied
)

func (o Occupancy) String() string {
	if o == Occupied {
		return "occupied"
	}
	return "free"
}

// ConcreteSlot is one bookable slot on a specific calendar date. It is a
// snapshot derived on every reconciliation; the occupancy state is only
// authoritative as of query time and may be stale by submission.
type ConcreteSlot struct {
	Date        Date // the date the backend reported the slot under
	CourtID     string
	Start       ClockTime
	End         ClockTime
	EndMarker   EndMarker
	TemplateRef string
	Occupancy   Occupancy
}
