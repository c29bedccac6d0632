package models

import (
	"testing"
	"time"
)

func TestParseClockTime_Normalization(t *testing.T) {
	short, err := ParseClockTime("23:00")
	if err != nil {
		t.Fatalf("parse 23:00: %v", err)
	}
	long, err := ParseClockTime("23:00:00")
	if err != nil {
		t.Fatalf("parse 23:00:00: %v", err)
	}
	if short.Compare(long) != 0 {
		t.Fatalf("23:00 and 23:00:00 should be equal")
	}
	if short.String() != "23:00" {
		t.Fatalf("string: %s", short.String())
	}
}

func TestParseClockTime_Ordering(t *testing.T) {
	morning := MustClockTime("09:00")
	evening := MustClockTime("23:00")
	if !morning.Before(evening) {
		t.Fatalf("09:00 should sort before 23:00")
	}
	withSeconds := MustClockTime("09:00:30")
	if !morning.Before(withSeconds) {
		t.Fatalf("09:00 should sort before 09:00:30")
	}
	if withSeconds.String() != "09:00:30" {
		t.Fatalf("string: %s", withSeconds.String())
	}
}

func TestParseClockTime_Invalid(t *testing.T) {
	for _, raw := range []string{"", "9:00", "25:00", "12:60", "24:01", "12", "12:00:00:00", "7am"} {
		if _, err := ParseClockTime(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseClockTime_EndOfDayMarker(t *testing.T) {
	midnight := MustClockTime("00:00")
	endOfDay := MustClockTime("24:00")
	if !midnight.IsMidnight() || !endOfDay.IsMidnight() {
		t.Fatalf("both 00:00 and 24:00 should read as midnight")
	}
	if !midnight.Before(endOfDay) {
		t.Fatalf("00:00 should sort before 24:00")
	}
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2025-10-21")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if date.Weekday() != 2 {
		t.Fatalf("2025-10-21 is a Tuesday (2), got %d", date.Weekday())
	}
	if date.AddDays(1).String() != "2025-10-22" {
		t.Fatalf("next day: %s", date.AddDays(1))
	}
	if _, err := ParseDate("21/10/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestDateAt_FixedOffset(t *testing.T) {
	region := time.FixedZone("UTC-03:00", -3*3600)
	date := MustDate("2025-10-21")

	at := date.At(MustClockTime("18:00"), region)
	if got := at.Format(time.RFC3339); got != "2025-10-21T18:00:00-03:00" {
		t.Fatalf("timestamp: %s", got)
	}
}

func TestDateAt_EndOfDayRollsForward(t *testing.T) {
	region := time.FixedZone("UTC-03:00", -3*3600)
	date := MustDate("2025-10-21")

	at := date.At(MustClockTime("24:00"), region)
	if got := at.Format(time.RFC3339); got != "2025-10-22T00:00:00-03:00" {
		t.Fatalf("timestamp: %s", got)
	}
}
