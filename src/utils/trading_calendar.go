package utils

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

// Session labels stamped on market snapshots
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// TradingCalendar reports the session state of a reference venue using
// scmhub/calendar. Simulated symbols all share the one configured venue.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar loads the calendar of the venue identified by its MIC code
// (ISO 10383, e.g. "xnys"). Unknown codes fall back to NYSE, and a missing
// library calendar falls back to Mon-Fri 09:30-16:00 New York time.
func GetCalendar(mic string) *TradingCalendar {
	if mic == "" {
		mic = "xnys"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple fallback (Mon-Fri 09:30-16:00 NY).", mic)
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC // Worst case
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the venue is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		if (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16 {
			return true
		}
		return false
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// Session returns the label stamped on snapshots for the given instant
func (tc *TradingCalendar) Session(t time.Time) string {
	if tc.IsOpenOnMinute(t) {
		return SessionOpen
	}
	return SessionClosed
}
