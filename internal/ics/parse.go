package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"

	"schedcal/internal/dates"
	appLog "schedcal/internal/log"
)

// ParsedEvent is the subset of a VEVENT the scheduler cares about.
type ParsedEvent struct {
	UID         string
	Summary     string
	Description string

	// Date is the DTSTART calendar date as YYYY-MM-DD; empty if DTSTART is
	// missing or unreadable.
	Date string
	// Time is the DTSTART wall-clock time as HH:MM; empty for all-day events.
	Time   string
	AllDay bool
}

// ParseEvents parses an ICS payload into a list of ParsedEvent.
//
//   - DTSTART is read from its raw value (YYYYMMDD or YYYYMMDDTHHMMSS[Z]);
//     TZID is ignored since schedules carry no time zones.
//   - Events without a UID are still returned; UID is informational here.
func ParseEvents(body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, ve := range cal.Events() {
		events = append(events, parseVEvent(ve))
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) ParsedEvent {
	var out ParsedEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		out.Date, out.Time, out.AllDay = splitICSTime(p.Value)
		// VALUE=DATE marks all-day even if a producer appended a time.
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.Time = ""
			out.AllDay = true
		}
	}

	return out
}

// splitICSTime splits a basic ICS date/date-time value into a canonical
// date and an HH:MM time.
//
//	20260314          -> 2026-03-14, "",      all-day
//	20260314T070000Z  -> 2026-03-14, "07:00", timed
func splitICSTime(v string) (date, clock string, allDay bool) {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return "", "", false
	}

	d, ok := dates.Parse(v[0:4] + "-" + v[4:6] + "-" + v[6:8])
	if !ok {
		return "", "", false
	}
	date = d.Format(dates.Layout)

	rest := v[8:]
	if !strings.HasPrefix(rest, "T") || len(rest) < 5 {
		return date, "", true
	}
	return date, rest[1:3] + ":" + rest[3:5], false
}
