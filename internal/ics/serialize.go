package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"schedcal/internal/model"
)

// ProductID is written as the calendar's PRODID.
const ProductID = "-//schedcal//Course Scheduler//EN"

// uidDomain is the right-hand side of generated event UIDs.
const uidDomain = "schedcal.local"

// Serialize renders events as an iCalendar document with one all-day VEVENT
// per record.
//
// For each event:
//   - UID combines the event's position with stamp (event-<i>-<unix ms>@schedcal.local)
//   - DTSTART;VALUE=DATE is the date with hyphens removed
//   - SUMMARY is "<course> - <title>"
//   - DESCRIPTION is "Weight <w>%" when a non-zero weight is present, else empty
//
// Dates are not validated; a malformed date produces a malformed VEVENT.
func Serialize(events []model.ExportEvent, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetVersion("2.0")
	cal.SetProductId(ProductID)

	for i, e := range events {
		dt := strings.ReplaceAll(e.Date, "-", "")

		ev := cal.AddEvent(fmt.Sprintf("event-%d-%d@%s", i, stamp.UnixMilli(), uidDomain))
		ev.SetProperty(ical.ComponentPropertyDtstamp, dt+"T000000Z")
		ev.SetProperty(ical.ComponentPropertyDtStart, dt, ical.WithValue("DATE"))
		ev.SetProperty(ical.ComponentPropertySummary, e.Course+" - "+e.Title)
		ev.SetProperty(ical.ComponentPropertyDescription, Description(e.Weight))
	}

	return cal.Serialize()
}

// Description returns the DESCRIPTION text for an optional weight.
func Description(weight *float64) string {
	if weight == nil || *weight == 0 {
		return ""
	}
	return "Weight " + strconv.FormatFloat(*weight, 'f', -1, 64) + "%"
}
