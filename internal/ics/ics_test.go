package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

var stamp = time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

func TestSerializeSingleEvent(t *testing.T) {
	out := Serialize([]model.ExportEvent{
		{Course: "CS101", Title: "HW1", Date: "2026-03-22", Weight: model.Float(10)},
	}, stamp)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "SUMMARY:CS101 - HW1")
	assert.Contains(t, out, "DESCRIPTION:Weight 10%")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260322")
	assert.Contains(t, out, "DTSTAMP:20260322T000000Z")
	assert.Contains(t, strings.TrimSpace(out), "END:VCALENDAR")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	ev := cal.Events()[0]
	assert.Equal(t, "CS101 - HW1", ev.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Weight 10%", ev.GetProperty(ical.ComponentPropertyDescription).Value)
	assert.Equal(t, "event-0-1772352000000@schedcal.local", ev.Id())
}

func TestSerializeUIDsAreUniquePerPosition(t *testing.T) {
	out := Serialize([]model.ExportEvent{
		{Course: "A", Title: "x", Date: "2026-01-01"},
		{Course: "A", Title: "x", Date: "2026-01-01"},
	}, stamp)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 2)
	assert.NotEqual(t, cal.Events()[0].Id(), cal.Events()[1].Id())
}

func TestSerializeEmptyDescriptionWithoutWeight(t *testing.T) {
	out := Serialize([]model.ExportEvent{
		{Course: "ENTI333", Title: "Pitch", Date: "2026-04-02"},
		{Course: "ENTI333", Title: "Draft", Date: "2026-04-03", Weight: model.Float(0)},
	}, stamp)

	events, err := ParseEvents([]byte(out))
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Empty(t, e.Description)
	}
}

func TestSerializeDoesNotValidateDates(t *testing.T) {
	out := Serialize([]model.ExportEvent{{Course: "X", Title: "Y", Date: "soon"}}, stamp)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:soon")
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "", Description(nil))
	assert.Equal(t, "Weight 12.5%", Description(model.Float(12.5)))
}

func TestParseEventsRoundTrip(t *testing.T) {
	out := Serialize([]model.ExportEvent{
		{Course: "CS101", Title: "Quiz 1", Date: "2026-02-14", Weight: model.Float(5)},
	}, stamp)

	events, err := ParseEvents([]byte(out))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2026-02-14", events[0].Date)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, "CS101 - Quiz 1", events[0].Summary)
}

func TestParseEventsTimed(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n")
	b.WriteString("BEGIN:VEVENT\r\nUID:shift-1\r\nDTSTART:20260314T070000Z\r\nSUMMARY:Opening shift\r\nEND:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")

	events, err := ParseEvents(b.Bytes())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "shift-1", events[0].UID)
	assert.Equal(t, "2026-03-14", events[0].Date)
	assert.Equal(t, "07:00", events[0].Time)
	assert.False(t, events[0].AllDay)
}

func TestParseEventsEmpty(t *testing.T) {
	_, err := ParseEvents(nil)
	assert.Error(t, err)
}

func TestSplitICSTime(t *testing.T) {
	d, c, allDay := splitICSTime("20261210")
	assert.Equal(t, "2026-12-10", d)
	assert.Empty(t, c)
	assert.True(t, allDay)

	d, _, _ = splitICSTime("2026")
	assert.Empty(t, d)

	d, _, _ = splitICSTime("20261340")
	assert.Empty(t, d)
}
