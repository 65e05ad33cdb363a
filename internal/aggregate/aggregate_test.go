package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

func TestFlattenSortsAcrossDocuments(t *testing.T) {
	courses := []model.CourseExtraction{
		{CourseName: "CS101", Items: []model.ScheduleItem{{Title: "HW1", Date: "2026-01-05"}}},
		{CourseName: "MATH265", Items: []model.ScheduleItem{{Title: "Quiz", Date: "2025-12-01"}}},
	}

	events := Flatten(courses)

	require.Len(t, events, 2)
	assert.Equal(t, "2025-12-01", events[0].Date)
	assert.Equal(t, "MATH265", events[0].Course)
	assert.Equal(t, "2026-01-05", events[1].Date)
	assert.Equal(t, "CS101", events[1].Course)
}

func TestFlattenIsStableAndEmptyDatesFirst(t *testing.T) {
	courses := []model.CourseExtraction{
		{CourseName: "A", Items: []model.ScheduleItem{
			{Title: "first", Date: "2026-02-01"},
			{Title: "undated", Date: ""},
			{Title: "second", Date: "2026-02-01"},
		}},
		{CourseName: "B", Items: []model.ScheduleItem{{Title: "third", Date: "2026-02-01"}}},
	}

	events := Flatten(courses)

	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"undated", "first", "second", "third"}, titles)
}

func TestFlattenCopiesFields(t *testing.T) {
	w := 20.0
	courses := []model.CourseExtraction{{
		CourseName: "ENTI333",
		Items: []model.ScheduleItem{{
			Title: "Pitch", Type: model.TypeProject, Date: "2026-03-02",
			Time: "14:00", Weight: &w, Notes: "room 101", Reminders: []string{"2026-02-23"},
		}},
	}}

	events := Flatten(courses)
	require.Len(t, events, 1)
	assert.Equal(t, model.AggregatedEvent{
		Course: "ENTI333", Title: "Pitch", Type: model.TypeProject, Date: "2026-03-02",
		Time: "14:00", Weight: model.Float(20), Notes: "room 101",
	}, events[0])

	w = 99
	assert.Equal(t, 20.0, *events[0].Weight)
}

func TestFlattenEmpty(t *testing.T) {
	events := Flatten(nil)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
