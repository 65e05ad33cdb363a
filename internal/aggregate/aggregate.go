package aggregate

import (
	"sort"

	"schedcal/internal/model"
)

// Flatten turns per-document extractions into a single event list, each
// event tagged with its course name, stable-sorted by date ascending.
// Canonical YYYY-MM-DD strings sort chronologically; empty dates sort first.
func Flatten(courses []model.CourseExtraction) []model.AggregatedEvent {
	events := make([]model.AggregatedEvent, 0)
	for _, c := range courses {
		for _, it := range c.Items {
			events = append(events, model.AggregatedEvent{
				Course: c.CourseName,
				Title:  it.Title,
				Type:   it.Type,
				Date:   it.Date,
				Time:   it.Time,
				Weight: copyWeight(it.Weight),
				Notes:  it.Notes,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events
}

// copyWeight keeps events independent of the extraction they came from.
func copyWeight(w *float64) *float64 {
	if w == nil {
		return nil
	}
	v := *w
	return &v
}
