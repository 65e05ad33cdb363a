package reminder

import (
	"time"

	"github.com/teambition/rrule-go"

	"schedcal/internal/dates"
	appLog "schedcal/internal/log"
)

// Offsets are the reminder lead times in days, earliest reminder first.
var Offsets = []int{7, 5, 3}

// offsetStep is the gap between consecutive Offsets.
const offsetStep = 2

// cutoff is the earliest date a reminder may fall on.
var cutoff = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Compute returns reminder dates 7, 5 and 3 days before the YYYY-MM-DD due
// date, in that order, as YYYY-MM-DD strings. Reminders before 1900-01-01
// are omitted. An unparseable due date yields no reminders.
func Compute(due string) []string {
	out := []string{}

	d, ok := dates.Parse(due)
	if !ok {
		return out
	}

	first := d.AddDate(0, 0, -Offsets[0])
	last := d.AddDate(0, 0, -Offsets[len(Offsets)-1])
	if last.Before(cutoff) {
		return out
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: offsetStep,
		Count:    len(Offsets),
		Dtstart:  first,
	})
	if err != nil {
		appLog.Error("reminder rule build failed", err, "due", due)
		return out
	}

	for _, t := range r.All() {
		if t.Before(cutoff) {
			continue
		}
		out = append(out, t.Format(dates.Layout))
	}
	return out
}
