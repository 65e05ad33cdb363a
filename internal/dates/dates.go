// Package dates recognizes date tokens in several shapes and canonicalizes
// them to YYYY-MM-DD.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical date layout used throughout the engine.
const Layout = "2006-01-02"

// MonthPattern is a regex alternation (without flags or capture) matching a
// full or abbreviated month name with an optional trailing period. Full names
// come first so "March" is not cut to "Mar".
const MonthPattern = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?`

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec`

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	isoRe      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashRe    = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	stripRe    = regexp.MustCompile(`[,.]`)
	monthDayRe = regexp.MustCompile(`(?i)^(` + monthNames + `)\s*(\d{1,2})(?:st|nd|rd|th)?(?:\s+(\d{4}))?$`)
	dayMonthRe = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s*(` + monthNames + `)(?:\s+(\d{4}))?$`)
)

// Month looks up a month by full name or abbreviation, case-insensitively.
// A trailing period is ignored.
func Month(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))]
	return m, ok
}

// Normalize canonicalizes raw using the current year for month-name dates
// that omit one.
func Normalize(raw string) (string, bool) {
	return NormalizeAt(raw, time.Now())
}

// NormalizeAt canonicalizes raw to YYYY-MM-DD. Recognized shapes, in order:
//
//   - YYYY-MM-DD anywhere in raw (returned verbatim)
//   - M/D/Y anywhere in raw; two-digit years are prefixed with "20"
//   - MonthName Day[st|nd|rd|th][, Year]
//   - Day[st|nd|rd|th] MonthName[, Year]
//
// Month-name forms without a year use ref's year. Only the shape of the
// month and day is checked (1-12, 1-31), so "Feb 30" still canonicalizes to
// YYYY-02-30. Anything else is unrecognized.
func NormalizeAt(raw string, ref time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)

	if iso := isoRe.FindString(raw); iso != "" {
		return iso, true
	}

	if m := slashRe.FindStringSubmatch(raw); m != nil {
		y := m[3]
		if len(y) == 2 {
			y = "20" + y
		}
		return build(atoi(y), atoi(m[1]), atoi(m[2]))
	}

	cleaned := strings.TrimSpace(stripRe.ReplaceAllString(raw, ""))

	if m := monthDayRe.FindStringSubmatch(cleaned); m != nil {
		mon, _ := Month(m[1])
		return build(yearOr(m[3], ref), int(mon), atoi(m[2]))
	}

	if m := dayMonthRe.FindStringSubmatch(cleaned); m != nil {
		mon, _ := Month(m[2])
		return build(yearOr(m[3], ref), int(mon), atoi(m[1]))
	}

	return "", false
}

// Parse parses a canonical YYYY-MM-DD date in UTC.
func Parse(iso string) (time.Time, bool) {
	t, err := time.Parse(Layout, strings.TrimSpace(iso))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders the calendar date y-m-d canonically. It does not validate.
func Format(y, m, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func build(y, m, d int) (string, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	return Format(y, m, d), true
}

func yearOr(s string, ref time.Time) int {
	if s == "" {
		return ref.Year()
	}
	return atoi(s)
}

// atoi is only used on regex-validated digit runs.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
