// Package heuristic extracts dated schedule items from plain document text
// using regular expressions and a keyword table. It is the extractor used
// when no AI provider is configured and the fallback when one fails.
package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"schedcal/internal/dates"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
)

// courseScanLines bounds how far into a document the course name is searched.
const courseScanLines = 40

// defaultTitle is used when nothing is left of a line after cleanup.
const defaultTitle = "Assessment"

var (
	courseLabelRe = regexp.MustCompile(`(?i)Course[:\s]+([A-Z]{2,6}\s?\d{3}[A-Z]?)\b`)
	courseCodeRe  = regexp.MustCompile(`\b([A-Z]{2,6}\s?\d{3}[A-Z]?)\b`)
	courseLineRe  = regexp.MustCompile(`(?i)course\s*title|course[:\s]`)
	courseStripRe = regexp.MustCompile(`(?i)course\s*title[:\s]*|course[:\s]*`)

	// rangeRe matches "March 20", "Mar. 20th, 2026" and "March 20-22, 2026".
	rangeRe = regexp.MustCompile(`(?i)(` + dates.MonthPattern + `)\s*(\d{1,2})(?:st|nd|rd|th)?(?:\s*[-\x{2013}\x{2014}]\s*(\d{1,2})(?:st|nd|rd|th)?)?(?:,?\s*(\d{4}))?`)

	genericRe = regexp.MustCompile(`(?i)\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|` + dates.MonthPattern + `\s*\d{1,2}(?:st|nd|rd|th)?(?:,?\s*\d{4})?`)

	weightRe   = regexp.MustCompile(`(\d{1,3})\s?%`)
	timeRe     = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	fillerRe   = regexp.MustCompile(`[-:\t]+`)
	dueLabelRe = regexp.MustCompile(`(?i)\b(?:due date|due on|due)\b[:\s]*`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// typeRules is evaluated top to bottom; the first matching rule wins.
// Keywords must start at a word boundary so "homework" is not a work shift.
var typeRules = []struct {
	match *regexp.Regexp
	typ   model.ItemType
}{
	{regexp.MustCompile(`(?i)\bfinal`), model.TypeFinal},
	{regexp.MustCompile(`(?i)\bmidterm`), model.TypeMidterm},
	{regexp.MustCompile(`(?i)\bquiz`), model.TypeQuiz},
	{regexp.MustCompile(`(?i)\blab`), model.TypeLab},
	{regexp.MustCompile(`(?i)\bproject`), model.TypeProject},
	{regexp.MustCompile(`(?i)\b(?:work|shift|schedule)`), model.TypeWork},
}

// Extractor runs the heuristic extraction. Now supplies the default year for
// dates written without one; nil means time.Now.
type Extractor struct {
	Now func() time.Time
}

// Extract runs a default Extractor over text.
func Extract(text string) model.CourseExtraction {
	return Extractor{}.Extract(text)
}

// Extract segments text into lines and returns every dated item found.
// Each line is tried against the month-name range pattern first; only when
// that does not match are all ISO, slash and month-name dates on the line
// collected, each becoming its own item.
func (e Extractor) Extract(text string) model.CourseExtraction {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	lines := splitLines(text)
	appLog.Debug("heuristic extraction started", "lines", len(lines))

	out := model.CourseExtraction{
		CourseName: CourseName(lines),
		Term:       "",
		Items:      []model.ScheduleItem{},
	}

	for _, line := range lines {
		if m := rangeRe.FindStringSubmatchIndex(line); m != nil {
			month := line[m[2]:m[3]]
			day := line[m[4]:m[5]]
			if m[6] >= 0 {
				// Ranges resolve to their end date.
				day = line[m[6]:m[7]]
			}
			year := strconv.Itoa(now.Year())
			if m[8] >= 0 {
				year = line[m[8]:m[9]]
			}

			if date, ok := dates.NormalizeAt(month+" "+day+", "+year, now); ok {
				out.Items = append(out.Items, buildItem(line, line[m[0]:m[1]], date))
			}
			continue
		}

		for _, raw := range genericRe.FindAllString(line, -1) {
			date, ok := dates.NormalizeAt(raw, now)
			if !ok {
				continue
			}
			out.Items = append(out.Items, buildItem(line, raw, date))
		}
	}

	appLog.Debug("heuristic extraction finished", "course", out.CourseName, "items", len(out.Items))
	return out
}

func buildItem(line, span, date string) model.ScheduleItem {
	item := model.ScheduleItem{
		Title:     Title(line, span),
		Type:      Classify(line),
		Date:      date,
		Time:      findTime(line),
		Weight:    findWeight(line),
		Notes:     "",
		Reminders: []string{},
	}
	appLog.Debug("heuristic item", "title", item.Title, "type", item.Type, "date", item.Date, "time", item.Time)
	return item
}

// CourseName looks for a course identifier in the first lines of a document:
// a "Course: CODE" label, then a bare course code, then any line labelled as
// the course (with the label removed). It falls back to model.UnknownCourse.
func CourseName(lines []string) string {
	top := lines
	if len(top) > courseScanLines {
		top = top[:courseScanLines]
	}
	joined := strings.Join(top, "\n")

	if m := courseLabelRe.FindStringSubmatch(joined); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := courseCodeRe.FindStringSubmatch(joined); m != nil {
		return strings.ToUpper(m[1])
	}
	for _, l := range top {
		if !courseLineRe.MatchString(l) {
			continue
		}
		if name := strings.TrimSpace(replaceFirst(courseStripRe, l, "")); name != "" {
			return name
		}
	}
	return model.UnknownCourse
}

// Classify returns the item type implied by keywords in line.
func Classify(line string) model.ItemType {
	for _, r := range typeRules {
		if r.match.MatchString(line) {
			return r.typ
		}
	}
	return model.TypeAssignment
}

// Title derives an item title from its line: the date span and the first
// weight are removed, filler punctuation becomes spaces and a leading
// "due"/"due on"/"due date" label is dropped.
func Title(line, span string) string {
	t := strings.Replace(line, span, "", 1)
	t = replaceFirst(weightRe, t, "")
	t = fillerRe.ReplaceAllString(t, " ")
	t = replaceFirst(dueLabelRe, t, "")
	t = strings.TrimSpace(spaceRe.ReplaceAllString(t, " "))
	if t == "" {
		return defaultTitle
	}
	return t
}

func findWeight(line string) *float64 {
	m := weightRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	w, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &w
}

func findTime(line string) string {
	m := timeRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	h := m[1]
	if len(h) == 1 {
		h = "0" + h
	}
	return h + ":" + m[2]
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
