package extract

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"schedcal/internal/ai"
	"schedcal/internal/model"
)

// parseStrategy turns one response shape into an extraction.
type parseStrategy struct {
	name  string
	parse func(*ai.Response) (model.CourseExtraction, bool)
}

// parseChain is tried in order; the first strategy that succeeds wins.
var parseChain = []parseStrategy{
	{name: "parsed_field", parse: fromParsed},
	{name: "joined_segments", parse: fromSegments},
	{name: "brace_substring", parse: fromBraceSubstring},
}

// parseResponse runs parseChain over resp and reports the strategy used.
func parseResponse(resp *ai.Response) (model.CourseExtraction, string, bool) {
	if resp == nil {
		return model.CourseExtraction{}, "", false
	}
	for _, s := range parseChain {
		if ce, ok := s.parse(resp); ok {
			return ce, s.name, true
		}
	}
	return model.CourseExtraction{}, "", false
}

func fromParsed(resp *ai.Response) (model.CourseExtraction, bool) {
	return decodeObject(resp.Parsed)
}

func fromSegments(resp *ai.Response) (model.CourseExtraction, bool) {
	if len(resp.Segments) == 0 {
		return model.CourseExtraction{}, false
	}
	return decodeObject([]byte(joinSegments(resp)))
}

func fromBraceSubstring(resp *ai.Response) (model.CourseExtraction, bool) {
	joined := joinSegments(resp)
	start := strings.Index(joined, "{")
	end := strings.LastIndex(joined, "}")
	if start == -1 || end <= start {
		return model.CourseExtraction{}, false
	}
	return decodeObject([]byte(joined[start : end+1]))
}

func joinSegments(resp *ai.Response) string {
	return strings.Join(resp.Segments, "\n")
}

// decodeObject decodes a top-level JSON object. Scalar fields are read
// leniently (a weight of "10" or "10%", a time of 1400); only a malformed
// document or an items value that is not a list of objects fails.
func decodeObject(b []byte) (model.CourseExtraction, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return model.CourseExtraction{}, false
	}
	var w wireExtraction
	if err := json.Unmarshal(b, &w); err != nil {
		return model.CourseExtraction{}, false
	}
	return w.extraction(), true
}

// wireExtraction mirrors model.CourseExtraction as models actually emit it.
type wireExtraction struct {
	CourseName looseString `json:"course_name"`
	Source     looseString `json:"source"`
	Term       looseString `json:"term"`
	Items      []wireItem  `json:"items"`
}

type wireItem struct {
	Title     looseString     `json:"title"`
	Type      looseString     `json:"type"`
	Date      looseString     `json:"date"`
	Time      looseString     `json:"time"`
	Weight    looseWeight     `json:"weight"`
	Notes     looseString     `json:"notes"`
	Reminders json.RawMessage `json:"reminders"`
}

func (w wireExtraction) extraction() model.CourseExtraction {
	ce := model.CourseExtraction{
		CourseName: string(w.CourseName),
		Source:     string(w.Source),
		Term:       string(w.Term),
	}
	if w.Items != nil {
		ce.Items = make([]model.ScheduleItem, 0, len(w.Items))
	}
	for _, it := range w.Items {
		ce.Items = append(ce.Items, model.ScheduleItem{
			Title:     string(it.Title),
			Type:      model.ItemType(it.Type),
			Date:      string(it.Date),
			Time:      string(it.Time),
			Weight:    it.Weight.v,
			Notes:     string(it.Notes),
			Reminders: reminderList(it.Reminders),
		})
	}
	return ce
}

// looseString accepts a string, a number or a bool. Null, objects and
// arrays read as empty.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case 'n', '{', '[':
		*s = ""
	default:
		*s = looseString(b)
	}
	return nil
}

// looseWeight accepts a number or a numeric string with an optional percent
// sign. Anything else is an unknown weight.
type looseWeight struct {
	v *float64
}

func (w *looseWeight) UnmarshalJSON(b []byte) error {
	w.v = nil
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		w.v = &f
	}
	return nil
}

// reminderList keeps the difference between absent reminders (nil, to be
// computed) and an explicit empty list. A bare string counts as one entry.
func reminderList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		var vs []looseString
		if err := json.Unmarshal(raw, &vs); err != nil {
			return nil
		}
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			if v != "" {
				out = append(out, string(v))
			}
		}
		return out
	case '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil || v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
