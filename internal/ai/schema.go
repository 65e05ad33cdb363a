package ai

import (
	"google.golang.org/genai"

	"schedcal/internal/model"
)

// ScheduleSchemaName is the schema name sent with structured-output requests.
const ScheduleSchemaName = "course_schedule_extraction"

var itemFields = []string{"title", "type", "date", "time", "weight", "notes", "reminders"}

func typeEnum() []string {
	out := make([]string, 0, len(model.ItemTypes))
	for _, t := range model.ItemTypes {
		out = append(out, string(t))
	}
	return out
}

// ScheduleSchema returns the JSON schema of one CourseExtraction. Every item
// field is required; weight may be null.
func ScheduleSchema() Schema {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"type":  map[string]any{"type": "string", "enum": typeEnum()},
			"date": map[string]any{
				"type":        "string",
				"description": "ISO date YYYY-MM-DD. If only month/day given, infer year.",
			},
			"time": map[string]any{
				"type":        "string",
				"description": "Optional time like 14:00 or 'in class'.",
			},
			"weight": map[string]any{
				"type":        []string{"number", "null"},
				"description": "Percent weight if stated.",
			},
			"notes": map[string]any{"type": "string"},
			"reminders": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":        "string",
					"description": "ISO date YYYY-MM-DD for reminder occurrences.",
				},
			},
		},
		"required": itemFields,
	}

	return Schema{
		Name: ScheduleSchemaName,
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"course_name": map[string]any{"type": "string"},
				"source": map[string]any{
					"type":        "string",
					"description": "Optional source filename or document identifier.",
				},
				"items": map[string]any{"type": "array", "items": item},
			},
			"required": []string{"course_name", "source", "items"},
		},
	}
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// geminiSchema converts a JSON schema definition into genai's schema type.
// A ["T", "null"] type becomes a nullable T. Keywords Gemini does not
// support, such as additionalProperties, are dropped. A nil or empty
// definition yields nil.
func geminiSchema(def map[string]any) *genai.Schema {
	if len(def) == 0 {
		return nil
	}

	out := &genai.Schema{}
	if desc, ok := def["description"].(string); ok {
		out.Description = desc
	}

	for _, name := range stringList(def["type"]) {
		if name == "null" {
			out.Nullable = genai.Ptr(true)
			continue
		}
		if t, ok := geminiTypes[name]; ok {
			out.Type = t
		}
	}

	out.Enum = stringList(def["enum"])
	out.Required = stringList(def["required"])

	if props, ok := def["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				out.Properties[name] = geminiSchema(pm)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		out.Items = geminiSchema(items)
	}
	return out
}

// stringList reads a JSON schema keyword that is a string or a list of
// strings, in either Go or decoded-JSON form.
func stringList(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
