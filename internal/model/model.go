package model

// ItemType classifies a dated schedule item.
type ItemType string

const (
	TypeAssignment ItemType = "assignment"
	TypeQuiz       ItemType = "quiz"
	TypeMidterm    ItemType = "midterm"
	TypeFinal      ItemType = "final"
	TypeProject    ItemType = "project"
	TypeLab        ItemType = "lab"
	TypeWork       ItemType = "work"
	TypePersonal   ItemType = "personal"
	TypeOther      ItemType = "other"
)

// ItemTypes lists every accepted ItemType in schema order.
var ItemTypes = []ItemType{
	TypeAssignment, TypeQuiz, TypeMidterm, TypeFinal, TypeProject,
	TypeLab, TypeWork, TypePersonal, TypeOther,
}

// UnknownCourse is used when no course identifier could be found.
const UnknownCourse = "Unknown Course"

// ScheduleItem is a single dated entry extracted from one document.
type ScheduleItem struct {
	Title string   `json:"title"`
	Type  ItemType `json:"type"`
	// Date is canonical YYYY-MM-DD.
	Date string `json:"date"`
	// Time is HH:MM (24-hour) or free text such as "in class"; empty if unknown.
	Time string `json:"time"`
	// Weight is a percent value; nil when the document does not state one.
	Weight    *float64 `json:"weight"`
	Notes     string   `json:"notes"`
	Reminders []string `json:"reminders"`
}

// CourseExtraction is the structured result for one input document.
type CourseExtraction struct {
	CourseName string         `json:"course_name"`
	Source     string         `json:"source"`
	Term       string         `json:"term"`
	Items      []ScheduleItem `json:"items"`
}

// AggregatedEvent is a flattened item tagged with its parent course name.
type AggregatedEvent struct {
	Course string   `json:"course"`
	Title  string   `json:"title"`
	Type   ItemType `json:"type"`
	Date   string   `json:"date"`
	Time   string   `json:"time"`
	Weight *float64 `json:"weight"`
	Notes  string   `json:"notes"`
}

// ExportEvent is the minimal record the calendar serializer needs. Clients
// posting to the export endpoint may send extra fields; they are ignored.
type ExportEvent struct {
	Course string   `json:"course"`
	Title  string   `json:"title"`
	Date   string   `json:"date"`
	Weight *float64 `json:"weight"`
}

// Export converts an aggregated event into its export form.
func (e AggregatedEvent) Export() ExportEvent {
	return ExportEvent{
		Course: e.Course,
		Title:  e.Title,
		Date:   e.Date,
		Weight: e.Weight,
	}
}

// ProcessResult is the response for a processed batch of documents.
type ProcessResult struct {
	Courses []CourseExtraction `json:"courses"`
	Events  []AggregatedEvent  `json:"events"`
}

// Float returns a pointer to v; handy for optional weights.
func Float(v float64) *float64 {
	return &v
}
