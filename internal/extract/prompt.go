package extract

import (
	"schedcal/internal/ai"
)

const systemPrompt = "You are an assistant that extracts calendar events from one or more documents. " +
	"Return ONLY valid JSON that strictly follows the provided JSON schema. Do not include any explanatory text."

const userPrompt = "Imagine you are a university student building a semester schedule. " +
	"Using ALL of the provided documents, find every dated item (assignments, quizzes, midterms, finals, projects, labs), " +
	"and also include non-school dated items like work schedules or personal events. " +
	"For each item return: title, type (assignment/quiz/midterm/final/project/lab/work/personal/other), " +
	"date as YYYY-MM-DD, optional time, weight in percent if stated, and notes. " +
	"When a date is given as a range, use the latest date in the range as the due date. " +
	"If a year is missing, infer the most likely year for the semester (prefer the upcoming year/term). " +
	"Additionally, for each item compute reminders exactly 7, 5, and 3 days before the due date and include them " +
	"as ISO dates in the 'reminders' array (omit reminders that would fall before year 1900). " +
	"Make sure to use all documents to find all tests and assignments. " +
	"If a document is not a course outline (for example a work schedule), include those dated events as type 'work' or 'personal' as appropriate. " +
	"If you cannot find a course name for an item, set course_name to 'Unknown Course'. " +
	"Return one JSON object per document with 'course_name' and 'items'. " +
	"The 'items' array may be empty if no dated items are found.\n\n"

// BuildRequest assembles the structured-extraction request for one
// normalized document text.
func BuildRequest(model, text string) ai.Request {
	return ai.Request{
		Model: model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: userPrompt + text},
		},
		Schema: ai.ScheduleSchema(),
	}
}
