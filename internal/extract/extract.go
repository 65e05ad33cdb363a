// Package extract decides between AI-assisted and heuristic extraction for
// each document, repairs AI output and assembles batch results.
package extract

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"schedcal/internal/aggregate"
	"schedcal/internal/ai"
	"schedcal/internal/heuristic"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/reminder"
	"schedcal/internal/textnorm"
)

var errUnparseable = errors.New("no JSON object in completion response")

// Document is decoded text plus the name it was uploaded under.
type Document struct {
	Name string
	Text string
}

// Stats counts orchestration outcomes since process start.
type Stats struct {
	Requests        atomic.Int64
	AISuccess       atomic.Int64
	Fallbacks       atomic.Int64
	HeuristicDirect atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Requests        int64 `json:"requests"`
	AISuccess       int64 `json:"ai_success"`
	Fallbacks       int64 `json:"fallbacks"`
	HeuristicDirect int64 `json:"heuristic_direct"`
}

// Orchestrator extracts schedules from documents. It is safe for concurrent
// use; each call works on its own data.
type Orchestrator struct {
	completer   ai.Completer
	model       string
	heuristic   heuristic.Extractor
	concurrency int
	stats       Stats
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithModel sets the model identifier placed in completion requests.
func WithModel(model string) Option {
	return func(o *Orchestrator) { o.model = model }
}

// WithConcurrency sets how many documents of a batch are extracted at once.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithClock sets the clock the heuristic extractor uses for missing years.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.heuristic.Now = now }
}

// New returns an Orchestrator. A nil completer means heuristic-only mode.
func New(completer ai.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer:   completer,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AIEnabled reports whether a completer is configured.
func (o *Orchestrator) AIEnabled() bool {
	return o.completer != nil
}

// Stats returns a snapshot of the outcome counters.
func (o *Orchestrator) Stats() StatsSnapshot {
	return StatsSnapshot{
		Requests:        o.stats.Requests.Load(),
		AISuccess:       o.stats.AISuccess.Load(),
		Fallbacks:       o.stats.Fallbacks.Load(),
		HeuristicDirect: o.stats.HeuristicDirect.Load(),
	}
}

// Extract returns the schedule found in doc. It never fails: without a
// completer, on a completer error, or when no strategy can read the
// response, the heuristic extractor runs on the same text instead.
func (o *Orchestrator) Extract(ctx context.Context, doc Document) model.CourseExtraction {
	o.stats.Requests.Add(1)
	text := textnorm.Normalize(doc.Text)

	if o.completer == nil {
		o.stats.HeuristicDirect.Add(1)
		return withSource(o.heuristic.Extract(text), doc.Name)
	}

	resp, err := o.completer.Complete(ctx, BuildRequest(o.model, text))
	if err != nil {
		return o.fallback(doc, text, "completer_error", err)
	}

	ce, strategy, ok := parseResponse(resp)
	if !ok {
		return o.fallback(doc, text, "unparseable_response", errUnparseable)
	}

	o.stats.AISuccess.Add(1)
	appLog.Debug("ai extraction parsed", "document", doc.Name, "strategy", strategy, "items", len(ce.Items))
	return repair(ce, doc.Name)
}

func (o *Orchestrator) fallback(doc Document, text, reason string, err error) model.CourseExtraction {
	o.stats.Fallbacks.Add(1)
	appLog.Error("ai extraction failed, falling back to heuristic", err,
		"document", doc.Name,
		"reason", reason,
	)
	return withSource(o.heuristic.Extract(text), doc.Name)
}

// ProcessBatch extracts every document and aggregates the results. Output
// order follows input order regardless of concurrency.
func (o *Orchestrator) ProcessBatch(ctx context.Context, docs []Document) model.ProcessResult {
	courses := make([]model.CourseExtraction, len(docs))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i := range docs {
		g.Go(func() error {
			courses[i] = o.Extract(ctx, docs[i])
			return nil
		})
	}
	_ = g.Wait()

	return model.ProcessResult{
		Courses: courses,
		Events:  aggregate.Flatten(courses),
	}
}

// repair fills the gaps a parseable AI response may leave: a nil item list,
// a missing source and items whose reminders were omitted entirely.
func repair(ce model.CourseExtraction, name string) model.CourseExtraction {
	if ce.Items == nil {
		ce.Items = []model.ScheduleItem{}
	}
	for i := range ce.Items {
		if ce.Items[i].Reminders == nil {
			ce.Items[i].Reminders = reminder.Compute(ce.Items[i].Date)
		}
	}
	return withSource(ce, name)
}

func withSource(ce model.CourseExtraction, name string) model.CourseExtraction {
	if ce.Source == "" {
		ce.Source = name
	}
	return ce
}
