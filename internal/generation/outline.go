// Package generation holds the built-in content generator. It produces a
// deterministic outline of a session so documents can be drafted without an
// external writing service.
package generation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/example/worklog/internal/application"
)

// OutlineGenerator fills each template section from the session's events.
type OutlineGenerator struct {
	// MaxItems caps list sections. Zero means no cap.
	MaxItems int
}

var _ application.Generator = OutlineGenerator{}

// Generate implements application.Generator.
func (g OutlineGenerator) Generate(ctx context.Context, req application.GenerationRequest) (application.GeneratedContent, error) {
	if err := ctx.Err(); err != nil {
		return application.GeneratedContent{}, err
	}

	session := req.Session
	events := slices.Clone(session.Events)
	slices.SortStableFunc(events, func(a, b application.ActivityEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	summary := fmt.Sprintf("%s: %d %s over %s.",
		session.Name, len(events), plural(len(events), "event", "events"),
		application.FormatDuration(session, sessionEnd(session, events)))

	sections := make([]application.ContentSection, 0, len(req.Template.Sections))
	for _, sec := range req.Template.Sections {
		sections = append(sections, application.ContentSection{
			Label:   sec.Label,
			Content: g.body(sec, summary, events),
		})
	}

	return application.GeneratedContent{
		Title:    session.Name,
		Summary:  summary,
		Sections: sections,
		Tags:     slices.Clone(session.Tags),
	}, nil
}

func (g OutlineGenerator) body(sec application.TemplateSection, summary string, events []application.ActivityEvent) application.SectionBody {
	switch sec.ID {
	case "overview", "summary", "context", "question":
		return application.TextBody(summary)
	case "timeline":
		return application.ListBody(g.limit(eventLines(events, func(ev application.ActivityEvent) string {
			return fmt.Sprintf("%s %s", ev.Timestamp.UTC().Format("15:04"), ev.Title)
		}))...)
	case "sources":
		return application.ListBody(g.limit(sources(events))...)
	case "highlights", "findings", "notes", "insights", "outcomes":
		return application.ListBody(g.limit(highlights(events))...)
	}
	if len(events) == 0 {
		return application.TextBody(sec.Placeholder)
	}
	return application.ListBody(g.limit(eventLines(events, func(ev application.ActivityEvent) string {
		return ev.Title
	}))...)
}

func (g OutlineGenerator) limit(items []string) []string {
	if g.MaxItems > 0 && len(items) > g.MaxItems {
		return items[:g.MaxItems]
	}
	return items
}

func eventLines(events []application.ActivityEvent, line func(application.ActivityEvent) string) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.Title) == "" {
			continue
		}
		out = append(out, line(ev))
	}
	return out
}

// sources lists distinct URLs, falling back to the event source name.
func sources(events []application.ActivityEvent) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, ev := range events {
		src := ev.URL
		if src == "" {
			src = ev.Source
		}
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}

// highlights prefers explicit content highlights, then summaries, then titles.
func highlights(events []application.ActivityEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		switch {
		case ev.Content != nil && len(ev.Content.Highlights) > 0:
			out = append(out, ev.Content.Highlights...)
		case ev.Content != nil && ev.Content.Summary != "":
			out = append(out, ev.Content.Summary)
		case strings.TrimSpace(ev.Title) != "":
			out = append(out, ev.Title)
		}
	}
	return out
}

// sessionEnd picks the reference time for the duration without reading a
// clock, so equal requests give equal output.
func sessionEnd(session application.RecordingSession, events []application.ActivityEvent) time.Time {
	if session.EndTime != nil {
		return *session.EndTime
	}
	if len(events) > 0 {
		return events[len(events)-1].Timestamp
	}
	return session.StartTime
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
