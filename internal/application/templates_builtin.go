package application

import "time"

var builtinSeedTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func section(id, label, description, placeholder string, order int) TemplateSection {
	return TemplateSection{
		ID:          id,
		Label:       label,
		Description: description,
		Placeholder: placeholder,
		Order:       order,
		Enabled:     true,
	}
}

var builtinTemplates = []CustomTemplate{
	{
		ID:          "quick-summary",
		Name:        "Quick Summary",
		Description: "A short overview of what happened in the session.",
		Icon:        "zap",
		Sections: []TemplateSection{
			section("overview", "Overview", "One paragraph describing the session.", "What did you work on?", 0),
			section("highlights", "Highlights", "The most important moments.", "Key moments", 1),
			section("next-steps", "Next Steps", "What should happen next.", "Follow-ups", 2),
		},
	},
	{
		ID:          "detailed-report",
		Name:        "Detailed Report",
		Description: "A full write-up with context, timeline and outcomes.",
		Icon:        "file-text",
		Sections: []TemplateSection{
			section("summary", "Summary", "Executive summary of the session.", "In short...", 0),
			section("context", "Context", "Background needed to follow the work.", "Why this work happened", 1),
			section("timeline", "Timeline", "Chronological list of activity.", "What happened when", 2),
			section("findings", "Findings", "Observations and results.", "What was learned", 3),
			section("outcomes", "Outcomes", "Decisions made and results delivered.", "What changed", 4),
			section("next-steps", "Next Steps", "Follow-up work.", "What comes next", 5),
		},
	},
	{
		ID:          "action-items",
		Name:        "Action Items",
		Description: "Tasks and owners extracted from the session.",
		Icon:        "check-square",
		Sections: []TemplateSection{
			section("context", "Context", "Where the action items came from.", "Meeting or ticket", 0),
			section("action-items", "Action Items", "Concrete tasks to complete.", "Task list", 1),
			section("blockers", "Blockers", "Anything preventing progress.", "Open issues", 2),
			section("owners", "Owners", "Who is responsible for what.", "Assignments", 3),
		},
	},
	{
		ID:          "research-notes",
		Name:        "Research Notes",
		Description: "Sources, notes and open questions from a research session.",
		Icon:        "book-open",
		Sections: []TemplateSection{
			section("question", "Research Question", "What the session set out to learn.", "Question", 0),
			section("sources", "Sources", "Pages and documents consulted.", "Links", 1),
			section("notes", "Notes", "Key notes and quotes.", "Notes", 2),
			section("insights", "Insights", "Conclusions drawn from the sources.", "Takeaways", 3),
			section("open-questions", "Open Questions", "What is still unknown.", "Questions", 4),
		},
	},
}

// builtinTemplateIndex maps built-in template ids to their catalog position.
var builtinTemplateIndex = func() map[string]int {
	index := make(map[string]int, len(builtinTemplates))
	for i := range builtinTemplates {
		builtinTemplates[i].IsDefault = true
		builtinTemplates[i].CreatedFrom = SourceDefault
		builtinTemplates[i].CreatedAt = builtinSeedTime
		builtinTemplates[i].UpdatedAt = builtinSeedTime
		index[builtinTemplates[i].ID] = i
	}
	return index
}()

// IsBuiltinTemplate reports whether id names a seeded template.
func IsBuiltinTemplate(id string) bool {
	_, ok := builtinTemplateIndex[id]
	return ok
}

// BuiltinTemplates returns copies of the seeded templates in catalog order.
func BuiltinTemplates() []CustomTemplate {
	out := make([]CustomTemplate, 0, len(builtinTemplates))
	for _, tmpl := range builtinTemplates {
		out = append(out, cloneTemplate(tmpl))
	}
	return out
}

func cloneTemplate(tmpl CustomTemplate) CustomTemplate {
	tmpl.Sections = append([]TemplateSection{}, tmpl.Sections...)
	return tmpl
}
