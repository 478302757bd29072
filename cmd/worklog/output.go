package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/worklog/internal/application"
)

// emit prints v as JSON when --json is set and runs text otherwise.
func (a *app) emit(v any, text func()) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

func (a *app) table(header string, rows [][]string) {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func (a *app) printSession(session application.RecordingSession) {
	fmt.Fprintf(a.stdout, "%s  %s  [%s]  %s  %d events\n",
		session.ID, session.Name, session.Status,
		application.FormatDuration(session, a.ws.Now()), len(session.Events))
}

func (a *app) printContent(content application.GeneratedContent) {
	fmt.Fprintf(a.stdout, "# %s\n\n", content.Title)
	if content.Summary != "" {
		fmt.Fprintf(a.stdout, "%s\n\n", content.Summary)
	}
	for _, sec := range content.Sections {
		fmt.Fprintf(a.stdout, "## %s\n\n", sec.Label)
		if sec.Content.IsList() {
			for _, item := range sec.Content.Items {
				fmt.Fprintf(a.stdout, "- %s\n", item)
			}
		} else if sec.Content.Text != "" {
			fmt.Fprintln(a.stdout, sec.Content.Text)
		}
		fmt.Fprintln(a.stdout)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
