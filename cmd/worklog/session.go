package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/worklog/internal/application"
)

func sessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record work sessions",
	}
	cmd.AddCommand(
		sessionStartCmd(a),
		sessionTransitionCmd(a, "pause", "Pause the active session", a.pause),
		sessionTransitionCmd(a, "resume", "Resume the paused session", a.resume),
		sessionTransitionCmd(a, "complete", "Complete the active session", a.complete),
		sessionStatusCmd(a),
		sessionEventCmd(a),
		sessionListCmd(a),
		sessionDeleteCmd(a),
	)
	return cmd
}

func sessionStartCmd(a *app) *cobra.Command {
	var params application.StartSessionParams
	var profile string
	cmd := &cobra.Command{
		Use:   "start <name>",
		Short: "Start recording a new session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Name = args[0]
			params.ProfileType = application.ProfileType(profile)
			session, err := a.ws.Sessions.StartSession(cmd.Context(), params)
			if err != nil {
				return err
			}
			return a.emit(session, func() { a.printSession(session) })
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "profile to record under (default: active profile)")
	cmd.Flags().StringVar(&params.TicketID, "ticket", "", "ticket or issue reference")
	cmd.Flags().StringSliceVar(&params.Tags, "tag", nil, "tag to attach (repeatable)")
	return cmd
}

type transitionFunc func(cmd *cobra.Command, id string) (application.RecordingSession, error)

func (a *app) pause(cmd *cobra.Command, id string) (application.RecordingSession, error) {
	return a.ws.Sessions.Pause(cmd.Context(), id)
}

func (a *app) resume(cmd *cobra.Command, id string) (application.RecordingSession, error) {
	return a.ws.Sessions.Resume(cmd.Context(), id)
}

func (a *app) complete(cmd *cobra.Command, id string) (application.RecordingSession, error) {
	return a.ws.Sessions.Complete(cmd.Context(), id)
}

func sessionTransitionCmd(a *app, use, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [session-id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.sessionID(cmd, args)
			if err != nil {
				return err
			}
			session, err := fn(cmd, id)
			if err != nil {
				return err
			}
			return a.emit(session, func() { a.printSession(session) })
		},
	}
}

// sessionID returns the explicit id or the in-flight session's.
func (a *app) sessionID(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	active, ok := a.ws.Sessions.ActiveSession(cmd.Context())
	if !ok {
		return "", application.ErrNoActiveSession
	}
	return active.ID, nil
}

func sessionStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the in-flight session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, ok := a.ws.Sessions.ActiveSession(cmd.Context())
			if !ok {
				return a.emit(nil, func() { fmt.Fprintln(a.stdout, "No active session") })
			}
			return a.emit(session, func() {
				a.printSession(session)
				for _, ev := range session.Events {
					fmt.Fprintf(a.stdout, "  %s  %-7s %s\n", formatTime(ev.Timestamp), ev.Type, ev.Title)
				}
			})
		},
	}
}

func sessionEventCmd(a *app) *cobra.Command {
	var raw application.RawEvent
	var eventType, trigger string
	cmd := &cobra.Command{
		Use:   "event <title>",
		Short: "Capture an event into the active session",
		Long: `Runs the event through the active profile's capture policy. Events from
the command line are manual unless --trigger automatic is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.ws.Now()
			raw.Title = args[0]
			raw.Type = application.EventType(eventType)
			raw.Trigger = application.CaptureTrigger(trigger)
			raw.Timestamp = &now
			if raw.ID == "" {
				raw.ID = fmt.Sprintf("cli-%d", now.UnixNano())
			}

			event, decision, err := a.ws.Sessions.Capture(cmd.Context(), raw)
			if err != nil {
				return err
			}
			result := map[string]any{"admitted": decision.Admitted(), "reason": decision}
			if decision.Admitted() {
				result["event"] = event
			}
			return a.emit(result, func() {
				if decision.Admitted() {
					fmt.Fprintf(a.stdout, "Recorded %s %q\n", event.Type, event.Title)
					return
				}
				fmt.Fprintf(a.stdout, "Not recorded: %s\n", decision)
			})
		},
	}
	cmd.Flags().StringVar(&eventType, "type", string(application.EventNote), "event type (tab, app, message, action, note)")
	cmd.Flags().StringVar(&raw.Source, "source", "cli", "capture source")
	cmd.Flags().StringVar(&raw.Description, "description", "", "longer description")
	cmd.Flags().StringVar(&raw.URL, "url", "", "related URL")
	cmd.Flags().StringVar(&raw.ID, "id", "", "event id (default: generated)")
	cmd.Flags().StringVar(&trigger, "trigger", string(application.TriggerManual), "manual or automatic")
	return cmd
}

func sessionListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active session and the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions := a.ws.Sessions.ListSessions(cmd.Context())
			return a.emit(sessions, func() {
				rows := make([][]string, 0, len(sessions))
				now := a.ws.Now()
				for _, s := range sessions {
					rows = append(rows, []string{
						s.ID, s.Name, string(s.Status), formatTime(s.StartTime),
						application.FormatDuration(s, now), fmt.Sprint(len(s.Events)),
					})
				}
				a.table("ID\tNAME\tSTATUS\tSTARTED\tDURATION\tEVENTS", rows)
			})
		},
	}
}

func sessionDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete an archived session; its articles are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.ws.Sessions.DeleteSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("session %q: %w", args[0], application.ErrNotFound)
			}
			fmt.Fprintf(a.stdout, "Deleted session %s\n", args[0])
			return nil
		},
	}
}
