package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/worklog/internal/application"
)

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the active recording profile",
	}
	cmd.AddCommand(profileShowCmd(a), profileSetCmd(a), profilePrefsCmd(a))
	return cmd
}

func profileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active profile and its capture preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			active := a.ws.Profiles.ActiveProfile(ctx)
			prefs := a.ws.Profiles.EffectivePreferences(ctx)
			return a.emit(map[string]any{"active": active, "preferences": prefs}, func() {
				fmt.Fprintf(a.stdout, "Active profile: %s (%s)\n\n", active.Name, active.Type)
				a.printPreferences(prefs)
			})
		},
	}
}

func profileSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "set <student|developer|support|researcher|custom>",
		Short:     "Switch the active profile",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"student", "developer", "support", "researcher", "custom"},
		RunE: func(cmd *cobra.Command, args []string) error {
			t := application.ProfileType(args[0])
			if err := a.ws.Profiles.SetActiveProfile(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Active profile set to %s\n", t)
			return nil
		},
	}
}

var prefFlags = []struct {
	name  string
	usage string
	field func(*application.RecordingPreferences) *bool
}{
	{"tabs", "track browser tabs", func(p *application.RecordingPreferences) *bool { return &p.TrackBrowserTabs }},
	{"apps", "track applications", func(p *application.RecordingPreferences) *bool { return &p.TrackApplications }},
	{"terminal", "track terminal commands", func(p *application.RecordingPreferences) *bool { return &p.TrackTerminal }},
	{"messaging", "track messaging", func(p *application.RecordingPreferences) *bool { return &p.TrackMessaging }},
	{"meetings", "track meetings", func(p *application.RecordingPreferences) *bool { return &p.TrackMeetings }},
	{"docs", "track documents and notes", func(p *application.RecordingPreferences) *bool { return &p.TrackDocuments }},
	{"media", "track media", func(p *application.RecordingPreferences) *bool { return &p.TrackMedia }},
	{"screenshots", "keep screenshots on captured events", func(p *application.RecordingPreferences) *bool { return &p.CaptureScreenshots }},
}

func profilePrefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or edit the custom profile preferences",
		Long: `Without flags, prints the custom preference set. Each flag changes one
setting; the rest keep their stored values. The set takes effect when the
custom profile is active.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prefs := a.ws.Profiles.CustomPreferences(ctx)

			changed := false
			for _, pf := range prefFlags {
				if !cmd.Flags().Changed(pf.name) {
					continue
				}
				v, err := cmd.Flags().GetBool(pf.name)
				if err != nil {
					return err
				}
				*pf.field(&prefs) = v
				changed = true
			}
			if cmd.Flags().Changed("interval") {
				v, err := cmd.Flags().GetInt("interval")
				if err != nil {
					return err
				}
				prefs.CaptureInterval = v
				changed = true
			}

			if changed {
				if err := a.ws.Profiles.UpdateCustomPreferences(ctx, prefs); err != nil {
					return err
				}
			}
			return a.emit(prefs, func() { a.printPreferences(prefs) })
		},
	}
	for _, pf := range prefFlags {
		cmd.Flags().Bool(pf.name, false, pf.usage)
	}
	cmd.Flags().Int("interval", 0, "seconds between automatic captures from one source (0 disables limiting)")
	return cmd
}

func (a *app) printPreferences(prefs application.RecordingPreferences) {
	rows := make([][]string, 0, len(prefFlags)+1)
	for _, pf := range prefFlags {
		rows = append(rows, []string{pf.name, onOff(*pf.field(&prefs))})
	}
	rows = append(rows, []string{"interval", strconv.Itoa(prefs.CaptureInterval) + "s"})
	a.table("SETTING\tVALUE", rows)
}
