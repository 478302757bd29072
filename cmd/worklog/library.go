package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/worklog/internal/application"
)

func presetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved content presets",
	}
	cmd.AddCommand(presetListCmd(a), presetSaveCmd(a), presetDuplicateCmd(a), presetDeleteCmd(a))
	return cmd
}

func presetListCmd(a *app) *cobra.Command {
	var filters application.PresetFilters
	var profile, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List presets matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.ProfileType = application.ProfileType(profile)
			filters.Category = application.PresetCategory(category)
			presets := a.ws.Presets.FilterPresets(cmd.Context(), filters)
			return a.emit(presets, func() {
				rows := make([][]string, 0, len(presets))
				for _, p := range presets {
					rows = append(rows, []string{
						p.ID, p.Name, string(p.ProfileType), string(p.Category),
						strings.Join(p.Tags, ","), formatTime(p.UpdatedAt),
					})
				}
				a.table("ID\tNAME\tPROFILE\tCATEGORY\tTAGS\tUPDATED", rows)
			})
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "only presets for this profile")
	cmd.Flags().StringVar(&category, "category", "", "only presets in this category")
	cmd.Flags().StringSliceVar(&filters.Tags, "tag", nil, "presets carrying any of these tags")
	cmd.Flags().StringVarP(&filters.Search, "query", "q", "", "case-insensitive search over name, description and tags")
	return cmd
}

func presetSaveCmd(a *app) *cobra.Command {
	var opts application.PresetOptions
	var category, sessionID, templateID string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Generate content for a session and save it as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, req, err := a.ws.Generate(cmd.Context(), sessionID, templateID)
			if err != nil {
				return err
			}
			opts.Category = application.PresetCategory(category)
			preset, err := a.ws.Presets.SavePreset(cmd.Context(), args[0], content, req.ProfileType, opts)
			if err != nil {
				return err
			}
			return a.emit(preset, func() {
				fmt.Fprintf(a.stdout, "Saved preset %s (%s)\n", preset.Name, preset.ID)
			})
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session to generate from")
	cmd.Flags().StringVar(&templateID, "template", "quick-summary", "template to generate with")
	cmd.Flags().StringVar(&category, "category", "", "preset category (default general)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "preset description")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag to attach (repeatable)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func presetDuplicateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <preset-id>",
		Short: "Copy a preset under a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dup, found, err := a.ws.Presets.DuplicatePreset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("preset %q: %w", args[0], application.ErrNotFound)
			}
			return a.emit(dup, func() {
				fmt.Fprintf(a.stdout, "Saved preset %s (%s)\n", dup.Name, dup.ID)
			})
		},
	}
}

func presetDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <preset-id>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.ws.Presets.DeletePreset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("preset %q: %w", args[0], application.ErrNotFound)
			}
			fmt.Fprintf(a.stdout, "Deleted preset %s\n", args[0])
			return nil
		},
	}
}

func articleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article",
		Short: "Browse the article library",
	}
	cmd.AddCommand(articleListCmd(a), articleShowCmd(a), articleDeleteCmd(a))
	return cmd
}

func articleListCmd(a *app) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved articles, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			articles := a.ws.Articles.ListArticles(cmd.Context(), application.ProfileFilter(profile))
			return a.emit(articles, func() {
				rows := make([][]string, 0, len(articles))
				for _, art := range articles {
					rows = append(rows, []string{
						art.ID, art.Title, string(art.ProfileType), art.TemplateLabel, formatTime(art.CreatedAt),
					})
				}
				a.table("ID\tTITLE\tPROFILE\tTEMPLATE\tCREATED", rows)
			})
		},
	}
	cmd.Flags().StringVar(&profile, "profile", string(application.ProfileFilterAll), "profile to show, or all")
	return cmd
}

func articleShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <article-id>",
		Short: "Print a saved article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, ok := a.ws.Articles.Article(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("article %q: %w", args[0], application.ErrNotFound)
			}
			return a.emit(art, func() {
				a.printContent(application.GeneratedContent{
					Title:    art.Title,
					Summary:  art.Summary,
					Sections: art.Sections,
					Tags:     art.Tags,
				})
			})
		},
	}
}

func articleDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <article-id>",
		Short: "Delete a saved article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.ws.Articles.DeleteArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("article %q: %w", args[0], application.ErrNotFound)
			}
			fmt.Fprintf(a.stdout, "Deleted article %s\n", args[0])
			return nil
		},
	}
}
