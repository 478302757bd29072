package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/templatefile"
)

func templateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage document templates",
	}
	cmd.AddCommand(
		templateListCmd(a),
		templateShowCmd(a),
		templateCloneCmd(a),
		templateToggleCmd(a),
		templateReorderCmd(a),
		templateImportCmd(a),
		templateDeleteCmd(a),
	)
	return cmd
}

func templateListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and user templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := a.ws.Templates.ListTemplates(cmd.Context())
			return a.emit(templates, func() {
				rows := make([][]string, 0, len(templates))
				for _, t := range templates {
					rows = append(rows, []string{
						t.ID, t.Name, string(t.CreatedFrom),
						fmt.Sprintf("%d/%d", len(application.EnabledSections(t)), len(t.Sections)),
					})
				}
				a.table("ID\tNAME\tSOURCE\tSECTIONS", rows)
			})
		},
	}
}

func templateShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <template-id>",
		Short: "Print a template as an importable YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.template(cmd, args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.emit(tmpl, nil)
			}
			data, err := templatefile.Encode(tmpl)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}

func (a *app) template(cmd *cobra.Command, id string) (application.CustomTemplate, error) {
	tmpl, ok := a.ws.Templates.Template(cmd.Context(), id)
	if !ok {
		return application.CustomTemplate{}, fmt.Errorf("template %q: %w", id, application.ErrNotFound)
	}
	return tmpl, nil
}

func (a *app) printTemplate(tmpl application.CustomTemplate) {
	fmt.Fprintf(a.stdout, "%s  %s\n", tmpl.ID, tmpl.Name)
	for _, sec := range tmpl.Sections {
		mark := "x"
		if !sec.Enabled {
			mark = " "
		}
		fmt.Fprintf(a.stdout, "  [%s] %d %s (%s)\n", mark, sec.Order, sec.Label, sec.ID)
	}
}

func templateCloneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <template-id>",
		Short: "Copy a template into an editable user template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clone, err := a.ws.Templates.CloneTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(clone, func() { a.printTemplate(clone) })
		},
	}
}

func templateToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <template-id> <section-id>",
		Short: "Enable or disable a section of a user template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.ws.Templates.ToggleSection(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emit(tmpl, func() { a.printTemplate(tmpl) })
		},
	}
}

func templateReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <template-id> <section-id>...",
		Short: "Set the section order of a user template",
		Long:  "Section ids may be given as separate arguments or comma separated; every section must be listed once.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []string
			for _, arg := range args[1:] {
				for _, id := range strings.Split(arg, ",") {
					if id = strings.TrimSpace(id); id != "" {
						ids = append(ids, id)
					}
				}
			}
			tmpl, err := a.ws.Templates.ReorderSections(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			return a.emit(tmpl, func() { a.printTemplate(tmpl) })
		},
	}
}

func templateImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path-or-url>",
		Short: "Create a user template from a YAML or JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importer := a.importer()
			source := args[0]

			var (
				tmpl application.CustomTemplate
				err  error
			)
			if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
				tmpl, err = importer.ImportURL(cmd.Context(), source)
			} else {
				tmpl, err = importer.ImportFile(cmd.Context(), source)
			}
			if err != nil {
				return err
			}
			return a.emit(tmpl, func() { a.printTemplate(tmpl) })
		},
	}
}

func templateDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a user template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.ws.Templates.DeleteTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("template %q: %w", args[0], application.ErrNotFound)
			}
			fmt.Fprintf(a.stdout, "Deleted template %s\n", args[0])
			return nil
		},
	}
}
