package cli

import (
	"fmt"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/pm/config"
	"github.com/abdul-hamid-achik/photomark/internal/pm/output"
	"github.com/abdul-hamid-achik/photomark/internal/presets"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Manage saved watermark templates",
	Long: `Templates are named watermark styles stored in ~/.config/photomark/config.yaml.
Built-in templates (classic, dark, localized, web) can be shadowed but not deleted.
PHOTOMARK_TEMPLATE overrides the default template for one shell.`,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a template as YAML (default template when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTemplateShow,
}

var templateSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save the given style flags as a template",
	Long: `Save style flags as a named template. --from starts from another template.

Examples:
  pm template save studio --text "© Studio" --opacity 70 --position top-right
  pm template save studio-web --from studio --size lg --format jpeg --quality 85`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateSave,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

var templateDefaultCmd = &cobra.Command{
	Use:   "default [name]",
	Short: "Show or set the default template",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTemplateDefault,
}

var (
	templateFrom  string
	templateStyle styleFlags
)

func init() {
	templateSaveCmd.Flags().StringVar(&templateFrom, "from", "", "Template to start from")
	templateStyle.register(templateSaveCmd.Flags())

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateSaveCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateDefaultCmd)
}

type templateRow struct {
	Name     string `json:"name"`
	Builtin  bool   `json:"builtin"`
	Default  bool   `json:"default"`
	Anchor   string `json:"anchor"`
	Resize   string `json:"resize"`
	Format   string `json:"format"`
	Text     string `json:"text,omitempty"`
	Logo     string `json:"logo,omitempty"`
	Problems string `json:"error,omitempty"`
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	_, defaultName, _ := cfg.ResolveTemplate("")

	rows := make([]templateRow, 0)
	for _, name := range cfg.TemplateNames() {
		tmpl, _ := cfg.GetTemplate(name)
		_, userDefined := cfg.Templates[name]
		row := templateRow{
			Name:    name,
			Builtin: config.IsBuiltin(name) && !userDefined,
			Default: name == defaultName,
		}
		spec, err := tmpl.Spec()
		if err != nil {
			row.Problems = err.Error()
		} else {
			row.Anchor = string(spec.BaseText.Anchor)
			row.Resize = presets.Describe(spec.Resize)
			row.Format = string(spec.Format)
			if spec.CustomText != nil {
				row.Text = spec.CustomText.Content
			}
			if spec.Logo != nil {
				row.Logo = spec.Logo.Path
			}
		}
		rows = append(rows, row)
	}

	if jsonOutput {
		return printer.JSON(rows)
	}

	table := output.NewTableWriter(cmd.OutOrStdout(), []string{"", "Name", "Anchor", "Resize", "Format", "Text", "Logo"}, quietMode)
	for _, r := range rows {
		mark := ""
		if r.Default {
			mark = "*"
		}
		name := r.Name
		if r.Builtin {
			name += " (built-in)"
		}
		if r.Problems != "" {
			table.Append([]string{mark, name, "invalid: " + r.Problems})
			continue
		}
		table.Append([]string{mark, name, r.Anchor, r.Resize, r.Format, r.Text, r.Logo})
	}
	table.Render()
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	tmpl, resolved, err := cfg.ResolveTemplate(name)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrInvalidConfig)
	}

	if jsonOutput {
		return printer.JSON(map[string]interface{}{"name": resolved, "template": tmpl})
	}

	data, err := yaml.Marshal(map[string]config.Template{resolved: tmpl})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runTemplateSave(cmd *cobra.Command, args []string) error {
	name := args[0]

	var tmpl config.Template
	if templateFrom != "" {
		from, ok := cfg.GetTemplate(templateFrom)
		if !ok {
			return apperror.Wrap(fmt.Errorf("%w: %s", config.ErrUnknownTemplate, templateFrom), apperror.ErrInvalidConfig)
		}
		tmpl = from
	}
	templateStyle.applyTo(cmd, &tmpl)

	if err := cfg.SetTemplate(name, tmpl); err != nil {
		return apperror.Wrap(err, apperror.ErrInvalidConfig)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if jsonOutput {
		return printer.JSON(map[string]interface{}{"name": name, "template": tmpl})
	}
	if config.IsBuiltin(name) {
		printer.Warn("%s now shadows the built-in template of the same name", name)
	}
	printer.Success("Saved template %s", name)
	return nil
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	if err := cfg.DeleteTemplate(args[0]); err != nil {
		return apperror.Wrap(err, apperror.ErrInvalidConfig)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	printer.Success("Deleted template %s", args[0])
	return nil
}

func runTemplateDefault(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_, name, err := cfg.ResolveTemplate("")
		if err != nil {
			return apperror.Wrap(err, apperror.ErrInvalidConfig)
		}
		if jsonOutput {
			return printer.JSON(map[string]string{"default": name})
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
		return err
	}

	if err := cfg.SetDefault(args[0]); err != nil {
		return apperror.Wrap(err, apperror.ErrInvalidConfig)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	printer.Success("Default template is now %s", args[0])
	return nil
}
