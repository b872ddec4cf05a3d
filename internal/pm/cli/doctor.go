package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/health"
	"github.com/abdul-hamid-achik/photomark/internal/processor"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check fonts, template and output paths before a run",
	Long: `Check that a watermark run would have what it needs.

Examples:
  pm doctor
  pm doctor -t studio -o ./out --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var (
	doctorOutput   string
	doctorTemplate string
)

func init() {
	doctorCmd.Flags().StringVarP(&doctorOutput, "output", "o", "", "Output directory to test for write access")
	doctorCmd.Flags().StringVarP(&doctorTemplate, "template", "t", "", "Template to validate (default: the default template)")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checker := health.NewChecker()

	spec, name, specErr := resolveSpec(cmd, doctorTemplate, &styleFlags{})
	checker.Add("template", name, func(context.Context) error { return specErr })

	fontDetail := "embedded Go Regular (no system font found)"
	if path, ok := watermarkEngine().Fonts().SystemFont(); ok {
		fontDetail = path
	}
	checker.Add("fonts", fontDetail, func(context.Context) error { return nil })

	registry := processor.DefaultRegistry
	checker.Add("processors", strings.Join(registry.List(), ", "), func(context.Context) error {
		for _, name := range []string{"watermark", "metadata"} {
			if _, err := registry.GetOrError(name); err != nil {
				return err
			}
		}
		return nil
	})

	if specErr == nil && spec.Logo != nil {
		checker.Add("logo", spec.Logo.Path, health.ReadableFile(spec.Logo.Path))
	}
	if doctorOutput != "" {
		checker.Add("output", doctorOutput, health.WritableDir(doctorOutput))
	}
	if runtimeCfg.MetricsFile != "" {
		checker.Add("metrics_file", runtimeCfg.MetricsFile, health.WritableDir(filepath.Dir(runtimeCfg.MetricsFile)))
	}

	resp := checker.CheckAll(cmd.Context())

	if jsonOutput {
		if err := printer.JSON(resp); err != nil {
			return err
		}
	} else {
		for _, c := range resp.Components {
			if c.Status == health.StatusHealthy {
				printer.Success("%s: %s", c.Name, c.Detail)
			} else {
				printer.Error("%s: %s (%s)", c.Name, c.Error, c.Detail)
			}
		}
	}

	if resp.Status != health.StatusHealthy {
		return apperror.Wrap(fmt.Errorf("environment check failed"), apperror.ErrInvalidConfig)
	}
	return nil
}
