package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/batch"
	"github.com/abdul-hamid-achik/photomark/internal/metrics"
	"github.com/abdul-hamid-achik/photomark/internal/pm/output"
	"github.com/abdul-hamid-achik/photomark/internal/pm/version"
	"github.com/abdul-hamid-achik/photomark/internal/tracing"
	"github.com/abdul-hamid-achik/photomark/internal/watermark"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply [files|directories...]",
	Short: "Watermark photos into an output directory",
	Long: `Watermark photos with their capture date and optional text or logo.

Inputs may be files, directories or glob patterns. With a single directory
and no -o, output goes to <dir>/<dirname>_watermark. Exporting into the
directory the photos came from is refused unless --allow-export-to-input
is given.

Examples:
  pm apply ./photos
  pm apply ./photos -o ./out --template web
  pm apply "*.jpg" -o ./out --text "© Studio" --opacity 60 --shadow
  pm apply ./photos -r -o ./out --logo logo.png --logo-size thumbnail --position top-right
  pm apply ./photos -o ./out --x 0.1 --y 0.9 --rotate 15 --format png`,
	RunE: runApply,
}

var (
	applyOutput     string
	applyTemplate   string
	applyRecursive  bool
	applyAllowInput bool
	applyProgress   bool
	applyStyle      styleFlags
)

func init() {
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Output directory")
	applyCmd.Flags().StringVarP(&applyTemplate, "template", "t", "", "Saved template to start from")
	applyCmd.Flags().BoolVarP(&applyRecursive, "recursive", "r", false, "Descend into subdirectories")
	applyCmd.Flags().BoolVar(&applyAllowInput, "allow-export-to-input", false, "Allow writing into the source directory")
	applyCmd.Flags().BoolVar(&applyProgress, "progress", false, "Show a progress bar")
	applyStyle.register(applyCmd.Flags())
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec, templateName, err := resolveSpec(cmd, applyTemplate, &applyStyle)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	outDir := applyOutput
	if outDir == "" {
		outDir, err = defaultOutputDir(args)
		if err != nil {
			return err
		}
	}

	files, err := batch.CollectImages(args, applyRecursive, outDir)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrNoInput)
	}

	shutdown, err := tracing.Init(ctx, &tracing.Config{
		ServiceName:    runtimeCfg.TraceServiceName,
		ServiceVersion: version.Short(),
		Environment:    runtimeCfg.Environment,
		OTLPEndpoint:   runtimeCfg.OTLPEndpoint,
		Enabled:        runtimeCfg.TracingEnabled,
		SampleRate:     runtimeCfg.TraceSampleRate,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(ctx) }()

	metrics.SetAppInfo(version.Short(), runtimeCfg.Environment)

	printer.Info("Watermarking %d images with template %q into %s", len(files), templateName, outDir)

	var progress *output.Progress
	if applyProgress && !jsonOutput && !quietMode {
		progress = output.NewProgress(len(files), "Watermarking", output.ProgressWithOutput(cmd.ErrOrStderr()))
	}

	var failures []batch.Result
	onResult := func(r batch.Result) {
		if !r.Success {
			failures = append(failures, r)
		}
		if progress != nil {
			progress.Increment()
			return
		}
		if r.Success {
			printer.ImageWritten(r.Source, r.Output, r.Label)
		} else {
			printer.ImageFailed(r.Source, r.Code, r.Err)
		}
	}

	proc := batch.New(watermarkEngine(),
		batch.WithSafety(!applyAllowInput),
		batch.WithOnResult(onResult),
		batch.WithLogger(batchLogger(cmd)),
		batch.WithRecorder(metrics.NewPrometheusCollector()),
	)

	summary, err := proc.Run(ctx, files, outDir, spec)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	if runtimeCfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(runtimeCfg.MetricsFile); err != nil {
			printer.Warn("Could not write metrics to %s: %v", runtimeCfg.MetricsFile, err)
		}
	}

	if jsonOutput {
		if err := printer.JSON(summary); err != nil {
			return err
		}
		return summary.Err()
	}

	if progress != nil {
		for _, r := range failures {
			printer.ImageFailed(r.Source, r.Code, r.Err)
		}
	}
	if summary.Cancelled {
		printer.Warn("Interrupted after %d of %d images", len(summary.Results), summary.Total)
	}
	printer.Summary(summary.Succeeded, summary.Total)
	if verboseMode && len(summary.Results) > 0 {
		printer.KeyValue("p95 per image", fmt.Sprintf("%dms", metrics.GetLatencyP95()))
	}

	return summary.Err()
}

// resolveSpec starts from the named (or default) template and overlays flags.
func resolveSpec(cmd *cobra.Command, name string, style *styleFlags) (watermark.Spec, string, error) {
	tmpl, resolved, err := cfg.ResolveTemplate(name)
	if err != nil {
		return watermark.Spec{}, resolved, apperror.Wrap(err, apperror.ErrInvalidConfig)
	}
	if tmpl.Quality == 0 {
		tmpl.Quality = watermarkEngine().DefaultSpec().Quality
	}
	style.applyTo(cmd, &tmpl)

	spec, err := tmpl.Spec()
	if err != nil {
		return watermark.Spec{}, resolved, apperror.Wrap(err, apperror.ErrInvalidConfig)
	}
	return spec, resolved, nil
}

func defaultOutputDir(args []string) (string, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return batch.DefaultOutputDir(args[0]), nil
		}
	}
	return "", apperror.Wrap(
		fmt.Errorf("pass -o when the input is not a single directory"),
		apperror.ErrInvalidOutputDirectory,
	)
}

func batchLogger(cmd *cobra.Command) zerolog.Logger {
	level, err := zerolog.ParseLevel(runtimeCfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	if verboseMode {
		level = zerolog.DebugLevel
	}

	if jsonOutput || runtimeCfg.LogFormat == "json" {
		return zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}
