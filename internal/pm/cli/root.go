package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/abdul-hamid-achik/photomark/internal/config"
	"github.com/abdul-hamid-achik/photomark/internal/logger"
	"github.com/abdul-hamid-achik/photomark/internal/pm/config"
	"github.com/abdul-hamid-achik/photomark/internal/pm/output"
	"github.com/abdul-hamid-achik/photomark/internal/pm/version"
	"github.com/spf13/cobra"
)

var (
	jsonOutput  bool
	quietMode   bool
	verboseMode bool
	cfg         *config.Config
	runtimeCfg  *appconfig.Config
	printer     *output.Printer
)

var rootCmd = &cobra.Command{
	Use:   "pm",
	Short: "photomark - stamp capture dates, text and logos onto photos",
	Long: `pm is the command-line interface for photomark.

It reads each photo's capture time from EXIF (falling back to the file's
modification time), draws it as a label, optionally adds custom text and a
logo, and writes the result to a separate output directory.

Get started:
  pm apply ./holiday                     # Writes to ./holiday/holiday_watermark
  pm apply ./holiday -o ./out --text "© Me"
  pm template list                       # Show saved styles`,
	Version: version.Full(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		runtimeCfg, err = appconfig.Load()
		if err != nil {
			return err
		}

		level := runtimeCfg.LogLevel
		if verboseMode {
			level = "debug"
		}
		logger.Init(level, runtimeCfg.LogFormat, cmd.ErrOrStderr())

		cfg, err = config.Load()
		if err != nil {
			return err
		}

		printer = output.New(
			output.WithJSON(jsonOutput),
			output.WithQuiet(quietMode),
			output.WithOutput(cmd.OutOrStdout()),
			output.WithErrOutput(cmd.ErrOrStderr()),
		)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
// A batch interrupted that way stops before its next file.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// JSONOutput reports whether --json was given, for error rendering in main.
func JSONOutput() bool {
	return jsonOutput
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&quietMode, "quiet", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.SetVersionTemplate("pm version {{.Version}}\n")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(versionCmd)
}
