package cli

import (
	"fmt"

	"github.com/abdul-hamid-achik/photomark/internal/pm/output"
	"github.com/abdul-hamid-achik/photomark/internal/pm/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pm version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return output.New(output.WithOutput(cmd.OutOrStdout())).JSON(map[string]string{
				"version": version.Version,
				"commit":  version.Commit,
				"date":    version.Date,
			})
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "pm version %s\n", version.Full())
		return err
	},
}
