package main

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/photomark/internal/apperror"
	"github.com/abdul-hamid-achik/photomark/internal/logger"
	"github.com/abdul-hamid-achik/photomark/internal/pm/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if cli.JSONOutput() {
			_ = apperror.WriteJSON(os.Stderr, logger.Default(), err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(apperror.ExitCode(err))
	}
}
