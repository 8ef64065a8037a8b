// Command bigadd adds two large random numbers with several distributed
// strategies and checks every result against a sequential reference.
//
// Usage:
//
//	bigadd [flags] <N1> <N2> [variant]
//	bigadd -server [flags]
package main

import (
	"context"
	"errors"
	"os"

	"github.com/agbru/bigadd/internal/app"
	apperrors "github.com/agbru/bigadd/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(apperrors.ExitErrorConfig)
		}
		os.Exit(apperrors.ExitErrorGeneric)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
