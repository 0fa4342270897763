// Package main provides the entry point for the stash CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/stash/cmd/stash/app"
	"github.com/agentstation/stash/pkg/constants"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// SIGINT and SIGTERM cancel ctx; SIGHUP refreshes the profile
	ctx, cancel := application.SignalContext(context.Background())
	defer cancel()

	err = application.Execute(ctx, os.Args[1:])

	// Shutdown gets a fresh context because the signal context may be cancelled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()
	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
	}

	app.ExitOnError(err)
}
