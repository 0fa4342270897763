package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/stash/cmd/stash/cmd/buckets"
	"github.com/agentstation/stash/cmd/stash/cmd/items"
	"github.com/agentstation/stash/cmd/stash/cmd/refresh"
	"github.com/agentstation/stash/cmd/stash/cmd/serve"
	"github.com/agentstation/stash/cmd/stash/cmd/watch"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(refresh.NewCommand(a))
	rootCmd.AddCommand(buckets.NewCommand(a))
	rootCmd.AddCommand(items.NewCommand(a))

	// Service commands
	rootCmd.AddCommand(watch.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newManCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("stash %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

func (a *App) newManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "STASH",
				Section: "1",
				Source:  "stash " + a.version,
				Manual:  "stash Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
