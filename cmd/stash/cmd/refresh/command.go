// Package refresh provides the refresh command.
package refresh

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/internal/cmd/output"
	"github.com/agentstation/stash/internal/cmd/table"
	"github.com/agentstation/stash/pkg/progress"
)

// NewCommand creates the refresh command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "refresh",
		GroupID: "core",
		Short:   "Run one reconciliation and print its result",
		Long: `Refresh fetches the profile snapshot, reconciles it against the
definitions catalog and prints what changed.

Progress is shown on stderr when it is a terminal.`,
		Example: `  stash refresh --profile profile.yaml --definitions defs.yaml
  stash refresh -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			var opts []stash.RefreshOption
			if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress && isatty.IsTerminal(os.Stderr.Fd()) {
				opts = append(opts, stash.WithProgress(Printer(cmd.ErrOrStderr())))
			}

			result, err := client.Refresh(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			format := output.Format(app.OutputFormat())
			return output.Render(cmd.OutOrStdout(), format, table.ResultToTableData(result), result.Report())
		},
	}

	cmd.Flags().Bool("progress", true, "show progress on stderr")
	return cmd
}

// Printer returns a progress sink that redraws one status line on w and
// ends it the first time progress reaches 1.
func Printer(w io.Writer) progress.Func {
	var (
		mu   sync.Mutex
		done bool
	)
	return func(fraction float64, message string) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		_, _ = fmt.Fprintf(w, "\r[%3.0f%%] %-40s", fraction*100, message)
		if fraction >= 1 {
			done = true
			_, _ = fmt.Fprintln(w)
		}
	}
}
