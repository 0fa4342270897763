// Package watch provides the watch command.
package watch

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/stash"
	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/internal/cmd/output"
	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/logging"
	"github.com/agentstation/stash/pkg/scheduler"
)

// NewCommand creates the watch command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		GroupID: "service",
		Short:   "Refresh whenever the profile snapshot file changes",
		Long: `Watch refreshes once, then watches the profile snapshot file and
triggers a refresh every time it is rewritten. Each committed refresh prints
one line, or one JSON/YAML document with -o json or -o yaml.

With auto_refresh enabled the client also polls on its own.`,
		Example: `  stash watch --profile profile.yaml --definitions defs.yaml
  stash watch -o json | jq .changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			source, err := app.ProfileSource()
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			return Run(ctx, client, source, app.AutoRefresh(), output.Format(app.OutputFormat()), cmd.OutOrStdout())
		},
	}
}

// Watcher reports changes to the profile source.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Run prints every update of client until ctx is done. Changes reported by
// w trigger profile refreshes.
func Run(ctx context.Context, client stash.Client, w Watcher, poll bool, format output.Format, out io.Writer) error {
	updates, cancel := client.Subscribe(constants.ChannelBufferSize)
	defer cancel()

	if poll {
		if err := client.AutoRefreshOn(); err != nil {
			return err
		}
		defer client.AutoRefreshOff() //nolint:errcheck
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Watch(ctx, func() {
			client.Trigger(scheduler.ReasonProfileUpdated)
		})
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case u, ok := <-updates:
				if !ok {
					return nil
				}
				if err := printUpdate(out, format, u); err != nil {
					return err
				}
			}
		}
	})

	client.Trigger(scheduler.ReasonCharactersLoaded)
	return g.Wait()
}

func printUpdate(w io.Writer, format output.Format, u stash.Update) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.NewFormatter(format).Format(w, u)
	}
	c := u.Summary
	_, err := fmt.Fprintf(w, "%s  generation %d: %d items in %d buckets (+%d -%d ~%d)\n",
		u.CommittedAt.Format("15:04:05"), u.Generation, u.Stats.Items, u.Stats.Buckets,
		c.ItemsAdded, c.ItemsRemoved, c.ItemsMoved)
	return err
}
