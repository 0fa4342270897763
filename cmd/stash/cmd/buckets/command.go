// Package buckets provides the buckets command.
package buckets

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/internal/cmd/output"
	"github.com/agentstation/stash/internal/cmd/table"
	"github.com/agentstation/stash/internal/server/filter"
)

// NewCommand creates the buckets command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var f filter.BucketFilter

	cmd := &cobra.Command{
		Use:     "buckets",
		GroupID: "core",
		Short:   "List reconciled buckets with their item counts",
		Long: `Buckets refreshes once and lists every bucket of the committed state,
including character views and the collections bucket.

Kinds: account, character, equipment, vault, postmaster, collections.`,
		Example: `  stash buckets
  stash buckets --kind equipment --owner 2305843009
  stash buckets --non-empty -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if _, err := client.Refresh(cmd.Context()); err != nil {
				return err
			}

			summaries := f.Apply(client.State().Buckets.All())
			format := output.Format(app.OutputFormat())
			return output.Render(cmd.OutOrStdout(), format, table.BucketsToTableData(summaries), summaries)
		},
	}

	cmd.Flags().StringVar(&f.Kind, "kind", "", "only buckets of this kind")
	cmd.Flags().StringVar(&f.Owner, "owner", "", "only buckets owned by this character")
	cmd.Flags().Uint32Var(&f.Hash, "hash", 0, "only buckets with this definition hash")
	cmd.Flags().BoolVar(&f.NonEmpty, "non-empty", false, "hide empty buckets")
	return cmd
}
