// Package items provides the items command.
package items

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/stash/internal/appcontext"
	"github.com/agentstation/stash/internal/cmd/output"
	"github.com/agentstation/stash/internal/cmd/table"
	"github.com/agentstation/stash/internal/server/filter"
	"github.com/agentstation/stash/pkg/errors"
	"github.com/agentstation/stash/pkg/inventory"
)

// NewCommand creates the items command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		f           filter.ItemFilter
		flags       string
		showBuckets bool
	)

	cmd := &cobra.Command{
		Use:     "items [bucket-id]",
		GroupID: "core",
		Short:   "List the items of one bucket, or of every bucket",
		Long: `Items refreshes once and lists the items placed in a bucket. Without a
bucket id every item of the committed state is listed.

Bucket ids are "hash", "hash/scope" or "hash/scope/sub"; see "stash buckets".`,
		Example: `  stash items 1498876634/2305843009
  stash items --flags equipped
  stash items 3141592653/collections --name ace --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if _, err := client.Refresh(cmd.Context()); err != nil {
				return err
			}

			state := client.State()
			var summaries []inventory.ItemSummary
			if len(args) == 1 {
				id, err := inventory.ParseBucketID(args[0])
				if err != nil {
					return err
				}
				bucket, ok := state.Bucket(id)
				if !ok {
					return errors.NewNotFoundError("bucket", id.String())
				}
				summaries = bucket.ItemSummaries()
			} else {
				all := state.Items.All()
				summaries = make([]inventory.ItemSummary, 0, len(all))
				for _, item := range all {
					summaries = append(summaries, item.Summary())
				}
			}

			f.NameContains = strings.ToLower(f.NameContains)
			if flags != "" {
				f.Flags = strings.Split(flags, ",")
			}
			summaries = f.Apply(summaries)

			format := output.Format(app.OutputFormat())
			return output.Render(cmd.OutOrStdout(), format, table.ItemsToTableData(summaries, showBuckets), summaries)
		},
	}

	cmd.Flags().StringVar(&f.Owner, "owner", "", "only items owned by this character")
	cmd.Flags().StringVar(&f.NameContains, "name", "", "only items whose name contains this text")
	cmd.Flags().StringVar(&flags, "flags", "", "only items with all of these flags (comma-separated)")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum number of items (0 for all)")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "number of items to skip")
	cmd.Flags().BoolVar(&showBuckets, "buckets", false, "show every bucket an item is placed in")
	return cmd
}
