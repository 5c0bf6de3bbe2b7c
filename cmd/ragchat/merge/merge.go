package mergecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/transcript"
)

const mergeLongDesc string = `Merge transcript databases written by separate servers.

Transcript nodes are content addressed, so a merge is a union: a turn that
already exists in the target is skipped and shared conversation prefixes stay
shared.

Examples:
  ragchat merge --target merged.db node-a.db node-b.db`

const mergeShortDesc string = "Merge transcript databases"

type mergeCommander struct {
	target string
}

type mergeCounts struct {
	added   int
	skipped int
}

func NewMergeCmd() *cobra.Command {
	cmder := &mergeCommander{}

	cmd := &cobra.Command{
		Use:   "merge [sources...]",
		Short: mergeShortDesc,
		Long:  mergeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&cmder.target, "target", "t", "ragchat.db", "Transcript database to merge into")

	return cmd
}

func (c *mergeCommander) run(ctx context.Context, cmd *cobra.Command, sources []string) error {
	target, err := transcript.NewSQLiteStore(c.target)
	if err != nil {
		return err
	}
	defer target.Close()

	var total mergeCounts
	for _, path := range sources {
		counts, err := mergeFrom(ctx, target, path)
		if err != nil {
			return err
		}
		total.added += counts.added
		total.skipped += counts.skipped

		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d added, %d skipped\n", path, counts.added, counts.skipped)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d sources into %s: %d nodes added, %d skipped\n",
		len(sources), c.target, total.added, total.skipped)
	return nil
}

func mergeFrom(ctx context.Context, target transcript.Store, path string) (mergeCounts, error) {
	var counts mergeCounts

	source, err := transcript.NewSQLiteStore(path)
	if err != nil {
		return counts, err
	}
	defer source.Close()

	nodes, err := source.List(ctx)
	if err != nil {
		return counts, fmt.Errorf("could not list nodes from %s: %w", path, err)
	}

	for _, n := range nodes {
		isNew, err := target.Put(ctx, n)
		if err != nil {
			return counts, fmt.Errorf("could not copy node %s: %w", n.Hash, err)
		}
		if isNew {
			counts.added++
		} else {
			counts.skipped++
		}
	}
	return counts, nil
}
