package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mindmapx/application/export"
	"mindmapx/application/session"
	"mindmapx/domain/core/aggregates"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <doc.json>",
		Short: "Check an exported document against the tree invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			sum := session.Summarize(snap)
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, %d connections, %d depth levels\n", sum.Nodes, sum.Edges, sum.Depth)
			return nil
		},
	}
}

func loadDocument(path string) (aggregates.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return aggregates.Snapshot{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := export.ParseDocument(data)
	if err != nil {
		return aggregates.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	snap, err := doc.Snapshot()
	if err != nil {
		return aggregates.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
