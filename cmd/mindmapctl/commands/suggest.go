package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mindmapx/domain/suggestions"
)

func newSuggestCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <label>",
		Short: "Print suggested child ideas for a label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := suggestions.NewEngine().Generate(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(labels)
			}
			for _, l := range labels {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON array")
	return cmd
}
