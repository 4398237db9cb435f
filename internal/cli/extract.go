package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"support-copilot/internal/copilot/extractor"
)

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <text...>",
		Short: "Print the order id found in text, if any",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id, ok := extractor.OrderID(strings.Join(args, " ")); ok {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
