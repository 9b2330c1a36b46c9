package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenykepesz/expense-dashboard/internal/legacy"
)

func newMigrateCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "migrate <legacy.json>",
		Short: "Upgrade a legacy expense file to the current record format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}

			res, err := legacy.MigrateFile(args[0], output)
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				a.logger.Warn("entry skipped", "entry", s.Index, "merchant", s.Merchant, "reason", s.Reason)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %d transactions to %s\n", res.Converted, output)
			if len(res.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped %d invalid entries\n", len(res.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "expenses_v2.json", "output file")
	return cmd
}
