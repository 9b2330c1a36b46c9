package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in prompt order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, c := range model.Categories() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, c)
			}
			return nil
		},
	}
}
