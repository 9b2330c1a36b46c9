package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fenykepesz/expense-dashboard/internal/model"
	"github.com/fenykepesz/expense-dashboard/internal/rules"
	"github.com/fenykepesz/expense-dashboard/internal/textnorm"
)

func newRulesCommand(a *app) *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit the category rule table",
	}
	cmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", "", "category rules file (default from config)")

	load := func(cmd *cobra.Command) (*rules.Store, error) {
		if err := a.setup(cmd); err != nil {
			return nil, err
		}
		path := a.cfg.RulesFile
		if rulesFile != "" {
			path = rulesFile
		}
		return rules.Load(path)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rules in precedence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := load(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, r := range store.Rules() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Keyword, r.Category)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rules in %s\n", store.Len(), store.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <keyword> <category>",
		Short: "Add a rule, or change the category of an existing keyword",
		Long:  "Add a rule. The category is a name or its number from `expenses categories`.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryArg(args[1])
			if err != nil {
				return err
			}
			store, err := load(cmd)
			if err != nil {
				return err
			}
			added, err := store.Add(args[0], category)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated rule %q -> %s\n", args[0], category)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved rule %q -> %s\n", args[0], category)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "match <merchant>",
		Short: "Show which category a merchant would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := load(cmd)
			if err != nil {
				return err
			}
			merchant := textnorm.Normalize(args[0])
			if category, ok := store.Lookup(merchant); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", merchant, category)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (no rule matches)\n", merchant, model.Uncategorized)
			return nil
		},
	})

	return cmd
}

// parseCategoryArg accepts a category name or its 1-based index.
func parseCategoryArg(s string) (model.Category, error) {
	if n, err := strconv.Atoi(s); err == nil {
		all := model.Categories()
		if n < 1 || n > len(all) {
			return "", fmt.Errorf("category number %d out of range 1-%d", n, len(all))
		}
		return all[n-1], nil
	}
	return model.ParseCategory(s)
}
