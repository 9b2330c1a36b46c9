package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fenykepesz/expense-dashboard/internal/categorize"
	"github.com/fenykepesz/expense-dashboard/internal/convert"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		output         string
		rulesFile      string
		format         string
		card           string
		history        string
		interactive    bool
		includeCredits bool
	)

	cmd := &cobra.Command{
		Use:   "convert <statement>",
		Short: "Convert a statement PDF into dashboard records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			cfg := a.cfg

			opts := convert.Options{
				Source:         args[0],
				Output:         cfg.OutputFile,
				RulesFile:      cfg.RulesFile,
				Format:         cfg.StatementFormat,
				DefaultCard:    cfg.DefaultCard,
				IncludeCredits: cfg.IncludeCredits,
				HistoryFile:    cfg.HistoryFile,
				Logger:         a.logger,
			}

			flags := cmd.Flags()
			if flags.Changed("output") {
				opts.Output = output
			}
			if flags.Changed("rules") {
				opts.RulesFile = rulesFile
			}
			if flags.Changed("format") {
				opts.Format = format
			}
			if flags.Changed("include-credits") {
				opts.IncludeCredits = includeCredits
			}
			if flags.Changed("history") {
				opts.HistoryFile = history
			}
			opts.Card = card

			if !flags.Changed("interactive") {
				interactive = cfg.Interactive
			}
			if interactive {
				opts.Resolver = categorize.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			summary, err := convert.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file, .json or .csv (default from config)")
	f.StringVarP(&rulesFile, "rules", "r", "", "category rules file (default from config)")
	f.BoolVarP(&interactive, "interactive", "i", false, "prompt for merchants no rule matches")
	f.StringVar(&format, "format", "", "statement format (default from config)")
	f.BoolVar(&includeCredits, "include-credits", false, "keep refunds and other credits")
	f.StringVar(&card, "card", "", "card digits to record instead of the detected ones")
	f.StringVar(&history, "history", "", "append a line to this run history CSV")

	return cmd
}

func printSummary(w io.Writer, s *convert.Summary) {
	fmt.Fprintf(w, "\nWrote %d transactions to %s\n", s.Written, s.Output)
	fmt.Fprintf(w, "Card: %s\n", s.Card)
	fmt.Fprintf(w, "Skipped %d rows\n", s.Skipped)
	fmt.Fprintf(w, "Added %d rules\n", s.RulesAdded)

	if counts := s.Categories(); len(counts) > 0 {
		fmt.Fprintln(w, "Categories found:")
		for _, c := range counts {
			fmt.Fprintf(w, "  %s: %d\n", c.Category, c.Count)
		}
	}

	if len(s.NeedsReview) > 0 {
		fmt.Fprintf(w, "Needs review (%d):\n", len(s.NeedsReview))
		for _, m := range s.NeedsReview {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
}
