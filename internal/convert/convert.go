// Package convert runs the statement-to-records pipeline: extract text,
// recognize rows, categorize merchants and write canonical records.
package convert

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fenykepesz/expense-dashboard/internal/categorize"
	"github.com/fenykepesz/expense-dashboard/internal/model"
	"github.com/fenykepesz/expense-dashboard/internal/pdftext"
	"github.com/fenykepesz/expense-dashboard/internal/records"
	"github.com/fenykepesz/expense-dashboard/internal/rules"
	"github.com/fenykepesz/expense-dashboard/internal/runlog"
	"github.com/fenykepesz/expense-dashboard/internal/statement"
)

// FallbackCard is used when neither the statement nor the options name a card.
const FallbackCard = "0000"

// Options configure one conversion run.
type Options struct {
	Source    string
	Output    string
	RulesFile string
	Format    string

	// Card overrides the card detected on the statement.
	Card string
	// DefaultCard is used when no card is detected.
	DefaultCard string

	IncludeCredits bool
	HistoryFile    string

	// Resolver handles merchants no rule matches. Nil means
	// non-interactive.
	Resolver categorize.Resolver
	Registry *statement.Registry
	Logger   *log.Logger
	Now      func() time.Time
}

// Summary reports the outcome of a run.
type Summary struct {
	Source      string
	Output      string
	Card        string
	Written     int
	Skipped     int
	RulesAdded  int
	NeedsReview []string
	ByCategory  map[model.Category]int
}

// CategoryCount is one line of the per-category breakdown.
type CategoryCount struct {
	Category model.Category
	Count    int
}

// Categories returns the per-category counts, largest first. Ties keep the
// enumeration order with Uncategorized last.
func (s *Summary) Categories() []CategoryCount {
	order := make(map[model.Category]int)
	for i, c := range model.Categories() {
		order[c] = i
	}
	order[model.Uncategorized] = len(order)

	out := make([]CategoryCount, 0, len(s.ByCategory))
	for c, n := range s.ByCategory {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(order[a.Category], order[b.Category])
	})
	return out
}

// Run converts opts.Source into opts.Output. Source and rule table errors
// are returned before anything is written; a failure to persist a new rule
// aborts the run.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("component", "convert")

	registry := opts.Registry
	if registry == nil {
		registry = statement.DefaultRegistry()
	}
	parser := registry.Get(opts.Format)
	if parser == nil {
		return nil, fmt.Errorf("unknown statement format %q (known: %s)", opts.Format, strings.Join(registry.Formats(), ", "))
	}

	if opts.Card != "" && !model.IsCard(opts.Card) {
		return nil, fmt.Errorf("card %q is not 4 digits", opts.Card)
	}

	doc, err := pdftext.Open(opts.Source)
	if err != nil {
		return nil, err
	}

	store, err := rules.Load(opts.RulesFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("rules loaded", "path", store.Path(), "count", store.Len())

	card := resolveCard(opts, parser, doc, logger)
	categorizer := categorize.New(store, opts.Resolver, logger.With("component", "categorize"))

	scan := parser.Parse(doc.Lines(), statement.Options{IncludeCredits: opts.IncludeCredits})
	var txns []model.Transaction
	for row := range scan.Rows() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		category, err := categorizer.Categorize(row.Merchant)
		if err != nil {
			return nil, err
		}

		t := model.NewTransaction(row.Date, row.Merchant, row.Amount, card, category)
		t.Installment = row.Installment
		txns = append(txns, t)
	}

	for _, s := range scan.Skips() {
		logger.Debug("row skipped", "line", s.Line, "reason", s.Reason, "text", s.Text)
	}

	if errs := records.Validate(txns); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid records: %w", errors.Join(joined...))
	}

	slices.SortStableFunc(txns, func(a, b model.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	if err := records.Save(opts.Output, txns); err != nil {
		return nil, err
	}

	summary := &Summary{
		Source:      opts.Source,
		Output:      opts.Output,
		Card:        card,
		Written:     len(txns),
		Skipped:     scan.Skipped(),
		RulesAdded:  categorizer.RulesAdded(),
		NeedsReview: categorizer.NeedsReview(),
		ByCategory:  make(map[model.Category]int),
	}
	for _, t := range txns {
		summary.ByCategory[t.Category]++
	}
	logger.Info("converted", "written", summary.Written, "skipped", summary.Skipped, "rules_added", summary.RulesAdded)

	if opts.HistoryFile != "" {
		if err := appendHistory(opts, summary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func resolveCard(opts Options, parser statement.Parser, doc *pdftext.Document, logger *log.Logger) string {
	if opts.Card != "" {
		return opts.Card
	}
	if card, ok := parser.Card(doc.FirstPage()); ok {
		return card
	}
	logger.Debug("no card on statement, using default", "default", opts.DefaultCard)
	if model.IsCard(opts.DefaultCard) {
		return opts.DefaultCard
	}
	return FallbackCard
}

func appendHistory(opts Options, s *Summary) error {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	entry := runlog.Entry{
		Timestamp:     now().UTC().Truncate(time.Second),
		Source:        s.Source,
		Output:        s.Output,
		Written:       s.Written,
		Skipped:       s.Skipped,
		RulesAdded:    s.RulesAdded,
		Uncategorized: s.ByCategory[model.Uncategorized],
	}
	if err := runlog.Append(opts.HistoryFile, []runlog.Entry{entry}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
