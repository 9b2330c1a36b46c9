// Package categorize assigns categories to merchants from the rule table,
// falling back to a human when no rule matches.
package categorize

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/fenykepesz/expense-dashboard/internal/model"
	"github.com/fenykepesz/expense-dashboard/internal/textnorm"
)

// RuleStore is the persisted keyword table.
type RuleStore interface {
	Lookup(merchant string) (model.Category, bool)
	Add(keyword string, category model.Category) (bool, error)
}

// Categorizer classifies the merchants of one run. Each distinct merchant
// reaches the resolver at most once.
type Categorizer struct {
	store    RuleStore
	resolver Resolver
	logger   *log.Logger

	decided    map[string]model.Category
	review     []string
	inReview   map[string]bool
	rulesAdded int
}

// New creates a Categorizer. A nil resolver means non-interactive: unmatched
// merchants become Uncategorized and are queued for review.
func New(store RuleStore, resolver Resolver, logger *log.Logger) *Categorizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Categorizer{
		store:    store,
		resolver: resolver,
		logger:   logger,
		decided:  make(map[string]model.Category),
		inReview: make(map[string]bool),
	}
}

// Interactive reports whether unmatched merchants are still sent to the
// resolver.
func (c *Categorizer) Interactive() bool { return c.resolver != nil }

// Categorize returns the category for merchant. Errors are fatal for the run:
// they come from the resolver or from persisting a new rule.
func (c *Categorizer) Categorize(merchant string) (model.Category, error) {
	key := textnorm.Normalize(merchant)

	if cat, ok := c.decided[key]; ok {
		return cat, nil
	}
	if cat, ok := c.store.Lookup(key); ok {
		return cat, nil
	}
	if c.resolver == nil {
		c.markReview(key)
		return model.Uncategorized, nil
	}

	res, err := c.resolver.Resolve(key)
	if errors.Is(err, ErrInputClosed) {
		c.logger.Warn("input closed, continuing without prompts")
		c.resolver = nil
		c.markReview(key)
		return model.Uncategorized, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", key, err)
	}

	if res.Skipped {
		c.logger.Debug("merchant skipped", "merchant", key)
		c.decided[key] = model.Uncategorized
		c.markReview(key)
		return model.Uncategorized, nil
	}

	added, err := c.store.Add(res.Keyword, res.Category)
	if err != nil {
		return "", fmt.Errorf("saving rule %q: %w", res.Keyword, err)
	}
	c.decided[key] = res.Category
	if !added {
		c.logger.Warn("existing rule reassigned", "keyword", res.Keyword, "category", res.Category)
		return res.Category, nil
	}
	c.rulesAdded++
	c.logger.Info("rule added", "keyword", res.Keyword, "category", res.Category)
	return res.Category, nil
}

// NeedsReview returns merchants left Uncategorized, in first-seen order.
func (c *Categorizer) NeedsReview() []string {
	out := make([]string, len(c.review))
	copy(out, c.review)
	return out
}

// RulesAdded returns how many new rules were appended during the run.
// Reassigning an existing keyword does not count.
func (c *Categorizer) RulesAdded() int { return c.rulesAdded }

func (c *Categorizer) markReview(merchant string) {
	if c.inReview[merchant] {
		return
	}
	c.inReview[merchant] = true
	c.review = append(c.review, merchant)
}
