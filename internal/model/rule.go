package model

import (
	"fmt"
	"strings"
)

// Rule maps a merchant keyword to a category.
type Rule struct {
	Keyword  string
	Category Category
}

// Validate checks that the keyword is non-empty and the category assignable.
// Rules never assign Uncategorized.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return fmt.Errorf("empty keyword for category %q", r.Category)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("keyword %q: %w: %q", r.Keyword, ErrUnknownCategory, r.Category)
	}
	return nil
}
