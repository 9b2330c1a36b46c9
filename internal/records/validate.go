package records

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Record      int // 1-based
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [record %d]: %s", e.Invariant, e.Record, e.Description)
}

// Validate enforces the record invariants on txns.
func Validate(txns []model.Transaction) []ValidationError {
	var errs []ValidationError
	add := func(inv, rec int, format string, args ...any) {
		errs = append(errs, ValidationError{
			Invariant:   inv,
			Record:      rec,
			Description: fmt.Sprintf(format, args...),
		})
	}

	hundred := decimal.NewFromInt(100)
	for i, t := range txns {
		n := i + 1

		// Invariant 1: Category is in the enumeration or the sentinel.
		if !t.Category.ValidOrSentinel() {
			add(1, n, "unknown category %q", t.Category)
		}

		// Invariant 2: Card is the last four digits.
		if !model.IsCard(t.Card) {
			add(2, n, "card %q is not 4 digits", t.Card)
		}

		// Invariant 3: Month and year agree with the date.
		if t.Month != t.Date.Month().String() || t.Year != t.Date.Year() {
			add(3, n, "month/year %s %d do not match date %s", t.Month, t.Year, t.Date.Format(model.DateFormat))
		}

		// Invariant 4: Merchant is present.
		if strings.TrimSpace(t.Merchant) == "" {
			add(4, n, "empty merchant")
		}

		// Invariant 5: Installment position is within the plan.
		if inst := t.Installment; inst != nil && (inst.Total < 1 || inst.Current < 1 || inst.Current > inst.Total) {
			add(5, n, "installment %d/%d out of range", inst.Current, inst.Total)
		}

		// Invariant 6: Exact decimals, no more than 2 decimal places.
		if !t.Amount.Mul(hundred).Equal(t.Amount.Mul(hundred).Floor()) {
			add(6, n, "amount %s has more than 2 decimal places", t.Amount)
		}
	}
	return errs
}
