package statement

import (
	"errors"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// Row is one transaction line recognized on a statement.
type Row struct {
	Line     int // 1-based position in the document
	Date     time.Time
	Merchant string
	// Amount is the value charged for this row. For installment purchases
	// it is the per-payment amount, not the purchase total.
	Amount      decimal.Decimal
	Installment *model.Installment
}

// Month returns the English month name of the row date.
func (r Row) Month() string { return r.Date.Month().String() }

// Year returns the year of the row date.
func (r Row) Year() int { return r.Date.Year() }

// Skip describes a row-shaped line that was dropped.
type Skip struct {
	Line   int
	Text   string
	Reason string
}

// errNotARow marks layout text that carries no transaction data. Such lines
// are dropped without being reported.
var errNotARow = errors.New("not a transaction row")

// lineFunc recognizes one line. It returns errNotARow for layout text and
// any other error for a row-shaped line it cannot use.
type lineFunc func(line string) (Row, error)

// Scan is a single-pass iteration over the rows of one document.
type Scan struct {
	lines iter.Seq[string]
	parse lineFunc
	opts  Options
	used  bool
	skips []Skip
}

func newScan(lines iter.Seq[string], opts Options, parse lineFunc) *Scan {
	return &Scan{lines: lines, parse: parse, opts: opts}
}

// Rows yields recognized rows in document order. Only the first call
// yields anything.
func (s *Scan) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if s.used {
			return
		}
		s.used = true

		n := 0
		for line := range s.lines {
			n++
			row, err := s.parse(line)
			if errors.Is(err, errNotARow) {
				continue
			}
			if err != nil {
				s.skip(n, line, err.Error())
				continue
			}

			switch {
			case row.Amount.IsZero():
				s.skip(n, line, "zero amount")
				continue
			case row.Amount.IsNegative() && !s.opts.IncludeCredits:
				s.skip(n, line, "credit")
				continue
			}

			row.Line = n
			if !yield(row) {
				return
			}
		}
	}
}

// Skipped returns the number of row-shaped lines dropped so far.
func (s *Scan) Skipped() int { return len(s.skips) }

// Skips returns the dropped lines so far.
func (s *Scan) Skips() []Skip {
	out := make([]Skip, len(s.skips))
	copy(out, s.skips)
	return out
}

func (s *Scan) skip(line int, text, reason string) {
	s.skips = append(s.skips, Skip{Line: line, Text: text, Reason: reason})
}
