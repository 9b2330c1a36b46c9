// Package records reads and writes the canonical transaction records the
// dashboard consumes.
package records

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

type record struct {
	Date        string       `json:"date"`
	Merchant    string       `json:"merchant"`
	Amount      json.Number  `json:"amount"`
	Category    string       `json:"category"`
	Month       string       `json:"month"`
	Year        int          `json:"year"`
	Card        string       `json:"card"`
	Installment *installment `json:"installment,omitempty"`
}

type installment struct {
	Current int         `json:"current"`
	Total   int         `json:"total"`
	Amount  json.Number `json:"amount"`
}

// Write encodes txns as an indented JSON array.
func Write(w io.Writer, txns []model.Transaction) error {
	out := make([]record, 0, len(txns))
	for _, t := range txns {
		out = append(out, toRecord(t))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}

// Read decodes a JSON array of records.
func Read(r io.Reader) ([]model.Transaction, error) {
	var in []record
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	txns := make([]model.Transaction, 0, len(in))
	for i, rec := range in {
		t, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func toRecord(t model.Transaction) record {
	rec := record{
		Date:     t.Date.Format(model.DateFormat),
		Merchant: t.Merchant,
		Amount:   json.Number(t.Amount.StringFixed(2)),
		Category: string(t.Category),
		Month:    t.Month,
		Year:     t.Year,
		Card:     t.Card,
	}
	if t.Installment != nil {
		rec.Installment = &installment{
			Current: t.Installment.Current,
			Total:   t.Installment.Total,
			Amount:  json.Number(t.Installment.Amount.StringFixed(2)),
		}
	}
	return rec
}

func fromRecord(rec record) (model.Transaction, error) {
	date, err := time.Parse(model.DateFormat, rec.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec.Date, err)
	}
	amount, err := decimal.NewFromString(rec.Amount.String())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec.Amount, err)
	}

	t := model.Transaction{
		Date:     date,
		Merchant: rec.Merchant,
		Category: category(rec.Category),
		Card:     rec.Card,
		Amount:   amount,
		Month:    rec.Month,
		Year:     rec.Year,
	}
	if rec.Installment != nil {
		per, err := decimal.NewFromString(rec.Installment.Amount.String())
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing installment amount %q: %w", rec.Installment.Amount, err)
		}
		t.Installment = &model.Installment{
			Current: rec.Installment.Current,
			Total:   rec.Installment.Total,
			Amount:  per,
		}
	}
	return t, nil
}

// category canonicalizes a stored label. Unknown labels are kept verbatim so
// Validate can report them.
func category(label string) model.Category {
	c, err := model.ParseCategory(label)
	if err != nil {
		return model.Category(label)
	}
	return c
}
