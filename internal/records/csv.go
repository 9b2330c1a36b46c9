package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// Header is the CSV header for exported records.
const Header = "date,merchant,amount,category,month,year,card,installment_current,installment_total"

const (
	numFields    = 9
	colDate      = 0
	colMerchant  = 1
	colAmount    = 2
	colCategory  = 3
	colMonth     = 4
	colYear      = 5
	colCard      = 6
	colInstCur   = 7
	colInstTotal = 8
)

// ReadCSV reads all records from a CSV reader with a header row.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading records CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, row := range rows[1:] {
		t, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteCSV writes txns with a header row.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalRecord(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a Transaction to a CSV row. The per-installment
// amount is the row amount and is not repeated.
func MarshalRecord(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = t.Date.Format(model.DateFormat)
	row[colMerchant] = t.Merchant
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCategory] = string(t.Category)
	row[colMonth] = t.Month
	row[colYear] = strconv.Itoa(t.Year)
	row[colCard] = t.Card

	if t.Installment != nil {
		row[colInstCur] = strconv.Itoa(t.Installment.Current)
		row[colInstTotal] = strconv.Itoa(t.Installment.Total)
	}
	return row
}

// UnmarshalRecord converts a CSV row to a Transaction.
func UnmarshalRecord(row []string) (model.Transaction, error) {
	if len(row) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(model.DateFormat, row[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	year, err := strconv.Atoi(row[colYear])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing year %q: %w", row[colYear], err)
	}

	t := model.Transaction{
		Date:     date,
		Merchant: row[colMerchant],
		Category: category(row[colCategory]),
		Card:     row[colCard],
		Amount:   amount,
		Month:    row[colMonth],
		Year:     year,
	}

	if row[colInstCur] != "" || row[colInstTotal] != "" {
		cur, err := strconv.Atoi(row[colInstCur])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing installment_current %q: %w", row[colInstCur], err)
		}
		total, err := strconv.Atoi(row[colInstTotal])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing installment_total %q: %w", row[colInstTotal], err)
		}
		t.Installment = &model.Installment{Current: cur, Total: total, Amount: amount}
	}
	return t, nil
}
