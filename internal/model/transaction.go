package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical record date layout.
const DateFormat = "2006-01-02"

// Installment describes one payment of a multi-payment purchase.
type Installment struct {
	Current int
	Total   int
	Amount  decimal.Decimal // per-installment amount
}

// Transaction is one canonical record consumed by the dashboard.
type Transaction struct {
	Date        time.Time
	Merchant    string
	Category    Category
	Card        string          // last four digits
	Amount      decimal.Decimal // negative = credit
	Month       string          // English month name, e.g. "November"
	Year        int
	Installment *Installment
}

// NewTransaction builds a Transaction with month and year derived from date.
func NewTransaction(date time.Time, merchant string, amount decimal.Decimal, card string, category Category) Transaction {
	return Transaction{
		Date:     date,
		Merchant: merchant,
		Category: category,
		Card:     card,
		Amount:   amount,
		Month:    date.Month().String(),
		Year:     date.Year(),
	}
}

// IsCredit reports whether the transaction is a refund or credit.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsNegative()
}

// IsCard reports whether s is a four-digit card suffix.
func IsCard(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
