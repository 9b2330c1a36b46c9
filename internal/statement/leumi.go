package statement

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fenykepesz/expense-dashboard/internal/model"
	"github.com/fenykepesz/expense-dashboard/internal/textnorm"
)

// Leumi parses Bank Leumi Mastercard/Visa statements. The extracted text is
// in visual order, so Hebrew words appear reversed and each row reads
//
//	charge type original merchant DD/MM/YY
//
// Installment rows carry two type phrases. Their charge column is the
// payment billed this period; the original purchase amount is only divided
// by the installment count when that column is empty.
type Leumi struct{}

const leumiDateLayout = "02/01/06"

var (
	leumiRegular = regexp.MustCompile(
		`(-?[\d,]+\.?\d*)\s+` +
			`(?:הליגר הקסע|ל"וח לקייס|הקסע רגילה|ל"חו לקייס)\s+` +
			`([\d,]+\.?\d*)\s+(.+?)\s+(\d{2}/\d{2}/\d{2})`)

	leumiInstallment = regexp.MustCompile(
		`(-?[\d,]+\.?\d*)\s+` +
			`(?:םימולשתב הקסע|הליגר םימולשת תקסע)\s+` +
			`(?:םימולשתב הקסע|הליגר םימולשת תקסע)\s+` +
			`([\d,]+\.?\d*)\s+(.+?)\s+(\d{2}/\d{2}/\d{2})`)

	leumiSummary = []string{"בויח םוכס", `כ"הס`}

	leumiCard = regexp.MustCompile(`(\d{4})\s+דראקרטסמ|(\d{4})\s+הזיו`)

	amountToken = regexp.MustCompile(`\d[\d,]*\.\d{2}`)

	markerLeading  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\s+(.+)$`)
	markerTrailing = regexp.MustCompile(`^(.+?)\s+(\d{1,2})/(\d{1,2})$`)
)

// Format returns the parser name.
func (p *Leumi) Format() string { return "leumi" }

// Parse returns a scan over the statement lines.
func (p *Leumi) Parse(lines iter.Seq[string], opts Options) *Scan {
	return newScan(lines, opts, parseLeumiLine)
}

// Card finds the card digits in the statement title, e.g. "9334 דראקרטסמ".
func (p *Leumi) Card(page []string) (string, bool) {
	for _, line := range page {
		m := leumiCard.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[1] != "" {
			return m[1], true
		}
		return m[2], true
	}
	return "", false
}

func parseLeumiLine(line string) (Row, error) {
	for _, s := range leumiSummary {
		if strings.Contains(line, s) {
			return Row{}, errors.New("summary line")
		}
	}

	installment := false
	m := leumiRegular.FindStringSubmatch(line)
	if m == nil {
		m = leumiInstallment.FindStringSubmatch(line)
		installment = m != nil
	}
	if m == nil {
		if !amountToken.MatchString(line) {
			return Row{}, errNotARow
		}
		return Row{}, errors.New("unrecognized row layout")
	}

	charge, err := parseAmount(m[1])
	if err != nil {
		return Row{}, err
	}
	original, err := parseAmount(m[2])
	if err != nil {
		return Row{}, err
	}
	date, err := time.Parse(leumiDateLayout, m[4])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", m[4], err)
	}

	merchant := strings.TrimSpace(m[3])
	row := Row{Date: date, Amount: charge}

	if installment {
		name, current, total, ok, err := splitMarker(merchant)
		if err != nil {
			return Row{}, err
		}
		if ok {
			merchant = name
			if charge.IsZero() {
				row.Amount = original.Div(decimal.NewFromInt(int64(total))).Round(2)
			}
			row.Installment = &model.Installment{Current: current, Total: total, Amount: row.Amount}
		}
	}

	row.Merchant = textnorm.Visual(merchant)
	if row.Merchant == "" {
		return Row{}, errors.New("empty merchant")
	}
	return row, nil
}

// splitMarker separates a "current/total" installment marker from either
// end of a merchant name.
func splitMarker(s string) (name string, current, total int, ok bool, err error) {
	var cur, tot string
	if m := markerLeading.FindStringSubmatch(s); m != nil {
		cur, tot, name = m[1], m[2], m[3]
	} else if m := markerTrailing.FindStringSubmatch(s); m != nil {
		name, cur, tot = m[1], m[2], m[3]
	} else {
		return s, 0, 0, false, nil
	}

	current, _ = strconv.Atoi(cur)
	total, _ = strconv.Atoi(tot)
	if total == 0 || current == 0 || current > total {
		return "", 0, 0, false, fmt.Errorf("bad installment marker %s/%s", cur, tot)
	}
	return name, current, total, true, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
