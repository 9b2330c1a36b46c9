package categorize

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

// ErrInputClosed is returned when the terminal input ends mid-prompt.
var ErrInputClosed = errors.New("input closed")

// SkipToken leaves a merchant uncategorized for the current run.
const SkipToken = "s"

// Resolution is a human decision about one merchant.
type Resolution struct {
	Category model.Category
	Keyword  string
	Skipped  bool
}

// Resolver decides the category of a merchant no rule matched.
type Resolver interface {
	Resolve(merchant string) (Resolution, error)
}

// Prompter asks on a terminal. Categories are offered by their 1-based index
// in model.Categories.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	merchant *color.Color
	index    *color.Color
	ok       *color.Color
	warn     *color.Color
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:       bufio.NewReader(in),
		out:      out,
		merchant: color.New(color.BgYellow, color.FgBlack),
		index:    color.New(color.FgCyan),
		ok:       color.New(color.FgGreen),
		warn:     color.New(color.FgRed),
	}
}

// Resolve runs the prompt for one merchant. Invalid answers re-ask.
func (p *Prompter) Resolve(merchant string) (Resolution, error) {
	categories := model.Categories()

	fmt.Fprint(p.out, "\n>> New merchant: ")
	p.merchant.Fprintf(p.out, " %s ", merchant)
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Available categories:")
	for i, c := range categories {
		p.index.Fprintf(p.out, "  %2d.", i+1)
		fmt.Fprintf(p.out, " %s\n", c)
	}

	for {
		fmt.Fprintf(p.out, "\nSelect category number (or '%s' to skip): ", SkipToken)
		answer, err := p.readLine()
		if err != nil {
			return Resolution{}, err
		}
		answer = strings.ToLower(answer)
		if answer == SkipToken {
			return Resolution{Skipped: true}, nil
		}

		n, err := strconv.Atoi(answer)
		if err != nil {
			p.warn.Fprintf(p.out, "Invalid input. Enter a number or '%s' to skip.\n", SkipToken)
			continue
		}
		if n < 1 || n > len(categories) {
			p.warn.Fprintln(p.out, "Invalid choice. Try again.")
			continue
		}

		category := categories[n-1]
		p.ok.Fprintf(p.out, "[OK] Category: %s\n", category)
		fmt.Fprintf(p.out, "Enter keyword to match (default: '%s'): ", merchant)
		keyword, err := p.readLine()
		if err != nil {
			return Resolution{}, err
		}
		if keyword == "" {
			keyword = merchant
		}
		return Resolution{Category: category, Keyword: keyword}, nil
	}
}

// readLine returns the next trimmed line. A final line without a newline
// is still returned; end of input after that is ErrInputClosed.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
