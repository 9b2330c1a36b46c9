// Package statement recognizes transaction rows in the text of a card
// statement.
package statement

import (
	"iter"
	"slices"
	"strings"
)

// Parser turns the lines of one statement into transaction rows.
type Parser interface {
	// Parse returns a single-pass scan over lines.
	Parse(lines iter.Seq[string], opts Options) *Scan
	// Card returns the last four card digits printed on page, if any.
	Card(page []string) (string, bool)
	Format() string
}

// Options adjust which recognized rows are emitted.
type Options struct {
	// IncludeCredits keeps refunds and other negative charges.
	IncludeCredits bool
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate statement format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(strings.TrimSpace(format))]
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Leumi{})
	return r
}
