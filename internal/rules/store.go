// Package rules is the persisted keyword→category table used for automatic
// merchant classification.
package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/fenykepesz/expense-dashboard/internal/fsutil"
	"github.com/fenykepesz/expense-dashboard/internal/model"
	"github.com/fenykepesz/expense-dashboard/internal/textnorm"
)

// ErrInvalidRule is returned for empty keywords and unassignable categories.
var ErrInvalidRule = errors.New("invalid rule")

// Store holds the ordered rule table. Earlier rules take precedence.
type Store struct {
	path   string
	codec  codec
	rules  []model.Rule
	folded []string // match form of rules[i].Keyword
}

// Load reads the rule table at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, codec: codecFor(path)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	entries, err := s.codec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}

	for i, e := range entries {
		r, err := newRule(e.Keyword, e.Label)
		if err != nil {
			return nil, fmt.Errorf("rules %s: entry %d: %w", path, i+1, err)
		}
		s.put(r)
	}
	return s, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Len returns the number of rules.
func (s *Store) Len() int { return len(s.rules) }

// Rules returns a copy of the rules in precedence order.
func (s *Store) Rules() []model.Rule {
	out := make([]model.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Lookup returns the category of the first rule whose keyword is contained
// in merchant, ignoring case and text direction.
func (s *Store) Lookup(merchant string) (model.Category, bool) {
	m := matchForm(merchant)
	if m == "" {
		return "", false
	}
	for i, k := range s.folded {
		if strings.Contains(m, k) {
			return s.rules[i].Category, true
		}
	}
	return "", false
}

// Add appends a rule, or updates the category of an existing keyword in
// place, and rewrites the whole file. It reports whether the table grew;
// false means an existing keyword was reassigned. If the write fails the
// store is left unchanged and the error is returned.
func (s *Store) Add(keyword string, category model.Category) (bool, error) {
	r := model.Rule{Keyword: strings.TrimSpace(keyword), Category: category}
	if err := validate(r); err != nil {
		return false, err
	}

	prevRules := s.Rules()
	prevFolded := append([]string(nil), s.folded...)

	added := s.put(r)
	if err := s.Save(); err != nil {
		s.rules, s.folded = prevRules, prevFolded
		return false, err
	}
	return added, nil
}

// Save writes the full table to disk atomically.
func (s *Store) Save() error {
	data, err := s.codec.encode(s.rules)
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("saving rules: %w", err)
	}
	return nil
}

func (s *Store) put(r model.Rule) bool {
	k := matchForm(r.Keyword)
	for i, existing := range s.folded {
		if existing == k {
			s.rules[i].Category = r.Category
			return false
		}
	}
	s.rules = append(s.rules, r)
	s.folded = append(s.folded, k)
	return true
}

func newRule(keyword, label string) (model.Rule, error) {
	category, err := model.ParseCategory(label)
	if err != nil {
		return model.Rule{}, fmt.Errorf("%w: keyword %q: %w", ErrInvalidRule, keyword, err)
	}
	r := model.Rule{Keyword: strings.TrimSpace(keyword), Category: category}
	if err := validate(r); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

func validate(r model.Rule) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if matchForm(r.Keyword) == "" {
		return fmt.Errorf("%w: keyword %q has no matchable text", ErrInvalidRule, r.Keyword)
	}
	return nil
}

// matchForm is the representation both keywords and merchants are compared in.
func matchForm(s string) string {
	return cases.Fold().String(textnorm.Normalize(s))
}
