// Package pdftext turns a statement document into pages of text lines.
package pdftext

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
)

var (
	// ErrCorrupt is returned when a document cannot be decoded.
	ErrCorrupt = errors.New("corrupt document")
	// ErrNoText is returned when a document decodes but holds no text.
	ErrNoText = errors.New("no extractable text")
)

// Document is the extracted text of one statement.
type Document struct {
	Path  string
	Pages [][]string
}

// Lines yields every line of every page in order.
func (d *Document) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, page := range d.Pages {
			for _, line := range page {
				if !yield(line) {
					return
				}
			}
		}
	}
}

// FirstPage returns the lines of the first page, or nil.
func (d *Document) FirstPage() []string {
	if len(d.Pages) == 0 {
		return nil
	}
	return d.Pages[0]
}

// Open extracts text from path. PDFs are decoded glyph by glyph; any other
// file is read as UTF-8 text with pages separated by form feeds.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	var (
		pages [][]string
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, err = readPDF(path)
	} else {
		pages, err = readText(path)
	}
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}

	doc := &Document{Path: path, Pages: pages}
	for range doc.Lines() {
		return doc, nil
	}
	return nil, fmt.Errorf("extracting %s: %w", path, ErrNoText)
}

func readText(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not UTF-8 text", ErrCorrupt)
	}

	var pages [][]string
	for _, page := range strings.Split(string(data), "\f") {
		var lines []string
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, lines)
	}
	return pages, nil
}

func readPDF(path string) (pages [][]string, err error) {
	// The decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		var glyphs []glyph
		for _, t := range p.Content().Text {
			glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
		}
		pages = append(pages, groupLines(glyphs))
	}
	return pages, nil
}

// glyph is one positioned text fragment on a page.
type glyph struct {
	X, Y, W, Size float64
	S             string
}

// groupLines assembles glyphs into lines, top of page first, each line in
// increasing X. Glyphs whose baselines differ by less than half a font size
// share a line. This reproduces the visual order the statement is printed
// in, so right-to-left text comes out reversed.
func groupLines(glyphs []glyph) []string {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]glyph
	var baseY float64
	for _, g := range sorted {
		if len(rows) == 0 || math.Abs(baseY-g.Y) > lineTolerance(g) {
			rows = append(rows, nil)
			baseY = g.Y
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}

	var lines []string
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var b strings.Builder
		for i, g := range row {
			if i > 0 {
				prev := row[i-1]
				if g.X-(prev.X+prev.W) > spaceGap(g) {
					b.WriteByte(' ')
				}
			}
			b.WriteString(g.S)
		}
		if line := strings.Join(strings.Fields(b.String()), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func lineTolerance(g glyph) float64 {
	return math.Max(g.Size*0.5, 1)
}

func spaceGap(g glyph) float64 {
	return math.Max(g.Size*0.15, 0.5)
}
