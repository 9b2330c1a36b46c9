package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"reversed company name", "ןופלט תרבח", "חברת טלפון"},
		{"already logical", "חברת טלפון", "חברת טלפון"},
		{"latin untouched", "  ZARA   Online ", "ZARA Online"},
		{"mixed latin and hebrew", "ZARA ןושאר", "ZARA ראשון"},
		{"digits stay in place", "ןופלט 123", "טלפון 123"},
		{"bidi controls dropped", "\u200fשלום\u200e", "שלום"},
		{"no evidence passes through", "קסויקה", "קסויקה"},
		{"loanword ending in pe stays logical", "סקייפ", "סקייפ"},
		{"reversed loanword has no evidence", "פייקס", "פייקס"},
		{"empty", "", ""},
		{"only whitespace", " \t\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeMatchesKeyword(t *testing.T) {
	got := Normalize("ןופלט תרבח")
	assert.True(t, strings.Contains(got, "טלפון"), "got %q", got)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"רטנרפ תרבח",
		"ZARA ןושאר",
		"ספוש!הלאוו",
		`ל"וח לקייס`,
		"WOLT ןולי  תיב",
		"קסויקה",
		"פייקס",
		"סקייפ",
		"AMAZON MKTPLACE",
		"ילאמיסקמ 12 ףוס-רפוס",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", in)
		visual := Visual(in)
		assert.Equal(t, visual, Normalize(visual), "Normalize(Visual(%q)) changed the text", in)
	}
}

func TestVisual(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"קסויקה", "הקיוסק"},
		{`ל"וח לקייס`, `סייקל חו"ל`},
		{"רטנרפ תרבח", "חברת פרטנר"},
		{"פייקס", "סקייפ"},
		{"פוש!הלאוו", "וואלה!שופ"},
		// Logical evidence wins over the visual assumption.
		{"חברת טלפון", "חברת טלפון"},
		{"PAYPAL *STEAM", "PAYPAL *STEAM"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Visual(tt.in), "Visual(%q)", tt.in)
	}
}

func TestHasHebrew(t *testing.T) {
	assert.True(t, HasHebrew("ZARA ראשון"))
	assert.False(t, HasHebrew("ZARA 123"))
	assert.False(t, HasHebrew(""))
}
