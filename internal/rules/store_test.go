package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenykepesz/expense-dashboard/internal/model"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func mustAdd(t *testing.T, s *Store, keyword string, category model.Category) {
	t.Helper()
	added, err := s.Add(keyword, category)
	require.NoError(t, err)
	require.True(t, added, "keyword %q already present", keyword)
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "category_rules.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Lookup("anything")
	assert.False(t, ok)
}

func TestLoad_EmptyFile(t *testing.T) {
	s, err := Load(writeFile(t, "category_rules.json", "  \n"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_PreservesOrder(t *testing.T) {
	path := writeFile(t, "category_rules.json", `{
    "wolt": "Food Delivery",
    "שופרסל": "Groceries",
    "amazon": "shopping",
    "פרטנר": "Telecommunications"
}`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []model.Rule{
		{Keyword: "wolt", Category: model.CategoryFoodDelivery},
		{Keyword: "שופרסל", Category: model.CategoryGroceries},
		{Keyword: "amazon", Category: model.CategoryShopping},
		{Keyword: "פרטנר", Category: model.CategoryTelecommunications},
	}, s.Rules())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{"unknown category", "r.json", `{"wolt": "Pets"}`},
		{"sentinel category", "r.json", `{"wolt": "Uncategorized"}`},
		{"empty keyword", "r.json", `{" ": "Other"}`},
		{"not an object", "r.json", `["wolt"]`},
		{"non-string value", "r.json", `{"wolt": 3}`},
		{"trailing data", "r.json", `{"wolt": "Other"} {}`},
		{"yaml sequence", "r.yaml", "- wolt\n"},
		{"yaml unknown category", "r.yaml", "wolt: Pets\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.contents))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidCategoryIsInvalidRule(t *testing.T) {
	_, err := Load(writeFile(t, "r.json", `{"wolt": "Pets"}`))
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.ErrorIs(t, err, model.ErrUnknownCategory)
}

func TestLoad_DuplicateKeywordKeepsFirstPosition(t *testing.T) {
	s, err := Load(writeFile(t, "r.json", `{"Wolt": "Restaurants", "amazon": "Shopping", "wolt": "Food Delivery"}`))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, model.Rule{Keyword: "Wolt", Category: model.CategoryFoodDelivery}, s.Rules()[0])
}

func TestLookup_FirstMatchWins(t *testing.T) {
	s, err := Load(writeFile(t, "r.json", `{"super": "Groceries", "super-pharm": "Healthcare"}`))
	require.NoError(t, err)

	got, ok := s.Lookup("SUPER-PHARM RAMAT AVIV")
	require.True(t, ok)
	assert.Equal(t, model.CategoryGroceries, got, "earlier rule must win")
}

func TestLookup_CaseInsensitive(t *testing.T) {
	s, err := Load(writeFile(t, "r.json", `{"Amazon": "Shopping"}`))
	require.NoError(t, err)

	got, ok := s.Lookup("AMAZON MKTPLACE PMTS")
	require.True(t, ok)
	assert.Equal(t, model.CategoryShopping, got)
}

func TestLookup_ReversedHebrewMerchant(t *testing.T) {
	s, err := Load(writeFile(t, "r.json", `{"טלפון": "Telecommunications"}`))
	require.NoError(t, err)

	got, ok := s.Lookup("ןופלט תרבח")
	require.True(t, ok)
	assert.Equal(t, model.CategoryTelecommunications, got)
}

func TestLookup_Deterministic(t *testing.T) {
	s, err := Load(writeFile(t, "r.json", `{"a": "Other", "ab": "Shopping", "b": "Groceries"}`))
	require.NoError(t, err)

	first, ok := s.Lookup("xaby")
	require.True(t, ok)
	for range 20 {
		got, ok := s.Lookup("xaby")
		require.True(t, ok)
		assert.Equal(t, first, got)
	}

	_, ok = s.Lookup("zzz")
	assert.False(t, ok)
	_, ok = s.Lookup("")
	assert.False(t, ok)
}

func TestAdd_PersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "category_rules.json")
	s, err := Load(path)
	require.NoError(t, err)

	mustAdd(t, s, "הקיוסק", model.CategoryGroceries)
	mustAdd(t, s, "wolt", model.CategoryFoodDelivery)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Rules(), reloaded.Rules())
}

func TestAdd_UpdatesExistingKeywordInPlace(t *testing.T) {
	path := writeFile(t, "r.json", `{"wolt": "Restaurants", "amazon": "Shopping"}`)
	s, err := Load(path)
	require.NoError(t, err)

	added, err := s.Add("WOLT", model.CategoryFoodDelivery)
	require.NoError(t, err)
	assert.False(t, added)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, model.Rule{Keyword: "wolt", Category: model.CategoryFoodDelivery}, s.Rules()[0])
}

func TestAdd_RejectsInvalidRule(t *testing.T) {
	path := writeFile(t, "r.json", `{"wolt": "Food Delivery"}`)
	s, err := Load(path)
	require.NoError(t, err)

	for _, r := range []model.Rule{
		{Keyword: "", Category: model.CategoryOther},
		{Keyword: "kiosk", Category: model.Uncategorized},
		{Keyword: "kiosk", Category: "Pets"},
	} {
		_, err := s.Add(r.Keyword, r.Category)
		assert.ErrorIs(t, err, ErrInvalidRule)
	}
	assert.Equal(t, 1, s.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wolt": "Food Delivery"}`, string(data))
}

func TestAdd_WriteFailureRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rules")
	s, err := Load(filepath.Join(dir, "category_rules.json"))
	require.NoError(t, err)

	// Make the rules directory impossible to create.
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))

	_, err = s.Add("wolt", model.CategoryFoodDelivery)
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
	_, ok := s.Lookup("wolt")
	assert.False(t, ok)
}

func TestRoundTrip_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "category_rules.json")
	s, err := Load(path)
	require.NoError(t, err)
	for _, r := range []model.Rule{
		{Keyword: "zara", Category: model.CategoryShopping},
		{Keyword: "H&M", Category: model.CategoryShopping},
		{Keyword: "חברת חשמל", Category: model.CategoryUtilities},
		{Keyword: "apple", Category: model.CategoryTechnology},
	} {
		mustAdd(t, s, r.Keyword, r.Category)
	}

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Rules(), reloaded.Rules())
}

func TestRoundTrip_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	s, err := Load(path)
	require.NoError(t, err)
	mustAdd(t, s, "zara", model.CategoryShopping)
	mustAdd(t, s, "123", model.CategoryOther)
	mustAdd(t, s, "yes", model.CategoryOther)
	mustAdd(t, s, "חברת חשמל", model.CategoryUtilities)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Rules(), reloaded.Rules())
}

func TestJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "category_rules.json")
	s, err := Load(path)
	require.NoError(t, err)
	mustAdd(t, s, "שופרסל", model.CategoryGroceries)
	mustAdd(t, s, "H&M", model.CategoryShopping)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"שופרסל\": \"Groceries\",\n    \"H&M\": \"Shopping\"\n}\n", string(data))
}

func TestSave_EmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "category_rules.json")
	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
