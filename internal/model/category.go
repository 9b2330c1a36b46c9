package model

import (
	"errors"
	"fmt"
	"strings"
)

// Category is an expense category label.
type Category string

const (
	CategoryGroceries          Category = "Groceries"
	CategoryRestaurants        Category = "Restaurants"
	CategoryFoodDelivery       Category = "Food Delivery"
	CategoryTransportation     Category = "Transportation"
	CategoryShopping           Category = "Shopping"
	CategoryTechnology         Category = "Technology"
	CategoryEntertainment      Category = "Entertainment"
	CategoryTelecommunications Category = "Telecommunications"
	CategoryInsurance          Category = "Insurance"
	CategoryBankingFees        Category = "Banking Fees"
	CategoryHealthcare         Category = "Healthcare"
	CategoryUtilities          Category = "Utilities"
	CategoryGeneralServices    Category = "General Services"
	CategoryOther              Category = "Other"

	// Uncategorized is assigned when no rule matches and nobody resolved the merchant.
	Uncategorized Category = "Uncategorized"
)

// ErrUnknownCategory is returned when a label is not part of the enumeration.
var ErrUnknownCategory = errors.New("unknown category")

var categories = []Category{
	CategoryGroceries,
	CategoryRestaurants,
	CategoryFoodDelivery,
	CategoryTransportation,
	CategoryShopping,
	CategoryTechnology,
	CategoryEntertainment,
	CategoryTelecommunications,
	CategoryInsurance,
	CategoryBankingFees,
	CategoryHealthcare,
	CategoryUtilities,
	CategoryGeneralServices,
	CategoryOther,
}

// Categories returns the assignable categories in their stable display order.
// The sentinel Uncategorized is not included.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is an assignable category.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidOrSentinel reports whether c may appear on a transaction.
func (c Category) ValidOrSentinel() bool {
	return c == Uncategorized || c.Valid()
}

// ParseCategory resolves a label case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	if strings.EqualFold(s, string(Uncategorized)) {
		return Uncategorized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
