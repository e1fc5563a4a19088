package enums

import "fmt"

// SortMode orders catalog listings.
type SortMode string

const (
	SortModeFeatured  SortMode = "featured"
	SortModePriceLow  SortMode = "price-low"
	SortModePriceHigh SortMode = "price-high"
	SortModeNewest    SortMode = "newest"
	SortModeRating    SortMode = "rating"
)

var validSortModes = []SortMode{
	SortModeFeatured,
	SortModePriceLow,
	SortModePriceHigh,
	SortModeNewest,
	SortModeRating,
}

// String implements fmt.Stringer.
func (s SortMode) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortMode.
func (s SortMode) IsValid() bool {
	for _, candidate := range validSortModes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortMode converts raw input into a SortMode.
func ParseSortMode(value string) (SortMode, error) {
	for _, candidate := range validSortModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort mode %q", value)
}
