package enums

import "fmt"

// CartMode reports which repository currently backs the cart.
type CartMode string

const (
	CartModeGuest         CartMode = "guest"
	CartModeAuthenticated CartMode = "authenticated"
)

var validCartModes = []CartMode{
	CartModeGuest,
	CartModeAuthenticated,
}

// String implements fmt.Stringer.
func (c CartMode) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartMode.
func (c CartMode) IsValid() bool {
	for _, candidate := range validCartModes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartMode converts raw input into a CartMode.
func ParseCartMode(value string) (CartMode, error) {
	for _, candidate := range validCartModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart mode %q", value)
}
