package env

import (
	"os"
	"strings"
)

// Prefix namespaces storefront variables.
const Prefix = "STOREFRONT_"

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Scoped prefers STOREFRONT_<key> over the bare key, so shared process settings such as
// LOG_FORMAT can be overridden per service.
func Scoped(key, fallback string) string {
	return Get(Prefix+key, Get(key, fallback))
}
