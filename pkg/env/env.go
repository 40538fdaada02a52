package env

import (
	"os"
	"strings"
)

// First returns the first non-blank value among keys, trimmed.
func First(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

// Get is First for a single key with a fallback.
func Get(key, fallback string) string {
	if val := First(key); val != "" {
		return val
	}
	return fallback
}
