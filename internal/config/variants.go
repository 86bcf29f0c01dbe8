package config

import (
	"strings"
	"unicode"
)

// KeyVariants returns the spellings of a canonical dotted key in lookup order:
// the key itself, UPPER_SNAKE, lower_snake and camelCase.
func KeyVariants(key string) [4]string {
	snake := strings.ReplaceAll(key, ".", "_")
	return [4]string{
		key,
		strings.ToUpper(snake),
		strings.ToLower(snake),
		CamelCase(key),
	}
}

// CamelCase drops every '.' and '_' and upper-cases the rune that follows it,
// so "health.monitor.server.port" becomes "healthMonitorServerPort".
func CamelCase(key string) string {
	var b strings.Builder
	b.Grow(len(key))

	upperNext := false
	for _, r := range key {
		switch {
		case r == '.' || r == '_':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
