// Package config resolves the health monitor settings from several ranked
// sources. Precedence: explicit overrides > system properties > environment
// variables > properties file > defaults. Every canonical dotted key is looked
// up under four spellings (dotted, UPPER_SNAKE, lower_snake and camelCase)
// within a source before the next source is consulted.
package config
