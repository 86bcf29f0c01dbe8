package config

import "strings"

// Resolver walks its sources in precedence order and, within each source, the
// four key variants. Blank values count as missing.
type Resolver struct {
	sources []Source
}

// NewResolver builds a Resolver; sources are given highest precedence first
// and nil entries are skipped.
func NewResolver(sources ...Source) *Resolver {
	r := &Resolver{sources: make([]Source, 0, len(sources))}
	for _, src := range sources {
		if src != nil {
			r.sources = append(r.sources, src)
		}
	}
	return r
}

// Lookup returns the first non-blank value found for key.
func (r *Resolver) Lookup(key string) (string, bool) {
	variants := KeyVariants(key)
	for _, src := range r.sources {
		for _, variant := range variants {
			if v, ok := src.Lookup(variant); ok && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
	}
	return "", false
}

// Resolve returns the effective value of key, or def when no source has it.
func (r *Resolver) Resolve(key, def string) string {
	if v, ok := r.Lookup(key); ok {
		return v
	}
	return def
}
