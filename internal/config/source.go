package config

import "os"

// Source is one ranked origin of configuration values.
type Source interface {
	Lookup(key string) (string, bool)
}

// SourceFunc adapts a lookup function to Source.
type SourceFunc func(key string) (string, bool)

// Lookup implements Source.
func (f SourceFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// MapSource serves values from an in-memory table.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvSource reads the process environment.
func EnvSource() Source {
	return SourceFunc(os.LookupEnv)
}
