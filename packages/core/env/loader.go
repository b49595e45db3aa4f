package env

import (
	"os"
	"strings"
)

// LookupFunc finds a variable by name.
type LookupFunc func(key string) (string, bool)

// System looks variables up in the process environment.
func System() LookupFunc {
	return os.LookupEnv
}

// FromMap looks variables up in m.
func FromMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Chain layers sources; later sources take precedence over earlier ones.
func Chain(sources ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for i := len(sources) - 1; i >= 0; i-- {
			if sources[i] == nil {
				continue
			}
			if v, ok := sources[i](key); ok {
				return v, true
			}
		}
		return "", false
	}
}

// LoadSystemEnv returns the process environment. With a prefix, only
// variables carrying it are returned, with the prefix stripped.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
