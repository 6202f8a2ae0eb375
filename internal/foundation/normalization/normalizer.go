// Package normalization maps loosely spelled configuration values onto their
// canonical form.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps accepted spellings to a canonical value.
type Normalizer[T comparable] struct {
	name      string
	values    map[string]T
	validKeys []string
}

// NewNormalizer creates a normalizer for the setting called name. Keys are
// matched case-insensitively and ignore surrounding whitespace.
func NewNormalizer[T comparable](name string, values map[string]T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		key := clean(k)
		normalized[key] = v
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Normalizer[T]{name: name, values: normalized, validKeys: keys}
}

// Normalize returns the canonical value for raw.
func (n *Normalizer[T]) Normalize(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.validKeys, ", "))
}

// ValidKeys returns the accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.validKeys))
	copy(out, n.validKeys)
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
