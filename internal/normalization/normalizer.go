// Package normalization provides type-safe string-to-enum normalization used
// by the config loader and the content model (log levels, subjects, grade
// levels, template names).
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps loosely-spelled strings onto a closed enum type.
type Normalizer[T comparable] struct {
	validValues  map[string]T
	defaultValue T
	validKeys    []string // cached for error messages
}

// NewNormalizer creates a normalizer from valid string->value pairs. Keys are
// lower-cased and trimmed before lookup, so callers can accept mixed-case
// input from config files and record JSON.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := canonicalKey(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts a raw string to the enum type, returning the default
// value when the string is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, exists := n.validValues[canonicalKey(raw)]; exists {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError converts a raw string to the enum type, returning an
// error naming the valid options when the string is not recognized.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, exists := n.validValues[canonicalKey(raw)]; exists {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.validKeys)
}

// ValidKeys returns all valid normalized keys (for help text).
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

func canonicalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
