/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package placeholder provides literal text substitution of script placeholders.
package placeholder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformed is returned by Parse when the placeholders string cannot be parsed.
var ErrMalformed = errors.New("malformed placeholders")

const (
	pairSeparator     = ";"
	keyValueSeparator = "="
)

// Substitute replaces every literal occurrence of each key in content with its value.
// Keys with empty values are ignored. Keys are applied longest first, then in lexical order,
// so the result does not depend on map iteration order.
func Substitute(content string, placeholders map[string]string) string {
	if len(placeholders) == 0 {
		return content
	}
	keys := make([]string, 0, len(placeholders))
	for k, v := range placeholders {
		if k == "" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		content = strings.ReplaceAll(content, k, placeholders[k])
	}
	return content
}

// Parse parses placeholders in the "key1=value1;key2=value2" form.
// Empty pairs are skipped. The value is everything after the first "=" and may be empty.
func Parse(s string) (map[string]string, error) {
	result := make(map[string]string)
	for _, pair := range strings.Split(s, pairSeparator) {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, value, found := strings.Cut(pair, keyValueSeparator)
		if !found {
			return nil, fmt.Errorf("%w: pair %q has no %q", ErrMalformed, pair, keyValueSeparator)
		}
		if key == "" {
			return nil, fmt.Errorf("%w: pair %q has empty key", ErrMalformed, pair)
		}
		result[key] = value
	}
	return result, nil
}
