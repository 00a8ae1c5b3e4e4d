package domain

import "strings"

// NormalizeAddress collapses whitespace so equal addresses share cache keys.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
