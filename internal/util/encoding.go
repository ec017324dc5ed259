package util

import (
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD normalization so that visually identical input
// always maps to the same byte sequence before hashing or lookup.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}
