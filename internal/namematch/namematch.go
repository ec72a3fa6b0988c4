// Package namematch implements permissive fuzzy equality between street
// names. Providers return names with inconsistent casing, abbreviations
// and suffixes ("Main St" vs "Main Street"), so the heuristic trades
// false positives for tolerance of that variance.
package namematch

import (
	"strings"

	"golang.org/x/text/cases"
)

// streetSuffixes is the fixed vocabulary of street-type suffixes stripped
// before the relaxed containment retry. Abbreviated forms included.
var streetSuffixes = []string{
	"street", "st",
	"avenue", "ave", "av",
	"road", "rd",
	"drive", "dr",
	"boulevard", "blvd",
	"lane", "ln",
	"way",
	"court", "ct",
	"place", "pl",
	"square", "sq",
	"terrace", "ter",
}

// Matches reports whether candidateName plausibly names the same street as
// catalogName. The check is order-independent: exact match after case
// folding and trimming, then substring containment in either direction,
// then containment after stripping a street-type suffix from both sides
// (both remainders must be non-empty).
func Matches(catalogName, candidateName string) bool {
	a := normalize(catalogName)
	b := normalize(candidateName)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	sa := stripSuffix(a)
	sb := stripSuffix(b)
	if sa == "" || sb == "" {
		return false
	}
	return strings.Contains(sa, sb) || strings.Contains(sb, sa)
}

func normalize(s string) string {
	// Casers are stateful, so build one per call.
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// stripSuffix removes a trailing street-type token, if present.
func stripSuffix(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	last := fields[len(fields)-1]
	for _, suffix := range streetSuffixes {
		if last == suffix {
			return strings.Join(fields[:len(fields)-1], " ")
		}
	}
	return s
}
