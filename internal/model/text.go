package model

import "strings"

// normalize lowercases and trims a string for loose comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenize splits a string into lowercase word tokens.
func tokenize(s string) []string {
	return strings.Fields(normalize(s))
}

// contains reports whether haystack contains needle as a substring,
// guarding against an empty needle matching everything.
func contains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}

// tokenOverlap counts tokens shared between a and b.
func tokenOverlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	n := 0
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}
