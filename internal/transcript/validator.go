// Package transcript renders a request's TranscriptEvents into the
// Human or Debug view and enforces the single-answer invariant, per
// spec.md §4.9.
package transcript

import "regexp"

// forbiddenPatterns are internal markers that must never leak into a
// Human-mode answer: raw evidence citations, internal tool/field
// names, and phrases that would expose the pipeline's own machinery.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[E\d+\]`),
	regexp.MustCompile(`hw_snapshot\w*`),
	regexp.MustCompile(`\w*_probe\b`),
	regexp.MustCompile(`(?i)deterministic fallback`),
	regexp.MustCompile(`\w+_summary\b`),
	regexp.MustCompile(`tool_name:`),
}

// Validate scans text for forbidden internal markers and returns every
// match found, without suppressing or rewriting the text itself — a
// violation is surfaced to the caller, never silently dropped.
func Validate(text string) []string {
	var violations []string
	for _, p := range forbiddenPatterns {
		for _, m := range p.FindAllString(text, -1) {
			violations = append(violations, m)
		}
	}
	return violations
}
