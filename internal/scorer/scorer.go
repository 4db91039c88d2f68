// Package scorer combines evidence coverage, citation analysis, and
// mismatch signals into the 0-100 reliability score the Answer
// Pipeline stamps on every final answer, per spec.md §4.5.
package scorer

import (
	"regexp"
	"strings"

	"anna.local/annad/internal/model"
)

// Penalty is a named deduction applied after the weighted combination.
type Penalty struct {
	Name   string
	Points int
}

// Input carries every signal the scorer needs.
type Input struct {
	Coverage         model.Coverage
	AnswerText       string
	EvidenceQuality  float64 // 0-1, from Junior/Senior self-assessment
	ReasoningQuality float64 // 0-1
}

// Result is the scored outcome.
type Result struct {
	Overall     int
	HasMismatch bool
	ShipIt      bool
	Penalties   []Penalty
	Capped      bool
	CapReason   string
}

var citationPattern = regexp.MustCompile(`\[E\d+\]`)

const (
	uncitedClaimPenalty = 10
	shipItThreshold     = 75
	mismatchCap         = 20
	lowCoverageCap      = 50
	lowCoverageThreshold = 50
)

// Score computes the weighted combination, subtracts accumulated
// penalties, then applies spec.md §4.5's hard caps as a final ceiling.
func Score(in Input) Result {
	hasMismatch := in.Coverage.HasMismatch() && usesOnlyMismatchedEvidence(in)

	coverageFraction := float64(in.Coverage.CoveragePercent) / 100.0

	overall := 0.4*in.EvidenceQuality + 0.3*in.ReasoningQuality + 0.3*coverageFraction
	scaled := int(overall * 100)

	var penalties []Penalty
	if !hasClaimCitation(in.AnswerText) {
		penalties = append(penalties, Penalty{Name: "uncited_claim", Points: uncitedClaimPenalty})
	}
	for _, p := range penalties {
		scaled -= p.Points
	}
	if scaled < 0 {
		scaled = 0
	}

	capped := false
	capReason := ""

	if hasMismatch && scaled > mismatchCap {
		scaled = mismatchCap
		capped = true
		capReason = "mismatched_evidence_sole_source"
	}
	if in.Coverage.CoveragePercent < lowCoverageThreshold && scaled > lowCoverageCap {
		scaled = lowCoverageCap
		capped = true
		if capReason == "" {
			capReason = "low_coverage"
		}
	}

	return Result{
		Overall:     scaled,
		HasMismatch: hasMismatch,
		ShipIt:      scaled >= shipItThreshold && !hasMismatch,
		Penalties:   penalties,
		Capped:      capped,
		CapReason:   capReason,
	}
}

// usesOnlyMismatchedEvidence reports whether the answer's mismatch
// flag should count: spec.md's hard cap triggers when mismatched
// evidence is the *sole source*, so an answer citing both matched and
// mismatched evidence does not hit the floor. has_mismatch, and with it
// the ship_it veto, is set only in that sole-source case.
func usesOnlyMismatchedEvidence(in Input) bool {
	return in.Coverage.HasMismatch() && len(in.Coverage.SatisfiedProbes) == 0
}

func hasClaimCitation(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return citationPattern.MatchString(text)
}
