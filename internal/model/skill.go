package model

import "time"

// SkillStats tracks the pain-driven trust score and reliability of a
// learned command template.
type SkillStats struct {
	SuccessCount int
	FailureCount int
	AvgLatencyMs int64
	Trust        int // 0-100, starts at 50
}

const (
	skillTrustStart = 50
	skillTrustStep  = 5
	skillTrustPenalty = 10
	trustedThreshold  = 40
)

// TotalUses returns the number of times this skill has been invoked.
func (s SkillStats) TotalUses() int {
	return s.SuccessCount + s.FailureCount
}

// Reliability returns success/total, or 0 if the skill has never run.
func (s SkillStats) Reliability() float64 {
	total := s.TotalUses()
	if total == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(total)
}

// IsTrusted reports whether the skill's trust score clears the routing
// threshold.
func (s SkillStats) IsTrusted() bool {
	return s.Trust >= trustedThreshold
}

// ShouldRetry reports whether a skill that has accumulated enough uses
// but performs poorly should still be offered, per the retry policy:
// never retry once total_uses >= 5 and reliability < 0.3.
func (s SkillStats) ShouldRetry() bool {
	return !(s.TotalUses() >= 5 && s.Reliability() < 0.3)
}

// RecordSuccess applies the trust/reliability update for a successful run.
func (s SkillStats) RecordSuccess(latencyMs int64) SkillStats {
	s.SuccessCount++
	s.Trust = clamp(s.Trust+skillTrustStep, 0, 100)
	s.AvgLatencyMs = weightedAvg(s.AvgLatencyMs, latencyMs, s.TotalUses())
	return s
}

// RecordFailure applies the trust/reliability update for a failed run.
func (s SkillStats) RecordFailure() SkillStats {
	s.FailureCount++
	s.Trust = clamp(s.Trust-skillTrustPenalty, 0, 100)
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func weightedAvg(prevAvg, sample int64, countAfterSample int) int64 {
	if countAfterSample <= 1 {
		return sample
	}
	return prevAvg + (sample-prevAvg)/int64(countAfterSample)
}

// NewSkillStats returns the initial stats for a freshly learned skill.
func NewSkillStats() SkillStats {
	return SkillStats{Trust: skillTrustStart}
}

// Skill is a persisted, reusable command template learned from a
// successful interaction, or authored ahead of time.
type Skill struct {
	ID               string
	Version          int
	Intent           string
	Description      string
	CommandTemplate  string // with {{param}} placeholders
	ParameterSchema  map[string]string
	Defaults         map[string]string
	ParserSpec       string
	ExampleQuestions []string
	Stats            SkillStats
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MatchScore scores how well this skill fits a free-text question,
// combining example overlap, description-token overlap, and a
// reliability-weighted scale.
func (s Skill) MatchScore(question string) float64 {
	qTokens := tokenize(question)
	qLower := normalize(question)

	var exampleScore float64
	for _, ex := range s.ExampleQuestions {
		exLower := normalize(ex)
		if exLower == "" {
			continue
		}
		if contains(qLower, exLower) || contains(exLower, qLower) {
			exampleScore += 0.5
		}
		exampleScore += 0.1 * float64(tokenOverlap(qTokens, tokenize(ex)))
	}

	descScore := 0.05 * float64(tokenOverlap(qTokens, tokenize(s.Description)))

	raw := exampleScore + descScore
	scale := 0.5 + 0.5*s.Stats.Reliability()
	return raw * scale
}
