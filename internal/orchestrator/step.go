// Package orchestrator drives the Junior/Senior dialogue that turns
// gathered evidence into a final, scored answer, per spec.md §4.4.
package orchestrator

import (
	"encoding/json"
	"fmt"
)

// Scores carries the four-axis self-assessment Junior and Senior both
// attach to a draft answer.
type Scores struct {
	Evidence  float64 `json:"evidence" jsonschema:"minimum=0,maximum=1"`
	Reasoning float64 `json:"reasoning" jsonschema:"minimum=0,maximum=1"`
	Coverage  float64 `json:"coverage" jsonschema:"minimum=0,maximum=1"`
	Overall   float64 `json:"overall" jsonschema:"minimum=0,maximum=100"`
}

// JuniorStepType is the closed set of decisions Junior may return.
type JuniorStepType string

const (
	JuniorRunProbe          JuniorStepType = "run_probe"
	JuniorAskClarification  JuniorStepType = "ask_clarification"
	JuniorProposeAnswer     JuniorStepType = "propose_answer"
	JuniorEscalateToSenior  JuniorStepType = "escalate_to_senior"
)

// JuniorStep is the tagged union Junior emits once per iteration.
// Unlike TranscriptEvent, the Junior/Senior protocol refuses unknown
// variants rather than tolerating them (spec.md §9's "deep
// polymorphism" note draws this contrast explicitly).
type JuniorStep struct {
	Type JuniorStepType `json:"type" jsonschema:"enum=run_probe,enum=ask_clarification,enum=propose_answer,enum=escalate_to_senior"`

	// RunProbe
	ProbeID string `json:"probe_id,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// AskClarification
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`

	// ProposeAnswer
	Text         string   `json:"text,omitempty"`
	Citations    []string `json:"citations,omitempty"`
	Scores       Scores   `json:"scores,omitempty"`
	ReadyForUser bool     `json:"ready_for_user,omitempty"`

	// EscalateToSenior
	Summary string `json:"summary,omitempty"`
}

// UnmarshalJSON validates Type against the closed set before decoding
// the rest, so an unrecognized variant fails the call outright instead
// of silently defaulting to zero values.
func (s *JuniorStep) UnmarshalJSON(data []byte) error {
	type alias JuniorStep
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	switch a.Type {
	case JuniorRunProbe, JuniorAskClarification, JuniorProposeAnswer, JuniorEscalateToSenior:
		*s = JuniorStep(a)
		return nil
	default:
		return fmt.Errorf("unknown junior step type: %q", a.Type)
	}
}

// SeniorStepType is the closed set of decisions Senior may return.
type SeniorStepType string

const (
	SeniorApproveAnswer SeniorStepType = "approve_answer"
	SeniorCorrectAnswer SeniorStepType = "correct_answer"
	SeniorRequestProbe  SeniorStepType = "request_probe"
	SeniorRefuse        SeniorStepType = "refuse"
)

// SeniorStep is the tagged union Senior emits in review of a Junior
// draft.
type SeniorStep struct {
	Type SeniorStepType `json:"type" jsonschema:"enum=approve_answer,enum=correct_answer,enum=request_probe,enum=refuse"`

	// ApproveAnswer / CorrectAnswer
	Scores Scores `json:"scores,omitempty"`

	// CorrectAnswer
	Text        string   `json:"text,omitempty"`
	Corrections []string `json:"corrections,omitempty"`

	// RequestProbe
	ProbeID string `json:"probe_id,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// Refuse
	RefusalReason string `json:"refusal_reason,omitempty"`
}

// UnmarshalJSON enforces the no-rubber-stamp policy at the decode
// boundary: an approval/correction with no scores object at all still
// parses (individual missing scores are zero per spec.md §4.4), but a
// missing or unrecognized type is a hard decode error — the caller maps
// that to Refuse, never to a default-scored approval.
func (s *SeniorStep) UnmarshalJSON(data []byte) error {
	type alias SeniorStep
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	switch a.Type {
	case SeniorApproveAnswer, SeniorCorrectAnswer, SeniorRequestProbe, SeniorRefuse:
		*s = SeniorStep(a)
		return nil
	default:
		return fmt.Errorf("unknown senior step type: %q", a.Type)
	}
}
