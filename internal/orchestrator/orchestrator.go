package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"anna.local/annad/common/llm"
	"anna.local/annad/internal/budget"
	"anna.local/annad/internal/coverage"
	"anna.local/annad/internal/model"
	"anna.local/annad/internal/probe"
	"anna.local/annad/internal/scorer"
)

const (
	defaultMaxIterations     = 8
	minScoreWithoutSenior    = 80.0
	exhaustedIterationsScore = 30
)

// Outcome is the orchestrator's terminal result for one request: a
// final answer, a clarification request, or a refusal — never blank.
type Outcome struct {
	Text           string
	Citations      []string
	Reliability    int
	IsRefusal      bool
	RefusalReason  string
	NeedsClarify   bool
	ClarifyQuestion string
	ClarifyOptions []string
	Note           string
	Evidence       []model.Evidence
	ScorerResult   scorer.Result
}

// juniorTurn is one RunProbe/ProposeAnswer/EscalateToSenior round,
// listed as a prior step in the next Junior prompt. The Senior review
// prompt and the exhaustion note do not include these turns.
type juniorTurn struct {
	step JuniorStep
}

// Orchestrator drives the Junior/Senior dialogue.
type Orchestrator struct {
	probes        *probe.Executor
	catalog       *probe.Catalog
	junior        llm.Client
	senior        llm.Client
	maxIterations int
}

// New builds an Orchestrator over its probe and LLM dependencies.
// maxIterations caps the Junior round-trip loop per spec §4.4; a
// value <= 0 falls back to the spec default of 8.
func New(probes *probe.Executor, catalog *probe.Catalog, junior, senior llm.Client, maxIterations int) *Orchestrator {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &Orchestrator{probes: probes, catalog: catalog, junior: junior, senior: senior, maxIterations: maxIterations}
}

// Run executes Start → PlanEvidence → RunProbes → JuniorStep* →
// (Deliver | SeniorReview) → Final for one user question.
func (o *Orchestrator) Run(ctx context.Context, question string, target model.QueryTarget, tracker *budget.Tracker) Outcome {
	required := coverage.RequiredProbes(target)
	batch := o.probes.ExecuteMany(ctx, required, tracker, 0)
	evidence := batch.Evidence

	var turns []juniorTurn
	var lastDraft JuniorStep

	for i := 0; i < o.maxIterations; i++ {
		if fb := tracker.ShouldFallBack(budget.StageProbes); fb.ShouldFallBack {
			cov := coverage.Score(target, evidence)
			return o.partialFromDraft(lastDraft, evidence, cov, fb.UserMessage, turns)
		}

		step, err := o.askJunior(ctx, question, evidence, turns, tracker)
		if err != nil {
			slog.ErrorContext(ctx, "junior step failed", "error", err)
			cov := coverage.Score(target, evidence)
			return o.partialFromDraft(lastDraft, evidence, cov, "I had trouble reasoning about this and I'm giving you my best partial answer.", turns)
		}

		turns = append(turns, juniorTurn{step: step})

		switch step.Type {
		case JuniorRunProbe:
			ev := o.runOneProbe(ctx, step.ProbeID, tracker)
			evidence = append(evidence, ev)
			continue

		case JuniorAskClarification:
			return Outcome{
				NeedsClarify:    true,
				ClarifyQuestion: step.Question,
				ClarifyOptions:  step.Options,
				Evidence:        evidence,
			}

		case JuniorProposeAnswer:
			lastDraft = step
			cov := coverage.Score(target, evidence)
			if step.ReadyForUser && step.Scores.Overall >= minScoreWithoutSenior && cov.IsSufficient {
				return o.finalize(step.Text, step.Citations, evidence, cov, step.Scores, "")
			}
			return o.seniorReview(ctx, question, evidence, cov, step, tracker)

		case JuniorEscalateToSenior:
			lastDraft = step
			cov := coverage.Score(target, evidence)
			return o.seniorReview(ctx, question, evidence, cov, step, tracker)
		}
	}

	cov := coverage.Score(target, evidence)
	return o.exhausted(lastDraft, evidence, cov, turns)
}

func (o *Orchestrator) runOneProbe(ctx context.Context, probeID string, tracker *budget.Tracker) model.Evidence {
	ev := o.probes.Execute(ctx, probeID)
	tracker.RecordOutputBytes(len(ev.RawOutput))
	return ev
}

func (o *Orchestrator) askJunior(ctx context.Context, question string, evidence []model.Evidence, turns []juniorTurn, tracker *budget.Tracker) (JuniorStep, error) {
	budgetCfg := tracker.LlmBudgetFor(budget.StageTranslator)
	ctx, cancel := context.WithTimeout(ctx, budgetCfg.Timeout)
	defer cancel()

	req := llm.Request{
		SystemPrompt: juniorSystemPrompt,
		UserPrompt:   buildJuniorPrompt(question, evidence, turns),
		SchemaName:   "junior_step",
		Schema:       llm.GenerateSchema[JuniorStep](),
		MaxTokens:    budgetCfg.MaxTokens,
	}

	var step JuniorStep
	if _, err := o.junior.Chat(ctx, req, &step); err != nil {
		return JuniorStep{}, fmt.Errorf("junior chat: %w", err)
	}
	return step, nil
}

// seniorReview runs the Senior audit of a Junior draft. A decode
// failure or unrecognized variant is mapped to Refuse per spec.md
// §4.4's no-rubber-stamp policy — never to a default-scored approval.
func (o *Orchestrator) seniorReview(ctx context.Context, question string, evidence []model.Evidence, cov model.Coverage, draft JuniorStep, tracker *budget.Tracker) Outcome {
	if fb := tracker.ShouldFallBack(budget.StageSpecialist); fb.ShouldFallBack {
		return o.partialFromDraft(draft, evidence, cov, fb.UserMessage, nil)
	}

	budgetCfg := tracker.LlmBudgetFor(budget.StageSpecialist)
	reqCtx, cancel := context.WithTimeout(ctx, budgetCfg.Timeout)
	defer cancel()

	req := llm.Request{
		SystemPrompt: seniorSystemPrompt,
		UserPrompt:   buildSeniorPrompt(question, evidence, draft),
		SchemaName:   "senior_step",
		Schema:       llm.GenerateSchema[SeniorStep](),
		MaxTokens:    budgetCfg.MaxTokens,
	}

	var step SeniorStep
	if _, err := o.senior.Chat(reqCtx, req, &step); err != nil {
		slog.WarnContext(ctx, "senior review malformed, refusing", "error", err)
		return Outcome{IsRefusal: true, RefusalReason: "response could not be parsed", Reliability: 0, Evidence: evidence}
	}

	switch step.Type {
	case SeniorApproveAnswer:
		return o.finalize(draft.Text, draft.Citations, evidence, cov, step.Scores, "")

	case SeniorCorrectAnswer:
		return o.finalize(step.Text, draft.Citations, evidence, cov, step.Scores, "")

	case SeniorRequestProbe:
		ev := o.runOneProbe(ctx, step.ProbeID, tracker)
		evidence = append(evidence, ev)
		note := "A senior review requested an additional check (" + step.ProbeID + ") after the initial draft."
		cov = coverage.Score(cov.Target, evidence)
		return o.finalize(draft.Text, draft.Citations, evidence, cov, draft.Scores, note)

	case SeniorRefuse:
		return Outcome{IsRefusal: true, RefusalReason: step.RefusalReason, Reliability: 0, Evidence: evidence}

	default:
		return Outcome{IsRefusal: true, RefusalReason: "response could not be parsed", Reliability: 0, Evidence: evidence}
	}
}

func (o *Orchestrator) finalize(text string, citations []string, evidence []model.Evidence, cov model.Coverage, scores Scores, note string) Outcome {
	result := scorer.Score(scorer.Input{
		Coverage:         cov,
		AnswerText:       text,
		EvidenceQuality:  scores.Evidence,
		ReasoningQuality: scores.Reasoning,
	})

	return Outcome{
		Text:         text,
		Citations:    citations,
		Reliability:  result.Overall,
		Note:         note,
		Evidence:     evidence,
		ScorerResult: result,
	}
}

// partialFromDraft returns the best available draft under a stage
// timeout, capped to spec.md §4.3's degraded-answer ceiling.
func (o *Orchestrator) partialFromDraft(draft JuniorStep, evidence []model.Evidence, cov model.Coverage, userMessage string, turns []juniorTurn) Outcome {
	out := o.finalize(draft.Text, draft.Citations, evidence, cov, draft.Scores, userMessage)
	if out.Reliability >= 75 {
		out.Reliability = 74
	}
	return out
}

// exhausted builds the MAX_ITERATIONS fallback: reliability capped at
// 30 with a note enumerating the probes attempted.
func (o *Orchestrator) exhausted(draft JuniorStep, evidence []model.Evidence, cov model.Coverage, turns []juniorTurn) Outcome {
	probeIDs := make([]string, 0, len(evidence))
	for _, e := range evidence {
		probeIDs = append(probeIDs, e.ProbeID)
	}
	note := fmt.Sprintf("I reached my iteration limit before finishing. Probes attempted: %s.", strings.Join(probeIDs, ", "))

	text := draft.Text
	if text == "" {
		text = "I wasn't able to reach a confident answer within my step budget."
	}

	return Outcome{
		Text:        text,
		Citations:   draft.Citations,
		Reliability: exhaustedIterationsScore,
		Note:        note,
		Evidence:    evidence,
	}
}
