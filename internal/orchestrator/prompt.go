package orchestrator

import (
	"fmt"
	"strings"

	"anna.local/annad/internal/model"
)

const juniorSystemPrompt = `You are Anna's junior analyst. You answer questions about a Linux
host using only the evidence provided to you, citing each claim with
its bracketed evidence id (e.g. [E1]). Each turn you must return
exactly one decision: run_probe to gather more evidence,
ask_clarification if the question is ambiguous, propose_answer when
you have enough to answer, or escalate_to_senior if you are unsure
and want a second opinion. Never invent evidence that was not given to
you.`

const seniorSystemPrompt = `You are Anna's senior reviewer. You are given the user's question, the
evidence gathered, and a junior analyst's draft answer with its
self-assessed scores. Audit the draft for unsupported claims, missing
citations, and evidence mismatches. Return approve_answer if the draft
is correct as written, correct_answer with replacement text if it is
fixable, request_probe if one more check would resolve a gap, or
refuse if the draft cannot be salvaged. Never approve a draft you have
not actually checked against the evidence.`

func buildJuniorPrompt(question string, evidence []model.Evidence, turns []juniorTurn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Evidence gathered so far:\n")
	if len(evidence) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, e := range evidence {
		if e.Success {
			fmt.Fprintf(&b, "[%s] (%s, topic=%s): %s\n", e.ID, e.ProbeID, e.Topic, e.HumanSummary)
		} else {
			fmt.Fprintf(&b, "[%s] (%s) FAILED: %s\n", e.ID, e.ProbeID, e.FailureReason)
		}
	}

	if len(turns) > 0 {
		b.WriteString("\nPrior steps this request:\n")
		for i, t := range turns {
			fmt.Fprintf(&b, "%d. %s\n", i+1, describeTurn(t))
		}
	}

	return b.String()
}

func describeTurn(t juniorTurn) string {
	switch t.step.Type {
	case JuniorRunProbe:
		return fmt.Sprintf("requested probe %s (%s)", t.step.ProbeID, t.step.Reason)
	case JuniorAskClarification:
		return fmt.Sprintf("asked clarification: %s", t.step.Question)
	case JuniorProposeAnswer:
		return fmt.Sprintf("proposed an answer (overall score %.0f)", t.step.Scores.Overall)
	case JuniorEscalateToSenior:
		return fmt.Sprintf("escalated to senior: %s", t.step.Summary)
	default:
		return string(t.step.Type)
	}
}

func buildSeniorPrompt(question string, evidence []model.Evidence, draft JuniorStep) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Evidence:\n")
	for _, e := range evidence {
		if e.Success {
			fmt.Fprintf(&b, "[%s] (%s, topic=%s): %s\n", e.ID, e.ProbeID, e.Topic, e.HumanSummary)
		} else {
			fmt.Fprintf(&b, "[%s] (%s) FAILED: %s\n", e.ID, e.ProbeID, e.FailureReason)
		}
	}

	fmt.Fprintf(&b, "\nJunior draft:\n%s\n\nJunior self-scores: evidence=%.2f reasoning=%.2f coverage=%.2f overall=%.0f\n",
		draft.Text, draft.Scores.Evidence, draft.Scores.Reasoning, draft.Scores.Coverage, draft.Scores.Overall)

	return b.String()
}
