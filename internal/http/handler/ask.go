package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"anna.local/annad/common/id"
	"anna.local/annad/internal/budget"
	"anna.local/annad/internal/clarify"
	"anna.local/annad/internal/http/dto"
	"anna.local/annad/internal/model"
	"anna.local/annad/internal/orchestrator"
	"anna.local/annad/internal/skills"
	"anna.local/annad/internal/transcript"
	"anna.local/annad/internal/triage"
)

// minSkillMatchScore is the floor a learned skill must clear before it
// short-circuits the Junior/Senior dialogue for an action request.
const minSkillMatchScore = 0.6

// AskHandler serves POST /v1/ask: the Answer Pipeline's core entry
// point, per spec.md §6's ServiceDeskResult exit contract.
type AskHandler struct {
	orch      *orchestrator.Orchestrator
	skills    *skills.Store
	budgetCfg budget.Config
	pending   *PendingClarifications
}

// NewAskHandler builds an ask handler over orch, sharing pending with
// ClarifyHandler so a clarification raised in Ask can be resolved by a
// follow-up call to Clarify. Action requests are first matched against
// skillsStore so a previously-learned command template can answer
// without a fresh Junior/Senior round-trip, per spec.md §4.7.
func NewAskHandler(orch *orchestrator.Orchestrator, skillsStore *skills.Store, budgetCfg budget.Config, pending *PendingClarifications) *AskHandler {
	return &AskHandler{orch: orch, skills: skillsStore, budgetCfg: budgetCfg, pending: pending}
}

func (h *AskHandler) Ask(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := model.RenderHuman
	if req.Mode == "debug" {
		mode = model.RenderDebug
	}

	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = strconv.FormatInt(id.New(), 10)
	}
	detection := triage.Classify(req.Question)

	result := dto.ServiceDeskResult{
		RequestID: requestID,
		Domain:    string(detection.Target),
	}

	if detection.Target == model.TargetActionRequest {
		if sk, ok := h.skills.Best(req.Question, minSkillMatchScore); ok {
			result.Answer = "I can do this with a learned shortcut: " + sk.Description
			result.ReliabilityScore = int(sk.Stats.Reliability() * 100)
			result.Transcript = result.Answer
			result.ProposedChange = &dto.ProposedChange{
				Summary:  sk.Description,
				Commands: []string{sk.CommandTemplate},
			}
			c.JSON(http.StatusOK, result)
			return
		}
	}

	tracker := budget.NewTracker(h.budgetCfg)
	outcome := h.orch.Run(ctx, req.Question, detection.Target, tracker)
	result.Evidence = toEvidenceItems(outcome.Evidence)

	switch {
	case outcome.IsRefusal:
		result.Answer = "I can't answer that confidently: " + outcome.RefusalReason
		result.ReliabilityScore = 0
		result.Transcript = result.Answer

	case outcome.NeedsClarify:
		menu := clarify.BuildMenu(outcome.ClarifyQuestion, "", optionsFrom(outcome.ClarifyOptions), func(clarify.Option) bool { return true })
		h.pending.Put(requestID, menu)

		result.NeedsClarification = true
		result.ClarificationQuestion = outcome.ClarifyQuestion
		result.Answer = outcome.ClarifyQuestion
		result.Transcript = outcome.ClarifyQuestion

	default:
		result.Answer = outcome.Text
		result.ReliabilityScore = outcome.Reliability
		result.ReliabilitySignals = signalsFrom(outcome)
		result.Transcript = transcript.Render(eventsFrom(outcome), outcome.Evidence, mode, outcome.Reliability, topSource(outcome.Evidence))
	}

	c.JSON(http.StatusOK, result)
}

func toEvidenceItems(evidence []model.Evidence) []dto.EvidenceItem {
	items := make([]dto.EvidenceItem, 0, len(evidence))
	for _, e := range evidence {
		items = append(items, dto.EvidenceItem{
			ID:      e.ID,
			ProbeID: e.ProbeID,
			Summary: e.HumanSummary,
			Success: e.Success,
			Topic:   e.Topic,
		})
	}
	return items
}

func signalsFrom(outcome orchestrator.Outcome) []string {
	signals := make([]string, 0, len(outcome.ScorerResult.Penalties))
	for _, p := range outcome.ScorerResult.Penalties {
		signals = append(signals, p.Name)
	}
	if outcome.ScorerResult.Capped {
		signals = append(signals, "capped:"+outcome.ScorerResult.CapReason)
	}
	return signals
}

func topSource(evidence []model.Evidence) string {
	for _, e := range evidence {
		if e.Success {
			return e.ProbeID
		}
	}
	return "no evidence"
}

func optionsFrom(raw []string) []clarify.Option {
	opts := make([]clarify.Option, 0, len(raw))
	for _, v := range raw {
		opts = append(opts, clarify.Option{Value: v})
	}
	return opts
}

// eventsFrom builds the minimal TranscriptEvent sequence the renderer
// needs from an Outcome that did not go through the full transcript
// recorder: a final-answer event carries the single-answer invariant
// through Render even when no richer stage/probe log was kept.
func eventsFrom(outcome orchestrator.Outcome) []model.TranscriptEvent {
	events := make([]model.TranscriptEvent, 0, len(outcome.Evidence)+1)
	for _, e := range outcome.Evidence {
		events = append(events, model.TranscriptEvent{Type: model.EventProbeEnd, ProbeID: e.ProbeID})
	}
	events = append(events, model.TranscriptEvent{Type: model.EventFinalAnswer, Text: outcome.Text})
	return events
}
