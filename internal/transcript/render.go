package transcript

import (
	"fmt"
	"strings"

	"anna.local/annad/internal/model"
)

// actorTags maps a TranscriptEvent's Speaker to the bracketed tag
// Debug mode shows alongside it.
var actorTags = map[string]string{
	"user":    "[you]",
	"system":  "[annad]",
	"junior":  "[junior]",
	"senior":  "[senior]",
	"anna":    "[anna]",
	"translator": "[translator]",
}

func actorTag(speaker string) string {
	if tag, ok := actorTags[speaker]; ok {
		return tag
	}
	if speaker == "" {
		return "[anna]"
	}
	return "[" + speaker + "]"
}

// Render produces the final transcript text for mode. evidence is the
// request's full evidence set, used in Debug mode to look up each
// probe event's citation id and summary.
func Render(events []model.TranscriptEvent, evidence []model.Evidence, mode model.RenderMode, reliability int, topSource string) string {
	if mode == model.RenderDebug {
		return renderDebug(events, evidence)
	}
	return renderHuman(events, reliability, topSource)
}

func renderDebug(events []model.TranscriptEvent, evidence []model.Evidence) string {
	byProbe := make(map[string]model.Evidence, len(evidence))
	for _, e := range evidence {
		byProbe[e.ProbeID] = e
	}

	var b strings.Builder
	for _, ev := range events {
		switch ev.Type {
		case model.EventStageStart, model.EventStageEnd:
			fmt.Fprintf(&b, "----- %s -----\n", ev.StageName)
		case model.EventProbeStart:
			fmt.Fprintf(&b, "%s running probe %s\n", actorTag(ev.Speaker), ev.ProbeID)
		case model.EventProbeEnd:
			if e, ok := byProbe[ev.ProbeID]; ok {
				fmt.Fprintf(&b, "%s %s -> %s\n", e.Citation(), ev.ProbeID, e.HumanSummary)
			} else {
				fmt.Fprintf(&b, "%s -> %s\n", ev.ProbeID, ev.Text)
			}
		case model.EventUnknown:
			fmt.Fprintf(&b, "%s (unrecognized event)\n", actorTag(ev.Speaker))
		default:
			fmt.Fprintf(&b, "%s %s\n", actorTag(ev.Speaker), ev.Text)
		}
	}
	return b.String()
}

func renderHuman(events []model.TranscriptEvent, reliability int, topSource string) string {
	text := selectFinalBlock(events)
	phrased := applyConfidencePhrasing(text, reliability)
	footer := ReliabilityFooter(reliability, topSource)
	return phrased + "\n\n" + footer
}

// selectFinalBlock implements spec.md §4.9's single-answer invariant:
// FinalAnswer if present, else a Clarification note, else the last
// plain Message, else a non-blank fallback.
func selectFinalBlock(events []model.TranscriptEvent) string {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == model.EventFinalAnswer {
			return events[i].Text
		}
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == model.EventNote && strings.Contains(strings.ToLower(events[i].Text), "clarif") {
			return events[i].Text
		}
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == model.EventMessage && events[i].Speaker != "user" {
			return events[i].Text
		}
	}
	return "I don't have an answer to give you yet."
}

// applyConfidencePhrasing prefixes text per spec.md §4.9's confidence
// tiers: >=90 no prefix, 75-89 "It looks like", 60-74 "I think", <60
// "I'm not certain, but".
func applyConfidencePhrasing(text string, reliability int) string {
	prefix := confidencePrefix(reliability)
	if prefix == "" {
		return text
	}
	return prefix + " " + lowerFirst(text)
}

func confidencePrefix(reliability int) string {
	switch {
	case reliability >= 90:
		return ""
	case reliability >= 75:
		return "It looks like"
	case reliability >= 60:
		return "I think"
	default:
		return "I'm not certain, but"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToLower(string(r[0])) + string(r[1:])
}

// ReliabilityFooter formats spec.md §4.9's always-present footer.
func ReliabilityFooter(reliability int, topSource string) string {
	return fmt.Sprintf("Reliability: %d%% (%s, %s)", reliability, qualitativeLabel(reliability), topSource)
}

func qualitativeLabel(reliability int) string {
	switch {
	case reliability >= 90:
		return "high confidence"
	case reliability >= 75:
		return "good confidence"
	case reliability >= 60:
		return "moderate confidence"
	default:
		return "low confidence"
	}
}
