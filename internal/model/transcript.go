package model

import (
	"encoding/json"
	"time"
)

// TranscriptEventType is the closed-for-rendering, open-for-decoding
// tag of a TranscriptEvent. Unrecognized values decode into
// EventUnknown rather than failing, so the renderer degrades instead
// of breaking on a forward-incompatible log.
type TranscriptEventType string

const (
	EventMessage    TranscriptEventType = "message"
	EventStageStart TranscriptEventType = "stage_start"
	EventStageEnd   TranscriptEventType = "stage_end"
	EventProbeStart TranscriptEventType = "probe_start"
	EventProbeEnd   TranscriptEventType = "probe_end"
	EventNote       TranscriptEventType = "note"
	EventFinalAnswer TranscriptEventType = "final_answer"
	EventUnknown    TranscriptEventType = "unknown"
)

// TranscriptEvent is one entry in the ordered record of a Junior/Senior
// dialogue, kept for Debug-mode rendering and audit.
type TranscriptEvent struct {
	Type      TranscriptEventType
	Timestamp time.Time
	Speaker   string // "junior", "senior", "user", "system"
	Text      string
	StageName string          // set on StageStart/StageEnd
	ProbeID   string          // set on ProbeStart/ProbeEnd
	Data      json.RawMessage // raw payload for unknown/forward-compat types
}

// UnmarshalJSON implements forward-compatible decoding: any Type value
// outside the closed set above is accepted and remapped to
// EventUnknown with the original bytes preserved in Data, per the
// tagged-union convention used across the transcript and action wire
// formats.
func (e *TranscriptEvent) UnmarshalJSON(data []byte) error {
	type alias TranscriptEvent
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case EventMessage, EventStageStart, EventStageEnd, EventProbeStart, EventProbeEnd, EventNote, EventFinalAnswer:
		*e = TranscriptEvent(raw)
	default:
		*e = TranscriptEvent(raw)
		e.Type = EventUnknown
		e.Data = data
	}
	return nil
}

// RenderMode selects how much of a transcript is surfaced to the user.
type RenderMode string

const (
	RenderHuman RenderMode = "human"
	RenderDebug RenderMode = "debug"
)

// IsDebugOnly reports whether an event should be suppressed in Human
// render mode: stage/probe bookkeeping is debug-only, messages and the
// final answer always show.
func (e TranscriptEvent) IsDebugOnly() bool {
	switch e.Type {
	case EventStageStart, EventStageEnd, EventProbeStart, EventProbeEnd, EventNote:
		return true
	default:
		return false
	}
}
