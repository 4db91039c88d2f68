package model

import "time"

// Evidence is one probe's result, stable for the life of a request and
// citable in answer text as "[E1]", "[E2]", etc.
type Evidence struct {
	ID            string // e.g. "E1"
	ProbeID       string
	HumanSummary  string
	RawOutput     string
	Success       bool
	FailureReason string // "timeout", "nonzero_exit", "unknown_probe", ""
	Timestamp     time.Time
	Topic         string
}

// Citation returns the bracketed citation token for this evidence item,
// e.g. "[E1]".
func (e Evidence) Citation() string {
	return "[" + e.ID + "]"
}
