package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context. Fields flow through context enrichment, so the
// request/episode/probe/skill identifiers a call is operating on show
// up on every log line without being threaded through every function
// signature.
type LogFields struct {
	RequestID  *string // Ask pipeline request ID (snowflake)
	EpisodeID  *string // Action episode ID, once one is opened
	ProbeID    *string // Probe currently executing
	SkillID    *string // Skill currently being matched or invoked
	Tier       *string // "junior" or "senior"
	Component  string  // dotted component name, e.g. "annad.orchestrator"
}

// WithLogFields enriches context with structured log fields. Multiple
// calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context, or zero value if none set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.EpisodeID != nil {
		result.EpisodeID = new.EpisodeID
	}
	if new.ProbeID != nil {
		result.ProbeID = new.ProbeID
	}
	if new.SkillID != nil {
		result.SkillID = new.SkillID
	}
	if new.Tier != nil {
		result.Tier = new.Tier
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for inline
// LogFields construction: logger.WithLogFields(ctx, logger.LogFields{RequestID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
