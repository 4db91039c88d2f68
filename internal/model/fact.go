package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FactKey is a typed enum identifying a persisted fact. Anna only ever
// looks facts up by key, never by free text, so this is a closed set
// extended as new clarification flows are added.
type FactKey string

const (
	FactPreferredEditor FactKey = "preferred_editor"
	FactPreferredShell  FactKey = "preferred_shell"
	FactPackageTool     FactKey = "package_tool"
	FactInitSystem      FactKey = "init_system"
)

// FactSourceKind is the closed set of places a fact's value came from.
type FactSourceKind string

const (
	SourceProbeDerived  FactSourceKind = "probe_derived"
	SourceUserConfirmed FactSourceKind = "user_confirmed"
	SourceConfigFile    FactSourceKind = "config_file"
	SourceDefault       FactSourceKind = "default"
)

// FactSource records where a fact's value came from. UserConfirmed
// carries the transcript that confirmed it, for audit.
type FactSource struct {
	Kind         FactSourceKind
	TranscriptID string // set only when Kind == SourceUserConfirmed
}

func (s FactSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind         FactSourceKind `json:"kind"`
		TranscriptID string         `json:"transcript_id,omitempty"`
	}{s.Kind, s.TranscriptID})
}

func (s *FactSource) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind         FactSourceKind `json:"kind"`
		TranscriptID string         `json:"transcript_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Kind, s.TranscriptID = raw.Kind, raw.TranscriptID
	return nil
}

// Fact is a single piece of durable knowledge about the host.
type Fact struct {
	Key        FactKey
	Value      string
	Source     FactSource
	Confidence int // 0-100
	Timestamp  time.Time
	TTLClass   CacheClass
	Stale      bool
}

// IsFresh reports whether the fact is both non-stale and, for volatile/slow
// TTL classes, still within its window relative to now.
func (f Fact) IsFresh(now time.Time) bool {
	if f.Stale {
		return false
	}
	ttl := f.TTLClass.TTLSeconds(0)
	if ttl == 0 {
		return true // static facts never expire
	}
	return now.Sub(f.Timestamp).Seconds() < float64(ttl)
}

// ParseFactKey normalizes and validates a raw fact key string.
func ParseFactKey(s string) (FactKey, error) {
	k := FactKey(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case FactPreferredEditor, FactPreferredShell, FactPackageTool, FactInitSystem:
		return k, nil
	default:
		return "", fmt.Errorf("unknown fact key: %q", s)
	}
}
