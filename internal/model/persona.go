package model

import (
	"strings"
	"time"
)

// PersonaName is the closed set of behavioral personas Anna can adapt
// its phrasing and verbosity toward, inferred from usage signals or
// pinned by an operator override.
type PersonaName string

const (
	PersonaAdminPragmatic PersonaName = "admin-pragmatic"
	PersonaDevEnthusiast  PersonaName = "dev-enthusiast"
	PersonaPowerNerd      PersonaName = "power-nerd"
	PersonaCasualMinimal  PersonaName = "casual-minimal"
	PersonaCreatorWriter  PersonaName = "creator-writer"
	PersonaUnknown        PersonaName = "unknown"
)

// ValidPersonas lists every persona name accepted by an override.
var ValidPersonas = []PersonaName{
	PersonaAdminPragmatic, PersonaDevEnthusiast, PersonaPowerNerd,
	PersonaCasualMinimal, PersonaCreatorWriter, PersonaUnknown,
}

// ParsePersonaName normalizes and validates a raw persona string.
func ParsePersonaName(s string) (PersonaName, bool) {
	p := PersonaName(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidPersonas {
		if p == valid {
			return p, true
		}
	}
	return "", false
}

// PersonaSourceKind records how the current persona was decided.
type PersonaSourceKind string

const (
	PersonaSourceOverride PersonaSourceKind = "override"
	PersonaSourceInferred PersonaSourceKind = "inferred"
	PersonaSourceDefault  PersonaSourceKind = "default"
)

// PersonaState is the persisted current-persona record, mirroring
// spec.md §6's persona/current.json.
type PersonaState struct {
	Persona      PersonaName
	Confidence   float64
	Updated      time.Time
	Source       PersonaSourceKind
	Explanations []string
	WindowDays   int
}

// DefaultPersonaState is the state written the first time annad runs
// with no prior persona history and no override.
func DefaultPersonaState(now time.Time) PersonaState {
	return PersonaState{
		Persona:    PersonaUnknown,
		Confidence: 0,
		Updated:    now,
		Source:     PersonaSourceDefault,
	}
}
