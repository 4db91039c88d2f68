// Package clarify implements the clarification menu, response
// parsing, and verification flow of spec.md §4.6.
package clarify

import (
	"strconv"
	"strings"

	"anna.local/annad/internal/model"
)

// VerifyExpectationKind is the closed set of checks a clarification
// option may carry.
type VerifyExpectationKind string

const (
	VerifyCommandExists   VerifyExpectationKind = "command_exists"
	VerifyFileContainsLine VerifyExpectationKind = "file_contains_line"
	VerifyServiceState    VerifyExpectationKind = "service_state"
)

// VerifyExpectation describes how to confirm an option's value is
// actually true of this machine.
type VerifyExpectation struct {
	Kind  VerifyExpectationKind
	Probe model.Probe // the probe run to check this expectation
	Want  string      // expected substring/state, interpreted per Kind
}

// Option is one menu entry: a reserved key (0=Cancel, 9=Other, else a
// 1-based position), a value, and an optional verification check.
type Option struct {
	Key    string
	Value  string
	Verify *VerifyExpectation
}

const (
	KeyCancel = "0"
	KeyOther  = "9"
)

// Menu is a clarification prompt ready to present to the user, already
// filtered to installed/present options.
type Menu struct {
	Question string
	FactKey  model.FactKey
	Options  []Option
}

// BuildMenu filters candidates to those verified present on the
// machine (caller supplies the presence check, e.g. "is this binary on
// PATH") and assigns reserved/ordinal keys.
func BuildMenu(question string, factKey model.FactKey, candidates []Option, present func(Option) bool) Menu {
	filtered := make([]Option, 0, len(candidates))
	for _, c := range candidates {
		if present(c) {
			filtered = append(filtered, c)
		}
	}
	for i := range filtered {
		filtered[i].Key = strconv.Itoa(i + 1)
	}
	return Menu{Question: question, FactKey: factKey, Options: filtered}
}

// IsAutoSelectable reports whether m has exactly one filtered option,
// per spec.md §4.6's auto-selection rule.
func (m Menu) IsAutoSelectable() bool {
	return len(m.Options) == 1
}

// ResponseKind is the closed set of ways a user's reply to a menu is
// interpreted.
type ResponseKind string

const (
	ResponseSelected  ResponseKind = "selected"
	ResponseCancelled ResponseKind = "cancelled"
	ResponseOther     ResponseKind = "other"
)

// ParsedResponse is the result of interpreting a raw user reply
// against a Menu.
type ParsedResponse struct {
	Kind     ResponseKind
	Option   Option // set when Kind == ResponseSelected
	FreeText string // set when Kind == ResponseOther
}

// ParseResponse implements spec.md §4.6's response grammar: numeric
// selection by key, "0"/"cancel" -> Cancelled, "9" or any other
// non-numeric text -> Other(free_text).
func ParseResponse(m Menu, raw string) ParsedResponse {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if trimmed == KeyCancel || lower == "cancel" {
		return ParsedResponse{Kind: ResponseCancelled}
	}
	if trimmed == KeyOther {
		return ParsedResponse{Kind: ResponseOther, FreeText: ""}
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		for _, o := range m.Options {
			if o.Key == strconv.Itoa(n) {
				return ParsedResponse{Kind: ResponseSelected, Option: o}
			}
		}
	}

	return ParsedResponse{Kind: ResponseOther, FreeText: trimmed}
}

// ResultKind is the closed set of outcomes a clarification attempt can
// produce.
type ResultKind string

const (
	ResultVerified           ResultKind = "verified"
	ResultAutoSelected       ResultKind = "auto_selected"
	ResultNeedsVerification  ResultKind = "needs_verification"
	ResultVerificationFailed ResultKind = "verification_failed"
	ResultCancelled          ResultKind = "cancelled"
)

// Result is the outcome of resolving one clarification.
type Result struct {
	Kind         ResultKind
	Value        string
	FactKey      model.FactKey
	Error        string
	Alternatives []string
}
