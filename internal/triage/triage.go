// Package triage turns a free-text question into the QueryTarget the
// orchestrator and evidence-coverage table key off, per spec.md §4.3's
// target/probe requirement map.
package triage

import (
	"strings"

	"anna.local/annad/internal/model"
)

// keywordSets maps a QueryTarget to the substrings whose presence in a
// lowercased question is evidence for that target. Order matters: the
// first set with a hit wins, so the more specific targets (service,
// network) are checked before the catch-all diagnose bucket.
var keywordSets = []struct {
	target   model.QueryTarget
	keywords []string
}{
	{model.TargetActionRequest, []string{"install ", "uninstall ", "remove ", "enable ", "disable ", "start ", "stop ", "restart "}},
	{model.TargetDiskFree, []string{"disk", "storage", "space left", "mount", "partition"}},
	{model.TargetMemory, []string{"memory", "ram", "swap"}},
	{model.TargetKernelVersion, []string{"kernel", "os version", "distro", "distribution"}},
	{model.TargetNetworkStatus, []string{"network", "internet", "connectivity", "wifi", "ethernet", "ip address"}},
	{model.TargetServiceStatus, []string{"service", "systemd", "daemon", "unit"}},
	{model.TargetDiagnose, []string{"wrong", "broken", "slow", "crash", "not working", "problem", "issue", "diagnose"}},
}

// Classify scores question against each target's keyword set and
// returns the first match, with a confidence proportional to how many
// of that target's keywords appeared. A question matching nothing
// classifies as Unknown with confidence 0.
func Classify(question string) model.TargetDetection {
	lower := strings.ToLower(question)

	for _, set := range keywordSets {
		hits := 0
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		confidence := 50 + (hits * 50 / len(set.keywords))
		if confidence > 100 {
			confidence = 100
		}
		return model.TargetDetection{Target: set.target, Confidence: confidence}
	}

	return model.TargetDetection{Target: model.TargetUnknown, Confidence: 0}
}
