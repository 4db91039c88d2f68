// Package coverage maps a query target to the probes required to
// answer it and scores how completely a collected evidence set
// satisfies that requirement, per spec.md §4.3.
package coverage

import (
	"sort"

	"anna.local/annad/internal/model"
)

// requirement pairs a target with its ordered required probes and the
// topic set evidence must belong to, to avoid being flagged mismatched.
type requirement struct {
	probes        []string
	allowedTopics map[string]struct{}
}

var requirements = map[model.QueryTarget]requirement{
	model.TargetDiskFree: {
		probes:        []string{"mount_usage", "block_devices"},
		allowedTopics: topics("disk"),
	},
	model.TargetMemory: {
		probes:        []string{"mem_info"},
		allowedTopics: topics("memory"),
	},
	model.TargetKernelVersion: {
		probes:        []string{"kernel_version", "os_release"},
		allowedTopics: topics("kernel", "os"),
	},
	model.TargetNetworkStatus: {
		probes:        []string{"network_links"},
		allowedTopics: topics("network"),
	},
	model.TargetServiceStatus: {
		probes:        []string{"failed_units"},
		allowedTopics: topics("services"),
	},
	model.TargetDiagnose: {
		probes:        []string{"failed_units", "mount_usage", "mem_info", "network_links"},
		allowedTopics: topics("services", "disk", "memory", "network"),
	},
	model.TargetActionRequest: {
		probes:        []string{},
		allowedTopics: topics(),
	},
	model.TargetUnknown: {
		probes:        []string{},
		allowedTopics: topics(),
	},
}

func topics(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// RequiredProbes returns the ordered probe ids required for target.
func RequiredProbes(target model.QueryTarget) []string {
	req, ok := requirements[target]
	if !ok {
		return nil
	}
	out := make([]string, len(req.probes))
	copy(out, req.probes)
	return out
}

// Score computes a Coverage record for target given the evidence
// gathered so far. Per spec.md's testable property 7:
// EvidenceCoverage(target, {}) → 0% for any target with non-empty
// required probes; EvidenceCoverage(Unknown, *) → 100%.
func Score(target model.QueryTarget, evidence []model.Evidence) model.Coverage {
	req, ok := requirements[target]
	if !ok || len(req.probes) == 0 {
		return model.Coverage{
			Target:          target,
			RequiredProbes:  nil,
			CoveragePercent: 100,
			IsSufficient:    true,
		}
	}

	satisfiedSet := make(map[string]struct{})
	var mismatched []model.Evidence
	for _, ev := range evidence {
		if !ev.Success {
			continue
		}
		if _, allowed := req.allowedTopics[ev.Topic]; !allowed && ev.Topic != "" {
			mismatched = append(mismatched, ev)
			continue
		}
		satisfiedSet[ev.ProbeID] = struct{}{}
	}

	var satisfied, missing []string
	for _, p := range req.probes {
		if _, ok := satisfiedSet[p]; ok {
			satisfied = append(satisfied, p)
		} else {
			missing = append(missing, p)
		}
	}
	sort.Strings(satisfied)
	sort.Strings(missing)

	percent := 0
	if len(req.probes) > 0 {
		percent = (len(satisfied) * 100) / len(req.probes)
	}

	return model.Coverage{
		Target:              target,
		RequiredProbes:      req.probes,
		SatisfiedProbes:     satisfied,
		CoveragePercent:     percent,
		IsSufficient:        percent == 100,
		MissingProbes:       missing,
		MismatchedEvidence:  mismatched,
	}
}

// GapFillingTools returns a deterministically ordered set of probe ids
// that would raise coverage if run, for scheduling a second probe
// round when the budget allows.
func GapFillingTools(cov model.Coverage) []string {
	out := make([]string, len(cov.MissingProbes))
	copy(out, cov.MissingProbes)
	sort.Strings(out)
	return out
}
