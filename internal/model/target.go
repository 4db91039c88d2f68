// Package model holds the data types shared across the Answer Pipeline:
// query targets, evidence, coverage, facts, skills, actions, episodes,
// backups, and transcript events. Types are plain structs with string-typed
// enums, matching the rest of the pipeline's closed-variant style.
package model

// QueryTarget is a coarse classification of user intent, detected from
// the question text with a per-class confidence score.
type QueryTarget string

const (
	TargetDiskFree       QueryTarget = "disk_free"
	TargetMemory         QueryTarget = "memory"
	TargetKernelVersion  QueryTarget = "kernel_version"
	TargetNetworkStatus  QueryTarget = "network_status"
	TargetServiceStatus  QueryTarget = "service_status"
	TargetDiagnose       QueryTarget = "diagnose"
	TargetActionRequest  QueryTarget = "action_request"
	TargetUnknown        QueryTarget = "unknown"
)

// TargetDetection is the result of classifying a question into a QueryTarget.
type TargetDetection struct {
	Target     QueryTarget
	Confidence int // 0-100
}

// Valid reports whether t is one of the closed set of query targets.
func (t QueryTarget) Valid() bool {
	switch t {
	case TargetDiskFree, TargetMemory, TargetKernelVersion, TargetNetworkStatus,
		TargetServiceStatus, TargetDiagnose, TargetActionRequest, TargetUnknown:
		return true
	default:
		return false
	}
}
