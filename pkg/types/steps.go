// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StepStatus is the state of one processing step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepLoading   StepStatus = "loading"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// Step identifiers, in execution order.
const (
	StepAnalyze  = "analyze"
	StepGenerate = "generate"
)

// ProcessingStep is one entry of the progress indicator.
type ProcessingStep struct {
	ID     string     `json:"id" yaml:"id"`
	Label  string     `json:"label" yaml:"label"`
	Status StepStatus `json:"status" yaml:"status"`
}
