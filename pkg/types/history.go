// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus is the final outcome of a conversion run.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "completed"
	ConversionFailed ConversionStatus = "error"
)

// ConversionRecord is the persisted history entry for one conversion run.
type ConversionRecord struct {
	// ID is a random UUID assigned when the run starts.
	ID string `json:"id" yaml:"id"`

	// FileName is the input file name as given by the user.
	FileName string `json:"file_name" yaml:"file_name"`

	// FileSize is the input size in bytes.
	FileSize int64 `json:"file_size" yaml:"file_size"`

	Format   OutputFormat `json:"format" yaml:"format"`
	Analyzer string       `json:"analyzer" yaml:"analyzer"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// Error holds the failure message when Status is ConversionFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	OutputName string `json:"output_name,omitempty" yaml:"output_name,omitempty"`
	OutputSize int64  `json:"output_size,omitempty" yaml:"output_size,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the run took.
func (r ConversionRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
