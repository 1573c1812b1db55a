// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one PDF through analysis and file generation while
// tracking step progress and recording the outcome.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sathanbabu-png/PDFConverter/internal/analyze"
	"github.com/sathanbabu-png/PDFConverter/internal/export"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// ErrNotPDF is returned when the input is not identified as a PDF.
var ErrNotPDF = errors.New("please select a valid PDF file")

// Recorder persists the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// StepError reports which step a run failed in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// Result is the generated file together with the final step states.
type Result struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
	Steps    []types.ProcessingStep
}

// Pipeline converts PDFs with a single analyzer. A Pipeline holds no
// per-run state and may be shared by concurrent callers.
type Pipeline struct {
	Analyzer analyze.Analyzer

	// Recorder, when set, receives a record for every run that passes input
	// validation.
	Recorder Recorder

	// Observer, when set, is called on every step change.
	Observer func(steps []types.ProcessingStep)

	// OnRecordError, when set, is called if the Recorder fails. A recording
	// failure never fails the conversion.
	OnRecordError func(error)

	now func() time.Time
}

// New returns a pipeline for the given analyzer.
func New(a analyze.Analyzer, rec Recorder) *Pipeline {
	return &Pipeline{Analyzer: a, Recorder: rec}
}

// DetectType sniffs the content type of data.
func DetectType(data []byte) string {
	return http.DetectContentType(data)
}

// Run validates the input, then analyzes and generates the output file.
// When Type is empty it is sniffed from data. On failure the returned Result
// still carries the ID and the step states.
func (p *Pipeline) Run(ctx context.Context, info types.FileInfo, data []byte, format types.OutputFormat) (Result, error) {
	if !format.Valid() {
		return Result{}, fmt.Errorf("unsupported output format %q", format)
	}
	if info.Type == "" {
		info.Type = DetectType(data)
	}
	if info.Size == 0 {
		info.Size = int64(len(data))
	}
	if !info.IsPDF() || len(data) == 0 {
		return Result{}, ErrNotPDF
	}

	tracker := NewTracker(p.Analyzer.Label(), p.Observer)
	tracker.Reset()

	res := Result{ID: uuid.NewString()}
	rec := types.ConversionRecord{
		ID:        res.ID,
		FileName:  info.Name,
		FileSize:  info.Size,
		Format:    format,
		Analyzer:  p.Analyzer.Name(),
		StartedAt: p.clock(),
	}

	out, name, err := p.run(ctx, tracker, data, info.Name, format)
	res.Steps = tracker.Steps()
	rec.FinishedAt = p.clock()

	if err != nil {
		rec.Status = types.ConversionFailed
		rec.Error = err.Error()
		p.record(ctx, rec)
		return res, err
	}

	res.Name = name
	res.MimeType = format.MimeType()
	res.Data = out

	rec.Status = types.ConversionDone
	rec.OutputName = name
	rec.OutputSize = int64(len(out))
	p.record(ctx, rec)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, t *Tracker, data []byte, name string, format types.OutputFormat) ([]byte, string, error) {
	fail := func(step string, err error) ([]byte, string, error) {
		t.FailLoading()
		return nil, "", &StepError{Step: step, Err: err}
	}

	t.Update(types.StepAnalyze, types.StepLoading)
	extracted, err := p.Analyzer.Analyze(ctx, data, format)
	if err != nil {
		return fail(types.StepAnalyze, err)
	}
	t.Update(types.StepAnalyze, types.StepCompleted)

	t.Update(types.StepGenerate, types.StepLoading)
	if err := ctx.Err(); err != nil {
		return fail(types.StepGenerate, err)
	}
	var buf bytes.Buffer
	if err := export.Write(extracted, format, &buf); err != nil {
		return fail(types.StepGenerate, err)
	}
	t.Update(types.StepGenerate, types.StepCompleted)

	return buf.Bytes(), export.FileName(name, format), nil
}

func (p *Pipeline) record(ctx context.Context, rec types.ConversionRecord) {
	if p.Recorder == nil {
		return
	}
	// The run's context may already be cancelled; the outcome is still kept.
	if err := p.Recorder.Record(context.WithoutCancel(ctx), rec); err != nil && p.OnRecordError != nil {
		p.OnRecordError(fmt.Errorf("recording conversion %s: %w", rec.ID, err))
	}
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now().UTC()
}
