// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"sync"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

const generateLabel = "Generating download file"

// Tracker holds the progress state of one conversion run. It is safe for
// concurrent use. The observer, when set, receives a snapshot after every
// change.
type Tracker struct {
	mu       sync.Mutex
	steps    []types.ProcessingStep
	observer func([]types.ProcessingStep)
}

// NewTracker returns a tracker with the analyze and generate steps, both
// pending.
func NewTracker(analyzeLabel string, observer func([]types.ProcessingStep)) *Tracker {
	return &Tracker{
		steps: []types.ProcessingStep{
			{ID: types.StepAnalyze, Label: analyzeLabel, Status: types.StepPending},
			{ID: types.StepGenerate, Label: generateLabel, Status: types.StepPending},
		},
		observer: observer,
	}
}

// Update sets the status of the step with the given id.
func (t *Tracker) Update(id string, status types.StepStatus) error {
	t.mu.Lock()
	found := false
	for i := range t.steps {
		if t.steps[i].ID == id {
			t.steps[i].Status = status
			found = true
			break
		}
	}
	snap := t.snapshot()
	t.mu.Unlock()

	if !found {
		return fmt.Errorf("unknown step %q", id)
	}
	t.notify(snap)
	return nil
}

// Reset returns every step to pending.
func (t *Tracker) Reset() {
	t.apply(func(s *types.ProcessingStep) { s.Status = types.StepPending })
}

// FailLoading marks every step that is still loading as failed.
func (t *Tracker) FailLoading() {
	t.apply(func(s *types.ProcessingStep) {
		if s.Status == types.StepLoading {
			s.Status = types.StepError
		}
	})
}

// Steps returns a copy of the current steps.
func (t *Tracker) Steps() []types.ProcessingStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// Active reports whether any step has left the pending state.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.steps {
		if s.Status != types.StepPending {
			return true
		}
	}
	return false
}

func (t *Tracker) apply(fn func(*types.ProcessingStep)) {
	t.mu.Lock()
	for i := range t.steps {
		fn(&t.steps[i])
	}
	snap := t.snapshot()
	t.mu.Unlock()
	t.notify(snap)
}

// snapshot must be called with mu held.
func (t *Tracker) snapshot() []types.ProcessingStep {
	out := make([]types.ProcessingStep, len(t.steps))
	copy(out, t.steps)
	return out
}

func (t *Tracker) notify(steps []types.ProcessingStep) {
	if t.observer != nil {
		t.observer(steps)
	}
}
