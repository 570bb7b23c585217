package types

import (
	"context"
	"time"
)

// StepAction is the zero-argument mutation a step performs. The context is
// canceled when the operator interrupts the run.
type StepAction func(ctx context.Context) error

// Step is a named entry of a pipeline. Ordinal is assigned when the pipeline
// is constructed and never changes afterwards.
type Step struct {
	Name        string
	Description string
	Action      StepAction
	// After lists steps that must appear earlier in the same pipeline.
	After   []string
	Ordinal int
}

// StepState tracks one step through a run
type StepState string

const (
	StepPending   StepState = "pending"
	StepRunning   StepState = "running"
	StepSucceeded StepState = "succeeded"
	StepFailed    StepState = "failed"
)

// RunState is the state of the run as a whole
type RunState string

const (
	RunInProgress RunState = "in_progress"
	RunCompleted  RunState = "completed"
	RunAborted    RunState = "aborted"
)

// StepRecord is the per-step outcome kept by a run
type StepRecord struct {
	Name     string
	Ordinal  int
	State    StepState
	Duration time.Duration
	Err      error
}

// Failure names the step that aborted a run and why
type Failure struct {
	Step string
	Err  error
}

// PipelineResult is the observable outcome of a single pipeline run
type PipelineResult struct {
	State     RunState
	Steps     []StepRecord
	Completed []string
	Aborted   bool
	Failure   *Failure
	Duration  time.Duration
}

// Err returns the failure diagnostic of an aborted run, nil otherwise
func (r PipelineResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure.Err
}

// Record returns the record for a step name
func (r PipelineResult) Record(name string) (StepRecord, bool) {
	for _, rec := range r.Steps {
		if rec.Name == name {
			return rec, true
		}
	}
	return StepRecord{}, false
}
