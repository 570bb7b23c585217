// Package pipeline runs an ordered list of steps with fail-fast
// semantics. The order is fixed when the pipeline is built; the first
// failing step aborts the run and nothing after it is invoked.
package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/types"
	"github.com/dominikbraun/graph"
	"github.com/rs/zerolog"
)

// Reporter observes a run. Implementations handle presentation only.
type Reporter interface {
	StepStarted(step types.Step, total int)
	StepSucceeded(step types.Step, elapsed time.Duration)
	StepFailed(step types.Step, err error)
	RunFinished(result types.PipelineResult)
}

// NopReporter ignores every event
type NopReporter struct{}

func (NopReporter) StepStarted(types.Step, int) {}
func (NopReporter) StepSucceeded(types.Step, time.Duration) {}
func (NopReporter) StepFailed(types.Step, error) {}
func (NopReporter) RunFinished(types.PipelineResult) {}

// Pipeline is an immutable ordered sequence of steps
type Pipeline struct {
	steps    []types.Step
	deps     graph.Graph[string, types.Step]
	reporter Reporter
	logger   zerolog.Logger
}

func stepHash(s types.Step) string { return s.Name }

// New validates and freezes the step order. Step names must be non-empty
// and unique; every After reference must name an earlier step.
func New(steps ...types.Step) (*Pipeline, error) {
	g := graph.New(stepHash, graph.Directed(), graph.PreventCycles())

	ordered := make([]types.Step, len(steps))
	ordinals := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.Name == "" {
			return nil, errors.Newf(errors.ErrInvalidStep, "step at position %d has no name", i+1)
		}
		if s.Action == nil {
			return nil, errors.Newf(errors.ErrInvalidStep, "step %q has no action", s.Name).
				WithDetail("step", s.Name)
		}
		s.Ordinal = i + 1
		if err := g.AddVertex(s); err != nil {
			if stderrors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, errors.Newf(errors.ErrDuplicateStep, "duplicate step name %q", s.Name).
					WithDetail("step", s.Name)
			}
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot register step")
		}
		ordinals[s.Name] = s.Ordinal
		ordered[i] = s
	}

	for _, s := range ordered {
		for _, dep := range s.After {
			if err := g.AddEdge(dep, s.Name); err != nil {
				if stderrors.Is(err, graph.ErrVertexNotFound) {
					return nil, errors.Newf(errors.ErrInvalidStep, "step %q depends on unknown step %q", s.Name, dep).
						WithDetail("step", s.Name).WithDetail("after", dep)
				}
				if stderrors.Is(err, graph.ErrEdgeCreatesCycle) {
					return nil, errors.Newf(errors.ErrInvalidStep, "step %q and %q depend on each other", s.Name, dep).
						WithDetail("step", s.Name).WithDetail("after", dep)
				}
				if !stderrors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, errors.Wrap(err, errors.ErrInternal, "cannot register step dependency")
				}
			}
			if ordinals[dep] >= s.Ordinal {
				return nil, errors.Newf(errors.ErrInvalidStep, "step %q must come after %q", s.Name, dep).
					WithDetail("step", s.Name).WithDetail("after", dep)
			}
		}
	}

	return &Pipeline{
		steps:    ordered,
		deps:     g,
		reporter: NopReporter{},
		logger:   logging.GetLogger("pipeline"),
	}, nil
}

// WithReporter sets the reporter and returns the pipeline
func (p *Pipeline) WithReporter(r Reporter) *Pipeline {
	if r == nil {
		r = NopReporter{}
	}
	p.reporter = r
	return p
}

// Steps returns a copy of the ordered steps
func (p *Pipeline) Steps() []types.Step {
	out := make([]types.Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Dependents returns the steps that declared name in their After list
func (p *Pipeline) Dependents(name string) []string {
	adj, err := p.deps.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []string
	for _, s := range p.steps {
		if _, ok := adj[name][s.Name]; ok {
			out = append(out, s.Name)
		}
	}
	return out
}

// Run executes the steps in order and stops at the first failure
func (p *Pipeline) Run(ctx context.Context) types.PipelineResult {
	start := time.Now()
	result := types.PipelineResult{
		State: types.RunInProgress,
		Steps: make([]types.StepRecord, len(p.steps)),
	}
	for i, s := range p.steps {
		result.Steps[i] = types.StepRecord{Name: s.Name, Ordinal: s.Ordinal, State: types.StepPending}
	}

	total := len(p.steps)
	for i, s := range p.steps {
		if err := ctx.Err(); err != nil {
			canceled := errors.Wrapf(err, errors.ErrCanceled, "run interrupted before step %q", s.Name).
				WithDetail("step", s.Name)
			result.Failure = &types.Failure{Step: s.Name, Err: canceled}
			p.logger.Warn().Str("step", s.Name).Msg("Run interrupted")
			break
		}

		rec := &result.Steps[i]
		rec.State = types.StepRunning
		p.reporter.StepStarted(s, total)
		p.logger.Info().Str("step", s.Name).Int("ordinal", s.Ordinal).Msg("Step started")

		stepStart := time.Now()
		err := s.Action(ctx)
		rec.Duration = time.Since(stepStart)

		if err != nil {
			failed := errors.Wrapf(err, errors.ErrStepFailed, "step %q failed", s.Name).
				WithDetail("step", s.Name)
			if status, ok := errors.Detail(err, "exit_status"); ok {
				failed.WithDetail("exit_status", status)
			}
			rec.State = types.StepFailed
			rec.Err = failed
			result.Failure = &types.Failure{Step: s.Name, Err: failed}
			p.logger.Error().Err(err).Str("step", s.Name).Dur("duration", rec.Duration).
				Strs("blocked", p.Dependents(s.Name)).Msg("Step failed")
			p.reporter.StepFailed(s, failed)
			break
		}

		rec.State = types.StepSucceeded
		result.Completed = append(result.Completed, s.Name)
		p.logger.Info().Str("step", s.Name).Dur("duration", rec.Duration).Msg("Step succeeded")
		p.reporter.StepSucceeded(s, rec.Duration)
	}

	if result.Failure != nil {
		result.State = types.RunAborted
		result.Aborted = true
	} else {
		result.State = types.RunCompleted
	}
	result.Duration = time.Since(start)
	p.reporter.RunFinished(result)
	return result
}
