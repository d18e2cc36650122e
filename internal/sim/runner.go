// Package sim advances a built yarn scene through the engine backend and
// records sampled chain state. Construction is someone else's job; the runner
// only steps, watches, and samples.
package sim

import (
	"context"
	"fmt"

	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/scene"
	"github.com/mkraev/yarnsim/internal/yarn"
)

type Runner struct {
	handles   *scene.Handles
	metrics   []Metric
	observers []Observer
}

func New(handles *scene.Handles) *Runner {
	return &Runner{handles: handles}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run advances the scene until cfg.TEnd, sampling every cfg.SampleEveryNStep
// steps. A NaN or Inf segment position aborts the run with a StepError in
// Result.Errors; the samples up to that point are kept.
func (r *Runner) Run(ctx context.Context, cfg config.SimulationConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := int(cfg.TEnd / cfg.Dt)
	result := &Result{
		Samples: make([]Sample, 0, steps/cfg.SampleEveryNStep+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	chain := r.handles.Chain
	result.Samples = append(result.Samples, r.sample(0))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := r.handles.Sys.Step(cfg.Dt); err != nil {
			return result, err
		}
		t := r.handles.Sys.Time()
		result.StepsTaken++

		for _, m := range r.metrics {
			m.Observe(chain, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(chain, t)
		}

		if hasInvalidPositions(chain) {
			result.Errors = append(result.Errors, StepError{
				Time:    t,
				Step:    i,
				Message: "invalid segment position (NaN/Inf)",
			})
			break
		}

		if (i+1)%cfg.SampleEveryNStep == 0 {
			result.Samples = append(result.Samples, r.sample(t))
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// Precheck advances the live scene briefly to catch obvious instability
// before committing to a full run or opening a viewer. The scene continues
// from the post-check state when the check passes.
func (r *Runner) Precheck(seconds, dt float64) error {
	if seconds <= 0 {
		return nil
	}
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", dt)
	}
	steps := int(seconds / dt)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if err := r.handles.Sys.Step(dt); err != nil {
			return err
		}
		if hasInvalidPositions(r.handles.Chain) {
			return StepError{
				Time:    r.handles.Sys.Time(),
				Step:    i,
				Message: "precheck found NaN segment position",
			}
		}
	}
	return nil
}

func (r *Runner) sample(t float64) Sample {
	return Sample{
		Time:      t,
		Positions: yarn.SegmentPositions(r.handles.Chain),
		JointGap:  yarn.MaxNeighborJointGap(r.handles.Chain),
	}
}

func hasInvalidPositions(chain *yarn.Chain) bool {
	for _, seg := range chain.Segments {
		if !seg.Pos().IsValid() {
			return true
		}
	}
	return false
}
