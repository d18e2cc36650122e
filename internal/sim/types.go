package sim

import (
	"fmt"

	"github.com/mkraev/yarnsim/internal/yarn"
)

// Sample is recorded chain state at one time instant, kept as plain values so
// results can be stored and compared without engine handles.
type Sample struct {
	Time      float64
	Positions [][3]float64
	JointGap  float64
}

// Result accumulates the samples and metric values of one run.
type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Metric observes chain state during a run and reduces it to one value.
type Metric interface {
	Name() string
	Observe(chain *yarn.Chain, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every solver step.
type Observer interface {
	OnStep(chain *yarn.Chain, t float64)
}

// StepError reports a failure at a specific point of a run.
type StepError struct {
	Time    float64
	Step    int
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
