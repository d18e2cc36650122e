// Package metrics provides run-long reductions over chain state in the
// runner's Metric shape.
package metrics

import (
	"github.com/mkraev/yarnsim/internal/yarn"
)

// JointGap tracks the worst neighbor-tip separation seen during a run, the
// primary constraint-drift telemetry for a chain.
type JointGap struct {
	maxGap  float64
	samples int
}

func NewJointGap() *JointGap { return &JointGap{} }

func (j *JointGap) Name() string { return "max_joint_gap" }

func (j *JointGap) Observe(chain *yarn.Chain, t float64) {
	if gap := yarn.MaxNeighborJointGap(chain); gap > j.maxGap {
		j.maxGap = gap
	}
	j.samples++
}

func (j *JointGap) Value() float64 { return j.maxGap }

func (j *JointGap) Reset() {
	j.maxGap = 0
	j.samples = 0
}
