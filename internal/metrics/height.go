package metrics

import (
	"math"

	"github.com/mkraev/yarnsim/internal/yarn"
)

// MinHeight records the lowest segment center seen during a run. Useful for
// checking when and how far a dropped chain reaches the floor.
type MinHeight struct {
	min     float64
	samples int
}

func NewMinHeight() *MinHeight {
	return &MinHeight{min: math.Inf(1)}
}

func (m *MinHeight) Name() string { return "min_height" }

func (m *MinHeight) Observe(chain *yarn.Chain, t float64) {
	for _, seg := range chain.Segments {
		if y := seg.Pos().Y; y < m.min {
			m.min = y
		}
	}
	m.samples++
}

func (m *MinHeight) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinHeight) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}
