package yarn

import "github.com/mkraev/yarnsim/internal/spatial"

// MaxNeighborJointGap returns the largest distance between the nominally
// coincident tips of neighboring segments: the right tip of segment i-1
// against the left tip of segment i, under each segment's current pose.
//
// In an ideal spherical-joint chain this is zero; after integration a small
// value reflects the solver's constraint error. It is telemetry, not a
// correctness gate. Chains with fewer than two segments report 0.
func MaxNeighborJointGap(chain *Chain) float64 {
	if len(chain.Segments) < 2 || chain.SegmentLength <= 0 {
		return 0
	}

	halfLen := 0.5 * chain.SegmentLength
	maxGap := 0.0
	for i := 1; i < len(chain.Segments); i++ {
		prev := segmentTipWorld(chain.Segments[i-1], +halfLen)
		curr := segmentTipWorld(chain.Segments[i], -halfLen)
		if gap := prev.Sub(curr).Norm(); gap > maxGap {
			maxGap = gap
		}
	}
	return maxGap
}

type tipBody interface {
	Pos() spatial.Vec3
	Rot() spatial.Quat
}

func segmentTipWorld(b tipBody, localY float64) spatial.Vec3 {
	return b.Pos().Add(b.Rot().Rotate(spatial.V(0, localY, 0)))
}

// SegmentPositions snapshots the current segment centers in chain order as
// plain coordinate triples, the serialization boundary between engine state
// and recorded samples.
func SegmentPositions(chain *Chain) [][3]float64 {
	out := make([][3]float64, len(chain.Segments))
	for i, seg := range chain.Segments {
		p := seg.Pos()
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}
