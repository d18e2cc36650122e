package yarn

import (
	"math"

	"github.com/mkraev/yarnsim/internal/spatial"
)

const parallelTol = 1e-12

// rotationFromLocalYTo returns the quaternion rotating the local +Y axis onto
// the unit target direction.
//
// Two degenerate inputs are resolved deterministically rather than through
// the generic cross-product path: a target equal to +Y yields the identity,
// and a target equal to -Y yields a half turn about +X. The latter axis choice
// is arbitrary but must be stable so repeated builds produce bit-identical
// orientations.
func rotationFromLocalYTo(target spatial.Vec3) spatial.Quat {
	up := spatial.V(0, 1, 0)

	dot := up.Dot(target)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}

	if dot > 1-parallelTol {
		return spatial.QIdentity
	}
	if dot < -1+parallelTol {
		return spatial.QuatFromAxisAngle(spatial.V(1, 0, 0), math.Pi)
	}

	axis, n := up.Cross(target).Normalize()
	if n <= 0 {
		return spatial.QIdentity
	}
	return spatial.QuatFromAxisAngle(axis, math.Acos(dot))
}

// segmentPlacement computes the left endpoint and center of mass of segment i
// for a chain starting at start and running along the unit direction dir.
// Consecutive indices share an endpoint exactly: the left end of segment i is
// the right end of segment i-1.
func segmentPlacement(start, dir spatial.Vec3, q spatial.Quat, segLen float64, i int) (leftEnd, com spatial.Vec3) {
	leftEnd = start.Add(dir.Scale(float64(i) * segLen))
	com = leftEnd.Add(q.Rotate(spatial.V(0, 0.5*segLen, 0)))
	return leftEnd, com
}
