package yarn

import (
	"fmt"

	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

// AddBendingProxyTSDAs adds translational spring-dampers as a bending
// resistance proxy. Each spring connects the centers of segments i and i+span
// with rest length span*SegmentLength, resisting sharp folds without removing
// degrees of freedom.
//
// This is not a constitutive yarn model. Per-joint rotational stiffness is
// numerically fragile at sub-centimeter segment sizes with rigid contacts;
// skip-span springs are the cheaper, more stable approximation.
//
// A span of 1 would shadow the existing spherical joints and is rejected.
// Chains no longer than span get no links and no error.
func AddBendingProxyTSDAs(sys engine.System, chain *Chain, span int, springK, dampingC float64) ([]engine.SpringDamper, error) {
	if span < 2 {
		return nil, fmt.Errorf("bending proxy span must be >= 2, got %d", span)
	}
	if len(chain.Segments) <= span {
		return nil, nil
	}

	rest := chain.SegmentLength * float64(span)
	links := make([]engine.SpringDamper, 0, len(chain.Segments)-span)
	for i := 0; i < len(chain.Segments)-span; i++ {
		l := sys.AddTSDA(
			chain.Segments[i], chain.Segments[i+span],
			spatial.Vec3{}, spatial.Vec3{},
			engine.SpringDamperConfig{Rest: rest, Spring: springK, Damping: dampingC},
		)
		links = append(links, l)
	}

	chain.AuxLinks = append(chain.AuxLinks, links...)
	return links, nil
}

// AddBendingRSDAs adds one rotational spring-damper per adjacent segment
// pair, located at the midpoint of the pair's current center positions. Right
// after construction that midpoint is the nominal joint location; once the
// system has stepped, joints may have drifted and the recomputed point tracks
// the live interface instead. Callers augmenting a chain that has already
// evolved should use AddBendingRSDAsAt with the anchor points they want.
func AddBendingRSDAs(sys engine.System, chain *Chain, springK, dampingC, restAngle float64) []engine.SpringDamper {
	if len(chain.Segments) < 2 {
		return nil
	}

	points := make([]spatial.Vec3, 0, len(chain.Segments)-1)
	for i := 1; i < len(chain.Segments); i++ {
		points = append(points, spatial.Midpoint(chain.Segments[i].Pos(), chain.Segments[i-1].Pos()))
	}
	links, _ := AddBendingRSDAsAt(sys, chain, points, springK, dampingC, restAngle)
	return links
}

// AddBendingRSDAsAt is AddBendingRSDAs with explicit anchor points, one per
// adjacent segment pair in chain order.
func AddBendingRSDAsAt(sys engine.System, chain *Chain, points []spatial.Vec3, springK, dampingC, restAngle float64) ([]engine.SpringDamper, error) {
	if len(chain.Segments) < 2 {
		return nil, nil
	}
	if len(points) != len(chain.Segments)-1 {
		return nil, fmt.Errorf("need %d anchor points, got %d", len(chain.Segments)-1, len(points))
	}

	links := make([]engine.SpringDamper, 0, len(points))
	for i := 1; i < len(chain.Segments); i++ {
		l := sys.AddRSDA(
			chain.Segments[i], chain.Segments[i-1],
			points[i-1],
			engine.SpringDamperConfig{Rest: restAngle, Spring: springK, Damping: dampingC},
		)
		links = append(links, l)
	}

	chain.AuxLinks = append(chain.AuxLinks, links...)
	return links, nil
}
