package yarn

import (
	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

// Chain holds non-owning handles to the engine objects created for one yarn
// chain. The bodies and links themselves live in the engine system.
type Chain struct {
	Segments []engine.Body
	Joints   []engine.Joint
	AuxLinks []engine.SpringDamper

	// SegmentLength is the nominal rest length of one segment, cached for
	// diagnostics.
	SegmentLength float64
}

// BuildChain builds a free or anchored yarn chain from short rigid segments.
//
// Every segment body and joint is registered into sys. All configuration
// validation happens before the first engine-side entity is created, so a
// returned error never leaves a half-built chain in the system.
//
// mat is the contact material for segment collision, or nil for visual-only
// segments. anchor, when non-nil, is spherical-jointed to the first segment
// at the chain start point. With fixedSegments every segment is pinned in
// place and no joints are created; that is a complete result, used for static
// layout inspection.
func BuildChain(sys engine.System, cfg config.YarnConfig, mat *engine.ContactMaterial, anchor engine.Body, fixedSegments bool) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir, _ := spatial.V(cfg.StartDirection[0], cfg.StartDirection[1], cfg.StartDirection[2]).Normalize()
	q := rotationFromLocalYTo(dir)

	start := spatial.V(cfg.StartPosition[0], cfg.StartPosition[1], cfg.StartPosition[2])
	segLen := cfg.SegmentLength()
	halfLen := 0.5 * segLen

	chain := &Chain{SegmentLength: segLen}

	for i := 0; i < cfg.SegmentCount; i++ {
		denom := cfg.SegmentCount - 1
		if denom < 1 {
			denom = 1
		}
		c := 0.20 + 0.60*float64(i)/float64(denom)
		seg := AddSegmentCapsule(sys, halfLen, cfg.Radius, cfg.Density, mat, engine.Color{R: c, G: 0.55, B: 0.86})

		_, com := segmentPlacement(start, dir, q, segLen, i)
		seg.SetPos(com)
		seg.SetRot(q)
		seg.SetFixed(fixedSegments)
		chain.Segments = append(chain.Segments, seg)
	}

	if fixedSegments {
		return chain, nil
	}

	for i := 1; i < cfg.SegmentCount; i++ {
		p := start.Add(dir.Scale(float64(i) * segLen))
		joint := sys.AddBallJoint(chain.Segments[i], chain.Segments[i-1], p)
		chain.Joints = append(chain.Joints, joint)
	}

	if anchor != nil {
		joint := sys.AddBallJoint(chain.Segments[0], anchor, start)
		chain.Joints = append(chain.Joints, joint)
	}

	return chain, nil
}
