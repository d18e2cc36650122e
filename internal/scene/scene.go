// Package scene assembles runnable yarn scenarios from configuration: an
// engine system, a floor, an optional anchor, the segmented chain, and the
// optional bending-compliance layers.
package scene

import (
	"fmt"

	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/engine/rigid"
	"github.com/mkraev/yarnsim/internal/spatial"
	"github.com/mkraev/yarnsim/internal/yarn"
)

// Collision family assignments for the falling-yarn scenes. Yarn segments
// collide with the floor but not with each other; with many millimeter-scale
// segments, dense self-contacts cause jitter and locking.
const (
	familyFloor = 1
	familyYarn  = 2
)

// Handles references the objects a runner needs to step and record a scene.
type Handles struct {
	Sys    engine.System
	Floor  engine.Body
	Anchor engine.Body
	Chain  *yarn.Chain
}

// Build constructs the falling-yarn scene described by cfg. All configuration
// is validated before any engine entity is created.
func Build(cfg *config.Config) (*Handles, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := engine.DefaultOptions()
	opts.ContactModel = engine.ContactModel(cfg.Sim.ContactModel)
	opts.Envelope = cfg.Sim.Solver.CollisionEnvelope
	opts.Margin = cfg.Sim.Solver.CollisionMargin
	opts.MaxIterations = cfg.Sim.Solver.MaxIterations
	opts.Tolerance = cfg.Sim.Solver.Tolerance
	if !cfg.Sim.Solver.SingleThread {
		// the reference backend rejects this; a multithreaded engine adapter
		// would accept it
		opts.ThreadCount = 0
	}

	sys, err := rigid.New(opts)
	if err != nil {
		return nil, err
	}
	g := cfg.Sim.Gravity
	sys.SetGravity(spatial.V(g[0], g[1], g[2]))

	var segMat *engine.ContactMaterial
	var floorMat *engine.ContactMaterial
	if cfg.Scene.Collision {
		segMat, err = engine.MaterialFor(opts.ContactModel, cfg.Scene.Friction, cfg.Scene.Restitution)
		if err != nil {
			return nil, err
		}
		floorMat, err = engine.MaterialFor(opts.ContactModel, cfg.Floor.Friction, cfg.Floor.Restitution)
		if err != nil {
			return nil, err
		}
	}

	floor := yarn.AddFloorBox(
		sys,
		spatial.V(cfg.Floor.HalfSize[0], cfg.Floor.HalfSize[1], cfg.Floor.HalfSize[2]),
		spatial.V(cfg.Floor.Position[0], cfg.Floor.Position[1], cfg.Floor.Position[2]),
		floorMat,
		engine.Color{R: 0.65, G: 0.65, B: 0.68},
	)

	var anchor engine.Body
	if cfg.Scene.AnchorFirst && !cfg.Scene.FixedSegments {
		// invisible fixed body pinning the chain's first endpoint in space
		anchor = sys.NewBody()
		anchor.SetFixed(true)
		anchor.DisableCollision()
		p := cfg.Yarn.StartPosition
		anchor.SetPos(spatial.V(p[0], p[1], p[2]))
	}

	chain, err := yarn.BuildChain(sys, cfg.Yarn, segMat, anchor, cfg.Scene.FixedSegments)
	if err != nil {
		return nil, err
	}

	if cfg.Scene.Collision && !cfg.Scene.SelfCollision {
		configureCollisionFamilies(floor, chain.Segments)
	}

	if cfg.Bending.RSDA && !cfg.Scene.FixedSegments {
		k, c := EffectiveRSDAParams(cfg.Bending, cfg.Yarn.SegmentCount)
		yarn.AddBendingRSDAs(sys, chain, k, c, cfg.Bending.RSDARestAngle)
	}
	if cfg.Bending.Proxy && !cfg.Scene.FixedSegments {
		if _, err := yarn.AddBendingProxyTSDAs(sys, chain, cfg.Bending.ProxySpan, cfg.Bending.ProxyK, cfg.Bending.ProxyC); err != nil {
			return nil, fmt.Errorf("bending proxy: %w", err)
		}
	}

	return &Handles{Sys: sys, Floor: floor, Anchor: anchor, Chain: chain}, nil
}

// configureCollisionFamilies keeps floor-yarn contact while disabling
// yarn-yarn self-collision, adjacent pairs included.
func configureCollisionFamilies(floor engine.Body, segments []engine.Body) {
	if floor == nil || len(segments) == 0 {
		return
	}
	floor.SetCollisionFamily(familyFloor, 1<<familyYarn)
	for _, seg := range segments {
		seg.SetCollisionFamily(familyYarn, 1<<familyFloor)
	}
}

// EffectiveRSDAParams returns bending damper coefficients adjusted for
// discretization. At fixed total length, finer chains are far more sensitive
// to the same per-joint coefficients, so the reference values are weakened by
// a cubic factor of the segment-count ratio. The scale never exceeds 1: a
// coarser chain keeps the configured base values rather than stiffening.
func EffectiveRSDAParams(b config.BendingConfig, segmentCount int) (springK, dampingC float64) {
	if !b.AutoScale || segmentCount <= 0 || b.RefSegmentCount <= 0 {
		return b.RSDAK, b.RSDAC
	}
	ratio := float64(b.RefSegmentCount) / float64(segmentCount)
	scale := ratio * ratio * ratio
	if scale > 1 {
		scale = 1
	}
	return b.RSDAK * scale, b.RSDAC * scale
}
