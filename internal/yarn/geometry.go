// Package yarn builds discretized yarn approximations: chains of short rigid
// capsule segments connected by spherical joints, with optional soft
// bending-compliance layers and drift diagnostics. All bodies and links are
// registered into a caller-supplied engine system; the package keeps
// non-owning handles only.
package yarn

import (
	"math"

	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

// AddSegmentCapsule creates and registers one rigid yarn segment. The segment
// is a capsule along the body local Y axis: a cylinder of half length halfLen
// plus two end spheres of the given radius. Mass and inertia use the
// closed-form capsule model with the caps treated as full spheres.
//
// Collision, when mat is non-nil, uses a box of half extents
// (radius, halfLen+radius, radius) in the local frame. This understates the
// roundness of the capsule but is stable at sub-centimeter segment sizes; the
// visual and mass models stay capsule-accurate regardless.
//
// Input ranges are the chain builder's responsibility; this factory does not
// re-validate them.
func AddSegmentCapsule(sys engine.System, halfLen, radius, density float64, mat *engine.ContactMaterial, color engine.Color) engine.Body {
	totalLen := 2*halfLen + 2*radius
	volCyl := math.Pi * radius * radius * (2 * halfLen)
	volSph := (4.0 / 3.0) * math.Pi * radius * radius * radius
	mass := math.Max(1e-6, density*(volCyl+volSph))

	iXZ := (1.0/12.0)*mass*(totalLen*totalLen) + 0.25*mass*(radius*radius)
	iY := 0.5 * mass * (radius * radius)

	body := sys.NewBody()
	body.SetMass(mass)
	body.SetInertia(spatial.V(iXZ, iY, iXZ))

	body.AddVisualShape(engine.VisualShape{
		Kind:    engine.ShapeCylinder,
		Radius:  radius,
		HalfLen: halfLen,
		Color:   color,
	})
	body.AddVisualShape(engine.VisualShape{
		Kind:   engine.ShapeSphere,
		Radius: radius,
		Offset: spatial.V(0, +halfLen, 0),
		Color:  color,
	})
	body.AddVisualShape(engine.VisualShape{
		Kind:   engine.ShapeSphere,
		Radius: radius,
		Offset: spatial.V(0, -halfLen, 0),
		Color:  color,
	})

	if mat == nil {
		body.DisableCollision()
	} else {
		body.SetCollisionBox(mat, spatial.V(radius, halfLen+radius, radius))
	}

	return body
}

// AddFloorBox creates and registers a fixed box floor with visual and, when a
// material is supplied, collision geometry.
func AddFloorBox(sys engine.System, halfSize, position spatial.Vec3, mat *engine.ContactMaterial, color engine.Color) engine.Body {
	body := sys.NewBody()
	body.SetFixed(true)
	body.SetPos(position)

	body.AddVisualShape(engine.VisualShape{
		Kind:        engine.ShapeBox,
		HalfExtents: halfSize,
		Color:       color,
	})

	if mat == nil {
		body.DisableCollision()
	} else {
		body.SetCollisionBox(mat, halfSize)
	}

	return body
}
