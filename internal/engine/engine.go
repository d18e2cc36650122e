// Package engine defines the boundary between yarn scene construction and the
// multibody backend that integrates it. Scene builders talk to a System; the
// concrete backend is chosen once, at wiring time, through an explicit Options
// struct. A backend that cannot honor a requested option must reject it when
// constructed instead of silently ignoring it.
package engine

import (
	"fmt"

	"github.com/mkraev/yarnsim/internal/spatial"
)

type ContactModel string

const (
	// NSC is the non-smooth, complementarity-based contact formulation.
	NSC ContactModel = "NSC"
	// SMC is the smooth, penalty/compliance-based contact formulation.
	SMC ContactModel = "SMC"
)

type SolverKind string

const (
	// SolverProjection is an iterative projection solver for joint constraints.
	SolverProjection SolverKind = "projection"
)

// Options carries the backend tuning knobs a caller may request. The set is
// deliberately closed: every field is either honored or rejected by the
// backend constructor.
type Options struct {
	ContactModel  ContactModel
	Envelope      float64 // collision detection envelope, meters
	Margin        float64 // collision shape inward margin, meters
	ThreadCount   int
	SolverKind    SolverKind
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions mirrors the tuning used by the falling-yarn scenarios:
// NSC contact, single thread, tight tolerances for long chains.
func DefaultOptions() Options {
	return Options{
		ContactModel:  NSC,
		Envelope:      0.003,
		Margin:        0.002,
		ThreadCount:   1,
		SolverKind:    SolverProjection,
		MaxIterations: 300,
		Tolerance:     1e-10,
	}
}

func (o Options) Validate() error {
	switch o.ContactModel {
	case NSC, SMC:
	default:
		return fmt.Errorf("unsupported contact model %q", o.ContactModel)
	}
	if o.Envelope < 0 || o.Margin < 0 {
		return fmt.Errorf("collision envelope/margin must be >= 0, got %g/%g", o.Envelope, o.Margin)
	}
	if o.ThreadCount <= 0 {
		return fmt.Errorf("thread count must be positive, got %d", o.ThreadCount)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("solver iterations must be positive, got %d", o.MaxIterations)
	}
	if o.Tolerance <= 0 {
		return fmt.Errorf("solver tolerance must be positive, got %g", o.Tolerance)
	}
	return nil
}

// ShapeKind enumerates the visual primitives a backend must support.
type ShapeKind int

const (
	ShapeCylinder ShapeKind = iota
	ShapeSphere
	ShapeBox
)

type Color struct {
	R, G, B float64
}

// VisualShape is a display-only primitive attached to a body at a local
// offset. Cylinders extend along the body local Y axis.
type VisualShape struct {
	Kind        ShapeKind
	Radius      float64      // cylinder and sphere
	HalfLen     float64      // cylinder half length along local Y
	HalfExtents spatial.Vec3 // box
	Offset      spatial.Vec3 // local frame offset
	Color       Color
}

// Body is a non-owning handle to a rigid body registered in a System. After
// construction its pose evolves only under the backend's stepping.
type Body interface {
	Pos() spatial.Vec3
	SetPos(spatial.Vec3)
	Rot() spatial.Quat
	SetRot(spatial.Quat)
	LinVel() spatial.Vec3
	SetLinVel(spatial.Vec3)

	SetMass(float64)
	Mass() float64
	// SetInertia sets the diagonal of the body-frame inertia tensor.
	SetInertia(spatial.Vec3)

	SetFixed(bool)
	Fixed() bool

	AddVisualShape(VisualShape)

	// SetCollisionBox enables collision with an axis-aligned box in the body
	// local frame. A nil material disables collision for the body.
	SetCollisionBox(mat *ContactMaterial, halfExtents spatial.Vec3)
	DisableCollision()
	Collidable() bool
	// SetCollisionFamily assigns the body to a family and a bitmask of
	// families it collides with (family f collides iff mask has bit f set).
	SetCollisionFamily(family int, mask uint32)
}

// Joint is a handle to a spherical constraint between two bodies.
type Joint interface {
	Bodies() (Body, Body)
	// Anchor returns the world point the constraint was initialized at.
	Anchor() spatial.Vec3
}

type LinkKind int

const (
	LinkTSDA LinkKind = iota // translational spring-damper
	LinkRSDA                 // rotational spring-damper
)

// SpringDamperConfig parameterizes a soft force element. Rest is a length for
// TSDA links and an angle in radians for RSDA links.
type SpringDamperConfig struct {
	Rest    float64
	Spring  float64
	Damping float64
}

// SpringDamper is a handle to a soft force element. It never removes degrees
// of freedom.
type SpringDamper interface {
	Kind() LinkKind
	Bodies() (Body, Body)
	Config() SpringDamperConfig
}

// System is one backend world: a body collection plus constraint and force
// element registries advanced by Step. Implementations are not safe for
// concurrent use; construction and stepping are single-threaded by contract.
type System interface {
	// NewBody creates a body and registers it with the system.
	NewBody() Body

	// AddBallJoint constrains two bodies to share the given world point,
	// leaving relative rotation free.
	AddBallJoint(a, b Body, point spatial.Vec3) Joint

	// AddTSDA attaches a translational spring-damper between body-local
	// anchor points.
	AddTSDA(a, b Body, localA, localB spatial.Vec3, cfg SpringDamperConfig) SpringDamper

	// AddRSDA attaches a rotational spring-damper located at a world point.
	AddRSDA(a, b Body, point spatial.Vec3, cfg SpringDamperConfig) SpringDamper

	SetGravity(spatial.Vec3)
	Gravity() spatial.Vec3

	// Step advances the world by dt seconds.
	Step(dt float64) error
	Time() float64

	NumBodies() int
	NumLinks() int
}
