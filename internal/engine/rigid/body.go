package rigid

import (
	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

type body struct {
	pos spatial.Vec3
	rot spatial.Quat

	linVel spatial.Vec3
	angVel spatial.Vec3

	// pose at the start of the current step, used to recover velocities
	// after constraint projection
	prevPos spatial.Vec3
	prevRot spatial.Quat

	mass       float64
	invMass    float64
	inertia    spatial.Vec3 // body-frame diagonal
	invInertia spatial.Vec3

	fixed bool

	collide  bool
	colHalf  spatial.Vec3
	material *engine.ContactMaterial
	family   int
	mask     uint32

	visuals []engine.VisualShape

	force  spatial.Vec3
	torque spatial.Vec3
}

func newBody() *body {
	return &body{
		rot:        spatial.QIdentity,
		mass:       1,
		invMass:    1,
		inertia:    spatial.V(1, 1, 1),
		invInertia: spatial.V(1, 1, 1),
		family:     0,
		mask:       ^uint32(0),
	}
}

func (b *body) Pos() spatial.Vec3     { return b.pos }
func (b *body) SetPos(p spatial.Vec3) { b.pos = p }
func (b *body) Rot() spatial.Quat     { return b.rot }
func (b *body) SetRot(q spatial.Quat) { b.rot = q }

func (b *body) LinVel() spatial.Vec3     { return b.linVel }
func (b *body) SetLinVel(v spatial.Vec3) { b.linVel = v }

func (b *body) Mass() float64 { return b.mass }
func (b *body) SetMass(m float64) {
	b.mass = m
	if m > 0 {
		b.invMass = 1 / m
	} else {
		b.invMass = 0
	}
}

func (b *body) SetInertia(diag spatial.Vec3) {
	b.inertia = diag
	inv := spatial.Vec3{}
	if diag.X > 0 {
		inv.X = 1 / diag.X
	}
	if diag.Y > 0 {
		inv.Y = 1 / diag.Y
	}
	if diag.Z > 0 {
		inv.Z = 1 / diag.Z
	}
	b.invInertia = inv
}

func (b *body) SetFixed(fixed bool) { b.fixed = fixed }
func (b *body) Fixed() bool         { return b.fixed }

func (b *body) AddVisualShape(s engine.VisualShape) {
	b.visuals = append(b.visuals, s)
}

func (b *body) SetCollisionBox(mat *engine.ContactMaterial, halfExtents spatial.Vec3) {
	if mat == nil {
		b.DisableCollision()
		return
	}
	b.collide = true
	b.material = mat
	b.colHalf = halfExtents
}

func (b *body) DisableCollision() {
	b.collide = false
	b.material = nil
}

func (b *body) Collidable() bool { return b.collide }

func (b *body) SetCollisionFamily(family int, mask uint32) {
	b.family = family
	b.mask = mask
}

// effective inverse mass for constraint math; a fixed body does not move
func (b *body) constraintInvMass() float64 {
	if b.fixed {
		return 0
	}
	return b.invMass
}

// invInertiaWorld applies the world-frame inverse inertia tensor to v,
// treating the inertia as diagonal in the body frame.
func (b *body) invInertiaWorld(v spatial.Vec3) spatial.Vec3 {
	if b.fixed {
		return spatial.Vec3{}
	}
	local := b.rot.Conj().Rotate(v)
	local = spatial.Vec3{
		X: local.X * b.invInertia.X,
		Y: local.Y * b.invInertia.Y,
		Z: local.Z * b.invInertia.Z,
	}
	return b.rot.Rotate(local)
}

func (b *body) toWorld(local spatial.Vec3) spatial.Vec3 {
	return b.pos.Add(b.rot.Rotate(local))
}

func (b *body) addForceAt(f, worldPoint spatial.Vec3) {
	b.force = b.force.Add(f)
	r := worldPoint.Sub(b.pos)
	b.torque = b.torque.Add(r.Cross(f))
}
