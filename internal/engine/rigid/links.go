package rigid

import (
	"math"

	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

type ballJoint struct {
	a, b   *body
	anchor spatial.Vec3 // world point at initialization
	localA spatial.Vec3
	localB spatial.Vec3
}

func (j *ballJoint) Bodies() (engine.Body, engine.Body) { return j.a, j.b }
func (j *ballJoint) Anchor() spatial.Vec3               { return j.anchor }

// project removes the positional error between the joint anchor frames using
// generalized inverse masses, moving and rotating both bodies. Returns the
// residual separation before the correction.
func (j *ballJoint) project() float64 {
	pa := j.a.toWorld(j.localA)
	pb := j.b.toWorld(j.localB)
	d := pb.Sub(pa)
	n, dist := d.Normalize()
	if dist <= 0 {
		return 0
	}

	ra := pa.Sub(j.a.pos)
	rb := pb.Sub(j.b.pos)

	wa := j.a.constraintInvMass() + ra.Cross(n).Dot(j.a.invInertiaWorld(ra.Cross(n)))
	wb := j.b.constraintInvMass() + rb.Cross(n).Dot(j.b.invInertiaWorld(rb.Cross(n)))
	w := wa + wb
	if w <= 0 {
		return dist
	}
	lambda := dist / w

	corr := n.Scale(lambda)
	if !j.a.fixed {
		j.a.pos = j.a.pos.Add(corr.Scale(j.a.constraintInvMass()))
		j.a.applyRotationDelta(j.a.invInertiaWorld(ra.Cross(corr)))
	}
	if !j.b.fixed {
		j.b.pos = j.b.pos.Sub(corr.Scale(j.b.constraintInvMass()))
		j.b.applyRotationDelta(j.b.invInertiaWorld(rb.Cross(corr)).Scale(-1))
	}
	return dist
}

// applyRotationDelta rotates the body by a small rotation vector.
func (b *body) applyRotationDelta(w spatial.Vec3) {
	b.rot = b.rot.Integrate(w, 1)
}

type springDamper struct {
	kind engine.LinkKind
	a, b *body
	cfg  engine.SpringDamperConfig

	// TSDA anchors in each body's local frame
	localA spatial.Vec3
	localB spatial.Vec3

	// RSDA location, world frame at initialization
	point spatial.Vec3
}

func (s *springDamper) Kind() engine.LinkKind              { return s.kind }
func (s *springDamper) Bodies() (engine.Body, engine.Body) { return s.a, s.b }
func (s *springDamper) Config() engine.SpringDamperConfig  { return s.cfg }

func (s *springDamper) accumulate() {
	switch s.kind {
	case engine.LinkTSDA:
		s.accumulateTSDA()
	case engine.LinkRSDA:
		s.accumulateRSDA()
	}
}

func (s *springDamper) accumulateTSDA() {
	pa := s.a.toWorld(s.localA)
	pb := s.b.toWorld(s.localB)
	d := pb.Sub(pa)
	n, dist := d.Normalize()
	if dist <= 0 {
		return
	}

	va := s.a.linVel.Add(s.a.angVel.Cross(pa.Sub(s.a.pos)))
	vb := s.b.linVel.Add(s.b.angVel.Cross(pb.Sub(s.b.pos)))
	relVel := vb.Sub(va).Dot(n)

	// positive magnitude pulls the anchors together
	mag := s.cfg.Spring*(dist-s.cfg.Rest) + s.cfg.Damping*relVel
	f := n.Scale(mag)
	s.a.addForceAt(f, pa)
	s.b.addForceAt(f.Scale(-1), pb)
}

func (s *springDamper) accumulateRSDA() {
	// Bending angle between the two segment long axes.
	localY := spatial.V(0, 1, 0)
	ya := s.a.rot.Rotate(localY)
	yb := s.b.rot.Rotate(localY)

	cross := ya.Cross(yb)
	axis, sin := cross.Normalize()
	cos := ya.Dot(yb)
	angle := math.Atan2(sin, cos)
	if sin <= 0 {
		// parallel axes: no spring torque direction, damping still applies
		axis = spatial.Vec3{}
	}

	relW := s.a.angVel.Sub(s.b.angVel)
	tau := axis.Scale(s.cfg.Spring * (angle - s.cfg.Rest)).Sub(relW.Scale(s.cfg.Damping))

	s.a.torque = s.a.torque.Add(tau)
	s.b.torque = s.b.torque.Sub(tau)
}
