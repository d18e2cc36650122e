package rigid

import (
	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

// resolveContacts handles the one contact class the reference backend
// supports: a dynamic collidable body resting on a fixed collidable box. The
// dynamic body's oriented collision box is sampled at its corners; the lowest
// penetrating corner is pushed out along +Y.
func (s *System) resolveContacts() {
	for _, b := range s.bodies {
		if b.fixed || !b.collide {
			continue
		}
		for _, floor := range s.bodies {
			if !floor.fixed || !floor.collide || floor == b {
				continue
			}
			if !familiesCollide(b, floor) {
				continue
			}
			s.resolveBoxOnFloor(b, floor)
		}
	}
}

func familiesCollide(a, b *body) bool {
	return a.mask&(1<<uint(b.family)) != 0 && b.mask&(1<<uint(a.family)) != 0
}

func (s *System) resolveBoxOnFloor(b, floor *body) {
	top := floor.pos.Y + floor.colHalf.Y + s.opts.Envelope - s.opts.Margin

	deepest := 0.0
	var contact spatial.Vec3
	for _, c := range b.boxCorners() {
		if c.X < floor.pos.X-floor.colHalf.X || c.X > floor.pos.X+floor.colHalf.X {
			continue
		}
		if c.Z < floor.pos.Z-floor.colHalf.Z || c.Z > floor.pos.Z+floor.colHalf.Z {
			continue
		}
		if pen := top - c.Y; pen > deepest {
			deepest = pen
			contact = c
		}
	}
	if deepest <= 0 {
		return
	}

	b.pos.Y += deepest

	vAt := b.linVel.Add(b.angVel.Cross(contact.Sub(b.pos)))
	if vAt.Y < 0 {
		restitution := 0.0
		friction := 0.0
		if b.material != nil {
			restitution = 0.5 * (b.material.Restitution + floor.material.Restitution)
			friction = 0.5 * (b.material.Friction + floor.material.Friction)
		}
		if s.opts.ContactModel == engine.SMC {
			// penalty model leaves a fraction of the approach speed
			restitution *= 0.5
		}
		b.linVel.Y = -restitution * vAt.Y
		b.linVel.X *= 1 - friction
		b.linVel.Z *= 1 - friction
		b.angVel = b.angVel.Scale(1 - friction)
	}
}

func (b *body) boxCorners() [8]spatial.Vec3 {
	var out [8]spatial.Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := spatial.V(sx*b.colHalf.X, sy*b.colHalf.Y, sz*b.colHalf.Z)
				out[i] = b.toWorld(local)
				i++
			}
		}
	}
	return out
}
