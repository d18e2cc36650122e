// Package rigid is a small reference backend for the engine adapter. It
// integrates free bodies with semi-implicit Euler, satisfies ball joints by
// iterative positional projection, and applies spring-damper elements as
// explicit forces. Contact handling is limited to dynamic bodies against
// fixed axis-aligned boxes. It exists for headless runs, terminal
// visualization, and tests; production scenes belong on a full multibody
// engine behind the same interface.
package rigid

import (
	"fmt"

	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

type System struct {
	opts    engine.Options
	gravity spatial.Vec3
	t       float64

	bodies []*body
	joints []*ballJoint
	links  []*springDamper
}

// New builds a system honoring opts, or reports which option it cannot
// satisfy. The backend is strictly single-threaded and only implements the
// projection solver.
func New(opts engine.Options) (*System, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.ThreadCount != 1 {
		return nil, fmt.Errorf("rigid backend is single-threaded, cannot honor thread count %d", opts.ThreadCount)
	}
	if opts.SolverKind != engine.SolverProjection {
		return nil, fmt.Errorf("rigid backend does not implement solver kind %q", opts.SolverKind)
	}
	return &System{opts: opts}, nil
}

func (s *System) NewBody() engine.Body {
	b := newBody()
	s.bodies = append(s.bodies, b)
	return b
}

func (s *System) AddBallJoint(ba, bb engine.Body, point spatial.Vec3) engine.Joint {
	a := ba.(*body)
	b := bb.(*body)
	j := &ballJoint{
		a:      a,
		b:      b,
		anchor: point,
		localA: a.rot.Conj().Rotate(point.Sub(a.pos)),
		localB: b.rot.Conj().Rotate(point.Sub(b.pos)),
	}
	s.joints = append(s.joints, j)
	return j
}

func (s *System) AddTSDA(ba, bb engine.Body, localA, localB spatial.Vec3, cfg engine.SpringDamperConfig) engine.SpringDamper {
	l := &springDamper{
		kind:   engine.LinkTSDA,
		a:      ba.(*body),
		b:      bb.(*body),
		cfg:    cfg,
		localA: localA,
		localB: localB,
	}
	s.links = append(s.links, l)
	return l
}

func (s *System) AddRSDA(ba, bb engine.Body, point spatial.Vec3, cfg engine.SpringDamperConfig) engine.SpringDamper {
	l := &springDamper{
		kind:  engine.LinkRSDA,
		a:     ba.(*body),
		b:     bb.(*body),
		cfg:   cfg,
		point: point,
	}
	s.links = append(s.links, l)
	return l
}

func (s *System) SetGravity(g spatial.Vec3) { s.gravity = g }
func (s *System) Gravity() spatial.Vec3     { return s.gravity }

func (s *System) Time() float64 { return s.t }

func (s *System) NumBodies() int { return len(s.bodies) }
func (s *System) NumLinks() int  { return len(s.joints) + len(s.links) }

func (s *System) Step(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("step size must be positive, got %g", dt)
	}

	for _, b := range s.bodies {
		b.force = spatial.Vec3{}
		b.torque = spatial.Vec3{}
		if !b.fixed {
			b.force = s.gravity.Scale(b.mass)
		}
	}

	for _, l := range s.links {
		l.accumulate()
	}

	// integrate velocities then poses
	for _, b := range s.bodies {
		if b.fixed {
			b.linVel = spatial.Vec3{}
			b.angVel = spatial.Vec3{}
			b.prevPos = b.pos
			b.prevRot = b.rot
			continue
		}
		b.linVel = b.linVel.Add(b.force.Scale(b.invMass * dt))
		b.angVel = b.angVel.Add(b.invInertiaWorld(b.torque).Scale(dt))

		b.prevPos = b.pos
		b.prevRot = b.rot
		b.pos = b.pos.Add(b.linVel.Scale(dt))
		b.rot = b.rot.Integrate(b.angVel, dt)
	}

	// joint projection sweep
	for it := 0; it < s.opts.MaxIterations; it++ {
		worst := 0.0
		for _, j := range s.joints {
			if gap := j.project(); gap > worst {
				worst = gap
			}
		}
		if worst < s.opts.Tolerance {
			break
		}
	}

	// recover velocities from projected poses
	for _, b := range s.bodies {
		if b.fixed {
			continue
		}
		b.linVel = b.pos.Sub(b.prevPos).Scale(1 / dt)
		b.angVel = rotationVelocity(b.prevRot, b.rot, dt)
	}

	// contacts run last so their velocity response survives the recovery
	s.resolveContacts()

	s.t += dt
	return nil
}

// rotationVelocity recovers the angular velocity that carries q0 to q1 over dt.
func rotationVelocity(q0, q1 spatial.Quat, dt float64) spatial.Vec3 {
	dq := q1.Mul(q0.Conj())
	// small-rotation approximation of the log map
	w := spatial.V(dq.X, dq.Y, dq.Z).Scale(2 / dt)
	if dq.W < 0 {
		w = w.Scale(-1)
	}
	return w
}
