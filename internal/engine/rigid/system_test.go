package rigid

import (
	"math"
	"testing"

	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/spatial"
)

func newSystem(t *testing.T) *System {
	t.Helper()
	sys, err := New(engine.DefaultOptions())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}
	return sys
}

func TestNewRejectsUnsupportedOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*engine.Options)
	}{
		{"multithreaded", func(o *engine.Options) { o.ThreadCount = 4 }},
		{"zero threads", func(o *engine.Options) { o.ThreadCount = 0 }},
		{"unknown solver", func(o *engine.Options) { o.SolverKind = "mcp" }},
		{"unknown contact model", func(o *engine.Options) { o.ContactModel = "LCP" }},
		{"zero iterations", func(o *engine.Options) { o.MaxIterations = 0 }},
		{"negative tolerance", func(o *engine.Options) { o.Tolerance = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := engine.DefaultOptions()
			tt.mutate(&opts)
			if _, err := New(opts); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFreeFall(t *testing.T) {
	sys := newSystem(t)
	sys.SetGravity(spatial.V(0, -10, 0))

	b := sys.NewBody()
	b.SetMass(2)
	b.SetPos(spatial.V(0, 100, 0))

	dt := 1e-3
	for i := 0; i < 1000; i++ {
		if err := sys.Step(dt); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	// after 1s of free fall at g=10: dropped ~5m
	if dy := 100 - b.Pos().Y; math.Abs(dy-5) > 0.1 {
		t.Errorf("dropped %.3f m, want ~5", dy)
	}
	if math.Abs(sys.Time()-1.0) > 1e-9 {
		t.Errorf("time = %g, want 1.0", sys.Time())
	}
}

func TestFixedBodyDoesNotMove(t *testing.T) {
	sys := newSystem(t)
	sys.SetGravity(spatial.V(0, -9.81, 0))

	b := sys.NewBody()
	b.SetFixed(true)
	b.SetPos(spatial.V(1, 2, 3))

	for i := 0; i < 100; i++ {
		if err := sys.Step(1e-3); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	if b.Pos() != spatial.V(1, 2, 3) {
		t.Errorf("fixed body moved to %v", b.Pos())
	}
}

func TestBallJointHoldsPendulum(t *testing.T) {
	sys := newSystem(t)
	sys.SetGravity(spatial.V(0, -9.81, 0))

	pivot := sys.NewBody()
	pivot.SetFixed(true)
	pivot.SetPos(spatial.V(0, 1, 0))

	bob := sys.NewBody()
	bob.SetMass(1)
	bob.SetInertia(spatial.V(0.01, 0.01, 0.01))
	bob.SetPos(spatial.V(0.2, 1, 0))

	sys.AddBallJoint(bob, pivot, spatial.V(0, 1, 0))

	for i := 0; i < 2000; i++ {
		if err := sys.Step(5e-4); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	// the constrained point stays near the pivot while the body swings
	dist := bob.Pos().Sub(spatial.V(0, 1, 0)).Norm()
	if math.Abs(dist-0.2) > 0.02 {
		t.Errorf("bob at distance %.4f from pivot, want ~0.2", dist)
	}
	if !bob.Pos().IsValid() {
		t.Error("bob position became invalid")
	}
}

func TestTSDARestoresRestLength(t *testing.T) {
	sys := newSystem(t) // no gravity

	a := sys.NewBody()
	a.SetFixed(true)
	a.SetPos(spatial.V(0, 0, 0))

	b := sys.NewBody()
	b.SetMass(0.1)
	b.SetPos(spatial.V(2, 0, 0)) // stretched past rest length 1

	sys.AddTSDA(a, b, spatial.Vec3{}, spatial.Vec3{}, engine.SpringDamperConfig{
		Rest: 1, Spring: 10, Damping: 2,
	})

	for i := 0; i < 20000; i++ {
		if err := sys.Step(1e-3); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	if d := b.Pos().Norm(); math.Abs(d-1) > 0.05 {
		t.Errorf("spring settled at length %.4f, want ~1", d)
	}
}

func TestFloorStopsFall(t *testing.T) {
	sys := newSystem(t)
	sys.SetGravity(spatial.V(0, -9.81, 0))
	mat := engine.NSCMaterial(0.3, 0.0)

	floor := sys.NewBody()
	floor.SetFixed(true)
	floor.SetPos(spatial.V(0, 0, 0))
	floor.SetCollisionBox(mat, spatial.V(1, 0.05, 1))

	ball := sys.NewBody()
	ball.SetMass(1)
	ball.SetPos(spatial.V(0, 0.5, 0))
	ball.SetCollisionBox(mat, spatial.V(0.01, 0.01, 0.01))

	for i := 0; i < 4000; i++ {
		if err := sys.Step(5e-4); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	// resting on the floor top, not through it
	if y := ball.Pos().Y; y < 0.04 || y > 0.12 {
		t.Errorf("ball rest height %.4f, want near floor top 0.06", y)
	}
}

func TestCollisionFamiliesFilter(t *testing.T) {
	sys := newSystem(t)
	sys.SetGravity(spatial.V(0, -9.81, 0))
	mat := engine.NSCMaterial(0.3, 0.0)

	floor := sys.NewBody()
	floor.SetFixed(true)
	floor.SetCollisionBox(mat, spatial.V(1, 0.05, 1))
	floor.SetCollisionFamily(1, 1<<2)

	ghost := sys.NewBody()
	ghost.SetMass(1)
	ghost.SetPos(spatial.V(0, 0.2, 0))
	ghost.SetCollisionBox(mat, spatial.V(0.01, 0.01, 0.01))
	ghost.SetCollisionFamily(3, ^uint32(0)) // family the floor ignores

	for i := 0; i < 1000; i++ {
		if err := sys.Step(1e-3); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	if ghost.Pos().Y > 0 {
		t.Errorf("filtered body should fall through the floor, at y=%.3f", ghost.Pos().Y)
	}
}

func TestStepRejectsNonPositiveDt(t *testing.T) {
	sys := newSystem(t)
	if err := sys.Step(0); err == nil {
		t.Error("expected error for dt=0")
	}
	if err := sys.Step(-0.1); err == nil {
		t.Error("expected error for negative dt")
	}
}
