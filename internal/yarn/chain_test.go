package yarn

import (
	"math"
	"testing"

	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/engine/rigid"
	"github.com/mkraev/yarnsim/internal/spatial"
)

func newTestSystem(t *testing.T) *rigid.System {
	t.Helper()
	sys, err := rigid.New(engine.DefaultOptions())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}
	return sys
}

func testYarnConfig() config.YarnConfig {
	return config.YarnConfig{
		Length:         1.0,
		SegmentCount:   10,
		Radius:         0.01,
		Density:        500,
		StartPosition:  [3]float64{0, 1, 0},
		StartDirection: [3]float64{1, 0, 0},
	}
}

func TestBuildChainHorizontal(t *testing.T) {
	sys := newTestSystem(t)
	cfg := testYarnConfig()

	chain, err := BuildChain(sys, cfg, nil, nil, false)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(chain.Segments) != 10 {
		t.Errorf("expected 10 segments, got %d", len(chain.Segments))
	}
	if len(chain.Joints) != 9 {
		t.Errorf("expected 9 joints, got %d", len(chain.Joints))
	}
	if math.Abs(chain.SegmentLength-0.1) > 1e-15 {
		t.Errorf("expected segment length 0.1, got %g", chain.SegmentLength)
	}

	// left tip of first segment at the start point
	first := segmentTipWorld(chain.Segments[0], -0.05)
	if first.Sub(spatial.V(0, 1, 0)).Norm() > 1e-12 {
		t.Errorf("first left tip at %v, want (0,1,0)", first)
	}

	// right tip of last segment one yarn length along the direction
	last := segmentTipWorld(chain.Segments[9], +0.05)
	if last.Sub(spatial.V(1, 1, 0)).Norm() > 1e-12 {
		t.Errorf("last right tip at %v, want (1,1,0)", last)
	}

	// all segments carry the same -90 degree rotation about Z, mapping
	// local +Y onto world +X
	for i, seg := range chain.Segments {
		got := seg.Rot().Rotate(spatial.V(0, 1, 0))
		if got.Sub(spatial.V(1, 0, 0)).Norm() > 1e-12 {
			t.Errorf("segment %d local +Y maps to %v, want (1,0,0)", i, got)
		}
	}
}

func TestBuildChainTipCoincidence(t *testing.T) {
	tests := []struct {
		name string
		dir  [3]float64
		n    int
	}{
		{"along x", [3]float64{1, 0, 0}, 10},
		{"along y", [3]float64{0, 1, 0}, 7},
		{"anti y", [3]float64{0, -1, 0}, 7},
		{"diagonal", [3]float64{1, -2, 0.5}, 23},
		{"unnormalized", [3]float64{10, 0, 0}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newTestSystem(t)
			cfg := testYarnConfig()
			cfg.SegmentCount = tt.n
			cfg.StartDirection = tt.dir

			chain, err := BuildChain(sys, cfg, nil, nil, false)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}

			halfLen := 0.5 * chain.SegmentLength
			for i := 1; i < len(chain.Segments); i++ {
				prev := segmentTipWorld(chain.Segments[i-1], +halfLen)
				curr := segmentTipWorld(chain.Segments[i], -halfLen)
				if gap := prev.Sub(curr).Norm(); gap > 1e-9 {
					t.Errorf("segments %d/%d tips differ by %g", i-1, i, gap)
				}
			}
		})
	}
}

func TestBuildChainValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.YarnConfig)
	}{
		{"zero segments", func(c *config.YarnConfig) { c.SegmentCount = 0 }},
		{"negative segments", func(c *config.YarnConfig) { c.SegmentCount = -3 }},
		{"zero length", func(c *config.YarnConfig) { c.Length = 0 }},
		{"negative length", func(c *config.YarnConfig) { c.Length = -1 }},
		{"zero radius", func(c *config.YarnConfig) { c.Radius = 0 }},
		{"zero density", func(c *config.YarnConfig) { c.Density = 0 }},
		{"zero direction", func(c *config.YarnConfig) { c.StartDirection = [3]float64{0, 0, 0} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newTestSystem(t)
			cfg := testYarnConfig()
			tt.mutate(&cfg)

			if _, err := BuildChain(sys, cfg, nil, nil, false); err == nil {
				t.Error("expected error, got nil")
			}
			// no partial registration on failure
			if sys.NumBodies() != 0 || sys.NumLinks() != 0 {
				t.Errorf("system not empty after failed build: %d bodies, %d links",
					sys.NumBodies(), sys.NumLinks())
			}
		})
	}
}

func TestBuildChainFixedSegments(t *testing.T) {
	sys := newTestSystem(t)
	chain, err := BuildChain(sys, testYarnConfig(), nil, nil, true)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(chain.Segments) != 10 {
		t.Errorf("expected 10 segments, got %d", len(chain.Segments))
	}
	if len(chain.Joints) != 0 {
		t.Errorf("fixed chain should have no joints, got %d", len(chain.Joints))
	}
	for i, seg := range chain.Segments {
		if !seg.Fixed() {
			t.Errorf("segment %d not fixed", i)
		}
	}
}

func TestBuildChainAnchor(t *testing.T) {
	sys := newTestSystem(t)
	anchor := sys.NewBody()
	anchor.SetFixed(true)
	anchor.SetPos(spatial.V(0, 1, 0))

	chain, err := BuildChain(sys, testYarnConfig(), nil, anchor, false)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(chain.Joints) != 10 {
		t.Errorf("expected 9 pair joints + 1 anchor joint, got %d", len(chain.Joints))
	}
	last := chain.Joints[len(chain.Joints)-1]
	if last.Anchor().Sub(spatial.V(0, 1, 0)).Norm() > 1e-12 {
		t.Errorf("anchor joint at %v, want chain start", last.Anchor())
	}
}

func TestDegenerateDirectionsDeterministic(t *testing.T) {
	for _, dir := range [][3]float64{{0, 1, 0}, {0, -1, 0}} {
		cfg := testYarnConfig()
		cfg.StartDirection = dir

		chainA, err := BuildChain(newTestSystem(t), cfg, nil, nil, false)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		chainB, err := BuildChain(newTestSystem(t), cfg, nil, nil, false)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}

		for i := range chainA.Segments {
			if chainA.Segments[i].Rot() != chainB.Segments[i].Rot() {
				t.Errorf("dir %v: segment %d orientation not bit-identical across builds", dir, i)
			}
		}
	}
}

func TestRotationFromLocalYTo(t *testing.T) {
	if q := rotationFromLocalYTo(spatial.V(0, 1, 0)); q != spatial.QIdentity {
		t.Errorf("canonical direction should give identity, got %+v", q)
	}

	q := rotationFromLocalYTo(spatial.V(0, -1, 0))
	want := spatial.QuatFromAxisAngle(spatial.V(1, 0, 0), math.Pi)
	if q != want {
		t.Errorf("anti-parallel direction: got %+v, want half turn about +X", q)
	}

	dirs := []spatial.Vec3{
		spatial.V(1, 0, 0),
		spatial.V(0, 0, 1),
		spatial.V(-1, 0, 0),
		{X: 0.26726124191242440, Y: 0.53452248382484879, Z: 0.80178372573727319},
	}
	for _, dir := range dirs {
		got := rotationFromLocalYTo(dir).Rotate(spatial.V(0, 1, 0))
		if got.Sub(dir).Norm() > 1e-12 {
			t.Errorf("rotation for %v maps +Y to %v", dir, got)
		}
	}
}

func TestSegmentCapsuleMassProperties(t *testing.T) {
	sys := newTestSystem(t)
	halfLen, radius, density := 0.05, 0.01, 500.0

	body := AddSegmentCapsule(sys, halfLen, radius, density, nil, engine.Color{})

	volCyl := math.Pi * radius * radius * 2 * halfLen
	volSph := 4.0 / 3.0 * math.Pi * math.Pow(radius, 3)
	wantMass := density * (volCyl + volSph)
	if math.Abs(body.Mass()-wantMass) > 1e-12 {
		t.Errorf("mass = %g, want %g", body.Mass(), wantMass)
	}
	if body.Collidable() {
		t.Error("nil material should disable collision")
	}

	mat := engine.NSCMaterial(0.3, 0.05)
	withCol := AddSegmentCapsule(sys, halfLen, radius, density, mat, engine.Color{})
	if !withCol.Collidable() {
		t.Error("material should enable collision")
	}
}
