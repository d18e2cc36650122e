// Package config defines the serializable inputs for yarn scenarios. The
// structs stay free of engine types so they can be written by hand, stored in
// yaml, and used in tests without pulling in a backend.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt           = 5e-4
	DefaultTEnd         = 2.0
	DefaultLength       = 1.0
	DefaultSegmentCount = 120
	DefaultRadius       = 0.0015
	DefaultDensity      = 600.0
	DefaultSampleStride = 10
	DefaultFriction     = 0.35
	DefaultRestitution  = 0.02
	DefaultProxySpan    = 2
	DefaultRSDARefCount = 120
)

// SolverTuning carries the low-level backend knobs applied at system
// creation. Kept separate so defaults can evolve independently from the main
// simulation settings.
type SolverTuning struct {
	CollisionEnvelope float64 `yaml:"collision_envelope"`
	CollisionMargin   float64 `yaml:"collision_margin"`
	MaxIterations     int     `yaml:"max_iterations"`
	Tolerance         float64 `yaml:"tolerance"`
	SingleThread      bool    `yaml:"single_thread"`
}

// SimulationConfig is the top-level stepping configuration for a run.
type SimulationConfig struct {
	ContactModel     string       `yaml:"contact_model"` // "NSC" or "SMC"
	Dt               float64      `yaml:"dt"`
	TEnd             float64      `yaml:"t_end"`
	Gravity          [3]float64   `yaml:"gravity"`
	SampleEveryNStep int          `yaml:"sample_every_n_steps"`
	Solver           SolverTuning `yaml:"solver"`
}

func (s SimulationConfig) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", s.Dt)
	}
	if s.TEnd <= 0 {
		return fmt.Errorf("t_end must be positive, got %g", s.TEnd)
	}
	if s.SampleEveryNStep <= 0 {
		return fmt.Errorf("sample_every_n_steps must be positive, got %d", s.SampleEveryNStep)
	}
	return nil
}

// YarnConfig is the discretization and initial placement of a segmented yarn.
type YarnConfig struct {
	Length         float64    `yaml:"length"`
	SegmentCount   int        `yaml:"segment_count"`
	Radius         float64    `yaml:"radius"`
	Density        float64    `yaml:"density"`
	StartPosition  [3]float64 `yaml:"start_position"`
	StartDirection [3]float64 `yaml:"start_direction"`
}

// SegmentLength returns the nominal length of one segment in meters. It is
// always recomputed from Length and SegmentCount, never cached.
func (y YarnConfig) SegmentLength() float64 {
	if y.SegmentCount <= 0 {
		return 0
	}
	return y.Length / float64(y.SegmentCount)
}

func (y YarnConfig) Validate() error {
	if y.SegmentCount <= 0 {
		return fmt.Errorf("segment_count must be > 0, got %d", y.SegmentCount)
	}
	if y.Length <= 0 {
		return fmt.Errorf("length must be > 0, got %g", y.Length)
	}
	if y.Radius <= 0 {
		return fmt.Errorf("radius must be > 0, got %g", y.Radius)
	}
	if y.Density <= 0 {
		return fmt.Errorf("density must be > 0, got %g", y.Density)
	}
	d := y.StartDirection
	if d[0] == 0 && d[1] == 0 && d[2] == 0 {
		return fmt.Errorf("start_direction must be non-zero")
	}
	return nil
}

// FloorConfig is a fixed axis-aligned box floor.
type FloorConfig struct {
	HalfSize    [3]float64 `yaml:"half_size"`
	Position    [3]float64 `yaml:"position"`
	Friction    float64    `yaml:"friction"`
	Restitution float64    `yaml:"restitution"`
}

// BendingConfig selects the optional bending-compliance layers applied after
// chain construction.
type BendingConfig struct {
	RSDA            bool    `yaml:"rsda"`
	RSDAK           float64 `yaml:"rsda_k"`
	RSDAC           float64 `yaml:"rsda_c"`
	RSDARestAngle   float64 `yaml:"rsda_rest_angle"`
	AutoScale       bool    `yaml:"auto_scale"`
	RefSegmentCount int     `yaml:"ref_segment_count"`

	Proxy     bool    `yaml:"proxy"`
	ProxySpan int     `yaml:"proxy_span"`
	ProxyK    float64 `yaml:"proxy_k"`
	ProxyC    float64 `yaml:"proxy_c"`
}

// SceneConfig holds scenario toggles that belong to the application layer:
// anchoring, fixation, and collision wiring.
type SceneConfig struct {
	AnchorFirst   bool    `yaml:"anchor_first"`
	FixedSegments bool    `yaml:"fixed_segments"`
	Collision     bool    `yaml:"collision"`
	SelfCollision bool    `yaml:"self_collision"`
	Friction      float64 `yaml:"friction"`
	Restitution   float64 `yaml:"restitution"`
}

type Config struct {
	Sim     SimulationConfig `yaml:"sim"`
	Yarn    YarnConfig       `yaml:"yarn"`
	Floor   FloorConfig      `yaml:"floor"`
	Bending BendingConfig    `yaml:"bending"`
	Scene   SceneConfig      `yaml:"scene"`
}

func DefaultConfig() *Config {
	return &Config{
		Sim: SimulationConfig{
			ContactModel:     "NSC",
			Dt:               DefaultDt,
			TEnd:             DefaultTEnd,
			Gravity:          [3]float64{0, -9.81, 0},
			SampleEveryNStep: DefaultSampleStride,
			Solver: SolverTuning{
				CollisionEnvelope: 2e-4,
				CollisionMargin:   1e-4,
				MaxIterations:     300,
				Tolerance:         1e-10,
				SingleThread:      true,
			},
		},
		Yarn: YarnConfig{
			Length:         DefaultLength,
			SegmentCount:   DefaultSegmentCount,
			Radius:         DefaultRadius,
			Density:        DefaultDensity,
			StartPosition:  [3]float64{-0.55, 0.75, 0},
			StartDirection: [3]float64{1, 0, 0},
		},
		Floor: FloorConfig{
			HalfSize:    [3]float64{1.4, 0.05, 0.5},
			Position:    [3]float64{0, 0.05, 0},
			Friction:    0.3,
			Restitution: 0.05,
		},
		Bending: BendingConfig{
			RSDAK:           1e-6,
			RSDAC:           1e-7,
			AutoScale:       true,
			RefSegmentCount: DefaultRSDARefCount,
			ProxySpan:       DefaultProxySpan,
			ProxyK:          1e-4,
			ProxyC:          1e-7,
		},
		Scene: SceneConfig{
			AnchorFirst:   true,
			Collision:     true,
			SelfCollision: false,
			Friction:      DefaultFriction,
			Restitution:   DefaultRestitution,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	return c.Yarn.Validate()
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
