package config

// Presets maps scenario names to ready-to-run configurations. They are the
// tuned setups used while developing the falling-yarn scenes.
var Presets = map[string]func() *Config{
	// Anchored 1 m yarn dropped over the floor, millimeter-scale segments.
	"hanging": func() *Config {
		cfg := DefaultConfig()
		cfg.Yarn.SegmentCount = 120
		cfg.Scene.AnchorFirst = true
		return cfg
	},
	// Free chain, no anchor, lands on the floor.
	"drop": func() *Config {
		cfg := DefaultConfig()
		cfg.Scene.AnchorFirst = false
		cfg.Yarn.StartPosition = [3]float64{-0.5, 0.5, 0}
		return cfg
	},
	// Fine discretization stress case; bending dampers on with auto-scaling.
	"fine": func() *Config {
		cfg := DefaultConfig()
		cfg.Yarn.SegmentCount = 480
		cfg.Bending.RSDA = true
		return cfg
	},
	// Coarse chain with the translational bending proxy enabled.
	"proxy": func() *Config {
		cfg := DefaultConfig()
		cfg.Yarn.SegmentCount = 40
		cfg.Bending.Proxy = true
		return cfg
	},
	// Static layout: fixed segments, no joints, for placement inspection.
	"layout": func() *Config {
		cfg := DefaultConfig()
		cfg.Scene.FixedSegments = true
		cfg.Scene.AnchorFirst = false
		cfg.Sim.Gravity = [3]float64{0, 0, 0}
		return cfg
	},
}

func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
