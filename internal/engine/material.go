package engine

import "fmt"

// ContactMaterial describes the surface properties used by contact
// resolution. The elastic fields only apply under the SMC formulation.
type ContactMaterial struct {
	Friction     float64
	Restitution  float64
	YoungModulus float64
	PoissonRatio float64
}

// NSCMaterial builds a surface material for the non-smooth contact model.
func NSCMaterial(friction, restitution float64) *ContactMaterial {
	return &ContactMaterial{
		Friction:    friction,
		Restitution: restitution,
	}
}

// SMCMaterial builds a surface material for the penalty contact model.
func SMCMaterial(friction, restitution, young, poisson float64) *ContactMaterial {
	return &ContactMaterial{
		Friction:     friction,
		Restitution:  restitution,
		YoungModulus: young,
		PoissonRatio: poisson,
	}
}

// MaterialFor creates a contact material matching the selected formulation
// with common defaults for the elastic terms.
func MaterialFor(model ContactModel, friction, restitution float64) (*ContactMaterial, error) {
	switch model {
	case NSC:
		return NSCMaterial(friction, restitution), nil
	case SMC:
		return SMCMaterial(friction, restitution, 5e6, 0.3), nil
	default:
		return nil, fmt.Errorf("unsupported contact model %q", model)
	}
}
