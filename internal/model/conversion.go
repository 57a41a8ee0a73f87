/*------------------------------------------------------------------------------
* conversion.go : normalization constants and flat-Earth transform
*
* history : 2026/07/29 1.0  new
*-----------------------------------------------------------------------------*/
package model

import "math"

const (
	// EarthRadiusKm is the reference Earth radius used to non-dimensionalize
	// depths, distances and slownesses (km).
	EarthRadiusKm = 6371.0
	// ReferenceSurfaceVelKmS is the reference surface shear velocity (km/s)
	// that normalized ray-parameter units are derived from.
	ReferenceSurfaceVelKmS = 4.466
	// MaxModelDepthKm bounds the depth range the engine samples model
	// points to.
	MaxModelDepthKm = 800.0
)

// Conversion holds the normalization constants for one Earth model. It is
// built once per model and is immutable for the life of that model; every
// branch and up-going table stored against a model carries values produced
// through this same Conversion.
type Conversion struct {
	RadiusKm  float64 // Earth radius used for this model (km)
	RefVelKmS float64 // reference surface velocity (km/s)
	TNorm     float64 // time normalization: RadiusKm / RefVelKmS (s)
	PNorm     float64 // slowness normalization: the reference velocity RefVelKmS (km/s)
	XNorm     float64 // distance normalization (radians, i.e. 1.0)
}

// New builds the Conversion for a model with the given reference radius and
// surface velocity. Passing zero values selects the package defaults.
func New(radiusKm, refVelKmS float64) *Conversion {
	if radiusKm <= 0 {
		radiusKm = EarthRadiusKm
	}
	if refVelKmS <= 0 {
		refVelKmS = ReferenceSurfaceVelKmS
	}
	return &Conversion{
		RadiusKm:  radiusKm,
		RefVelKmS: refVelKmS,
		TNorm:     radiusKm / refVelKmS,
		PNorm:     refVelKmS,
		XNorm:     1.0,
	}
}

// FlatDepth maps a spherical depth (km below the surface) to the
// non-dimensional flat-Earth depth z_f = ln(r/R). A center-of-the-Earth
// sample (spherical radius 0) maps to -Inf, which callers must special-case
// as the model's "center" point (at most one such point is allowed per model).
func (c *Conversion) FlatDepth(depthKm float64) float64 {
	r := c.RadiusKm - depthKm
	if r <= 0 {
		return math.Inf(-1)
	}
	return math.Log(r / c.RadiusKm)
}

// SphericalDepth is the inverse of FlatDepth: given a flat depth z_f,
// returns the spherical depth in km.
func (c *Conversion) SphericalDepth(zFlat float64) float64 {
	if math.IsInf(zFlat, -1) {
		return c.RadiusKm
	}
	r := c.RadiusKm * math.Exp(zFlat)
	return c.RadiusKm - r
}

// FlatVelocity maps a spherical velocity at radius r to its flat-Earth
// equivalent: v_f = v * R / r.
func (c *Conversion) FlatVelocity(vKmS, radiusKm float64) float64 {
	if radiusKm <= 0 {
		return math.Inf(1)
	}
	return vKmS * c.RadiusKm / radiusKm
}

// Slowness converts a spherical velocity at radius r into the normalized
// flat-Earth slowness, scaled so that a ray grazing at the reference
// surface velocity has p = 1.
func (c *Conversion) Slowness(vKmS, radiusKm float64) float64 {
	vf := c.FlatVelocity(vKmS, radiusKm)
	if vf == 0 {
		return math.Inf(1)
	}
	return c.RefVelKmS / vf
}

// DenormalizeTime converts a normalized tau/time value to seconds.
func (c *Conversion) DenormalizeTime(tNorm float64) float64 { return tNorm * c.TNorm }

// NormalizeTime converts seconds to the normalized tau/time unit.
func (c *Conversion) NormalizeTime(tSeconds float64) float64 { return tSeconds / c.TNorm }

// DenormalizeSlowness converts a normalized ray parameter to s/radian.
func (c *Conversion) DenormalizeSlowness(pNorm float64) float64 { return pNorm * c.TNorm }
