package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"taupgo/internal/model"
)

func TestFlatDepthRoundTrip(t *testing.T) {
	c := model.New(model.EarthRadiusKm, model.ReferenceSurfaceVelKmS)
	for _, depth := range []float64{0, 10, 35, 100, 410, 660, 800} {
		zf := c.FlatDepth(depth)
		got := c.SphericalDepth(zf)
		assert.InDelta(t, depth, got, 1e-6)
	}
}

func TestFlatDepthCenterIsNegInf(t *testing.T) {
	c := model.New(0, 0)
	zf := c.FlatDepth(c.RadiusKm)
	assert.True(t, math.IsInf(zf, -1))
	assert.Equal(t, c.RadiusKm, c.SphericalDepth(zf))
}

func TestSlownessAtReferenceVelocityGrazing(t *testing.T) {
	c := model.New(model.EarthRadiusKm, model.ReferenceSurfaceVelKmS)
	p := c.Slowness(model.ReferenceSurfaceVelKmS, c.RadiusKm)
	assert.InDelta(t, 1.0, p, 1e-9)
}

func TestTimeNormalizationRoundTrip(t *testing.T) {
	c := model.New(model.EarthRadiusKm, model.ReferenceSurfaceVelKmS)
	tn := c.NormalizeTime(373.7)
	assert.InDelta(t, 373.7, c.DenormalizeTime(tn), 1e-9)
}
