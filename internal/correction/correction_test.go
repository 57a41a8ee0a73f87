package correction_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taupgo/internal/correction"
)

func flatTable(n int, v float64) []float64 {
	vals := make([]float64, n*len(correction.DepthGridKm))
	for i := range vals {
		vals[i] = v
	}
	return vals
}

func TestEllipticityAntisymmetricInAzimuth(t *testing.T) {
	n := 5 // deltas 0,5,10,15,20
	// isolate the T1 (cos a) term: T0 and T2 zero so only T1 contributes.
	tab := correction.NewEllipticityTable(0, 20, flatTable(n, 0), flatTable(n, 1), flatTable(n, 0))

	theta := math.Pi / 3
	a := math.Pi / 4
	c1 := tab.Correction(theta, a, 10, 0)
	c2 := tab.Correction(theta, a+math.Pi, 10, 0)
	// cos(a+pi) = -cos(a), so shifting azimuth by 180 degrees flips the
	// sign of the T1 contribution.
	assert.InDelta(t, c1, -c2, 1e-9)
}

func TestEllipticityThetaClamped(t *testing.T) {
	n := 3
	tab := correction.NewEllipticityTable(0, 10, flatTable(n, 2), flatTable(n, 0), flatTable(n, 0))
	over := tab.Correction(4*math.Pi, 0, 5, 0)
	atPi := tab.Correction(math.Pi, 0, 5, 0)
	assert.InDelta(t, atPi, over, 1e-9)
}

func writeTopoBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	hdr := make([]byte, 12+4+24)
	binary.LittleEndian.PutUint32(hdr[0:4], 4)  // nLon
	binary.LittleEndian.PutUint32(hdr[4:8], 3)  // nLat
	binary.LittleEndian.PutUint32(hdr[8:12], 0) // reserved
	putF4 := func(off int, v float32) { binary.LittleEndian.PutUint32(hdr[off:off+4], math.Float32bits(v)) }
	putF4(12, 1.0)   // ratio
	putF4(16, -180)  // lonMin
	putF4(20, 90)    // lonStep (4 points across 360 = 90 step)
	putF4(24, 90)    // lonMax (unused by lookup)
	putF4(28, 90)    // latMin
	putF4(32, -90)   // latStep (north to south)
	putF4(36, -90)   // latMax

	hdrLen := uint32(len(hdr))
	binary.Write(&buf, binary.LittleEndian, hdrLen)
	buf.Write(hdr)
	binary.Write(&buf, binary.LittleEndian, hdrLen)

	rows := [][]int16{
		{100, 100, 100, 100},
		{0, 0, 0, 0},
		{-100, -100, -100, -100},
	}
	for _, row := range rows {
		recLen := uint32(len(row) * 2)
		binary.Write(&buf, binary.LittleEndian, recLen)
		for _, v := range row {
			binary.Write(&buf, binary.LittleEndian, v)
		}
		binary.Write(&buf, binary.LittleEndian, recLen)
	}
	return buf.Bytes()
}

func TestReadTopographyAndInterpolate(t *testing.T) {
	raw := writeTopoBytes(t)
	topo, err := correction.ReadTopography(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 4, topo.NLon)
	require.Equal(t, 3, topo.NLat)

	// middle row is all zero, should interpolate to zero anywhere on it
	assert.InDelta(t, 0.0, topo.ElevationKm(0, 0), 1e-9)
	// top row is +100m = 0.1km
	assert.InDelta(t, 0.1, topo.ElevationKm(0, 90), 1e-9)
}

func TestBouncePointCorrectionZeroAtGrazing(t *testing.T) {
	// sinI = 1 -> cosI = 0 -> correction is zero regardless of elevation
	c := correction.BouncePointCorrection(1.0, 1.0, 1.0, 1.0)
	assert.InDelta(t, 0.0, c, 1e-9)
}

func TestPwPCorrectionOnlyBelowSeaLevel(t *testing.T) {
	same, applied := correction.PwPCorrection(100.0, 0.5)
	assert.False(t, applied)
	assert.Equal(t, 100.0, same)

	adj, applied := correction.PwPCorrection(100.0, -2.0)
	assert.True(t, applied)
	assert.InDelta(t, 100.0+2*2.0/1.5, adj, 1e-9)
}

func TestElevationCorrectionClampsAtHorizon(t *testing.T) {
	// p*sin(delta)/R exceeding 1/v means radicand would go negative; must clamp to 0
	c := correction.ElevationCorrection(1.0, 2000.0, math.Pi/2, 5.0, 6371.0)
	assert.InDelta(t, 0.0, c, 1e-9)
}

func TestElevationCorrectionVerticalIncidence(t *testing.T) {
	// p == 0 means the radicand is exactly 1/v^2
	c := correction.ElevationCorrection(2.0, 0.0, math.Pi/4, 5.0, 6371.0)
	assert.InDelta(t, 2.0/5.0, c, 1e-9)
}
