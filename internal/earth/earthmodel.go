/*------------------------------------------------------------------------------
* earthmodel.go : depth<->slowness search over a 1-D Earth model, with
*                 low-velocity-zone handling
*
* Model keeps the index and result of its last lookup so a caller sweeping
* monotonically through depth or slowness gets a cheap bracket update
* instead of a fresh binary search each time. Not safe for concurrent use
* on the same instance.
*-----------------------------------------------------------------------------*/
package earth

import (
	"math"

	"taupgo/internal/logging"
	"taupgo/internal/taperror"
)

// Sample is one (flat-depth, normalized slowness) model point. UpIndex is
// the row into the up-going table for this wave type, or -1 if this sample
// has none.
type Sample struct {
	FlatDepth float64
	Slowness  float64
	UpIndex   int
}

// Model is the depth<->slowness search over one wave type's ordered sample
// array. Samples must be sorted by decreasing slowness (increasing depth);
// at most one sample may carry FlatDepth == -Inf (the Earth's center).
type Model struct {
	Samples []Sample

	// cached state from the last lookup; not safe for concurrent use
	lastIndex    int
	lastDepth    float64
	lastSlowness float64
	lastMaxSlow  float64
	onGridPoint  bool
}

const epsZDefault = 1e-6

// NewModel builds a Model from already depth-sorted samples.
func NewModel(samples []Sample) *Model {
	return &Model{Samples: samples, lastIndex: -1}
}

// FindSlowness locates the model interval bracketing z and linearly
// interpolates slowness in (e^z - e^z_{k-1})/(e^z_k - e^z_{k-1}). Returns
// taperror.DepthOutOfRange when z is below the deepest sample.
func (m *Model) FindSlowness(zFlat float64, epsZ float64) (float64, error) {
	if epsZ <= 0 {
		epsZ = epsZDefault
	}
	n := len(m.Samples)
	if n == 0 {
		return 0, taperror.New(taperror.ModelReadFailure, "earth model has no samples")
	}
	if zFlat < m.Samples[n-1].FlatDepth-epsZ {
		return 0, taperror.New(taperror.DepthOutOfRange, "depth below deepest model sample")
	}

	k := m.bracket(zFlat)
	if k < 0 {
		return 0, taperror.New(taperror.DepthOutOfRange, "depth outside model range")
	}

	if math.Abs(zFlat-m.Samples[k].FlatDepth) < epsZ {
		m.lastIndex = k
		m.lastDepth = zFlat
		m.lastSlowness = m.Samples[k].Slowness
		m.onGridPoint = true
		logging.Trace(4, "find_slowness: on grid point k=%d p=%.6f\n", k, m.lastSlowness)
		return m.lastSlowness, nil
	}

	k0 := k
	k1 := k + 1
	if k1 >= n {
		k1 = k0
		k0 = k0 - 1
	}
	z0, z1 := m.Samples[k0].FlatDepth, m.Samples[k1].FlatDepth
	if z1 == z0 {
		m.lastSlowness = m.Samples[k0].Slowness
	} else {
		e0, e1, ez := math.Exp(z0), math.Exp(z1), math.Exp(zFlat)
		frac := (ez - e0) / (e1 - e0)
		m.lastSlowness = m.Samples[k0].Slowness + frac*(m.Samples[k1].Slowness-m.Samples[k0].Slowness)
	}
	m.lastIndex = k0
	m.lastDepth = zFlat
	m.onGridPoint = false
	return m.lastSlowness, nil
}

// bracket returns the index k such that Samples[k].FlatDepth >= zFlat >=
// Samples[k+1].FlatDepth. Samples are ordered shallow to deep (decreasing
// FlatDepth as depth increases), so this is a descending search, not an
// ascending one.
func (m *Model) bracket(zFlat float64) int {
	n := len(m.Samples)
	if n == 0 {
		return -1
	}
	if zFlat >= m.Samples[0].FlatDepth {
		return 0
	}
	if zFlat <= m.Samples[n-1].FlatDepth {
		return n - 1
	}
	lo, hi := 0, n-1
	for lo < hi-1 {
		mid := (lo + hi) / 2
		if m.Samples[mid].FlatDepth >= zFlat {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// FindDepth locates the first model interval bracketing slowness p,
// scanning top-down when topOfLVZ is set (so a low-velocity zone returns
// its shallowest crossing), bottom-up otherwise, and interpolates z
// logarithmically (the inverse of FindSlowness's mapping).
func (m *Model) FindDepth(p float64, topOfLVZ bool) (float64, error) {
	n := len(m.Samples)
	if n == 0 {
		return 0, taperror.New(taperror.ModelReadFailure, "earth model has no samples")
	}

	var k0, k1 int = -1, -1
	if topOfLVZ {
		for i := 0; i < n-1; i++ {
			if between(p, m.Samples[i].Slowness, m.Samples[i+1].Slowness) {
				k0, k1 = i, i+1
				break
			}
		}
	} else {
		for i := n - 2; i >= 0; i-- {
			if between(p, m.Samples[i].Slowness, m.Samples[i+1].Slowness) {
				k0, k1 = i, i+1
				break
			}
		}
	}
	if k0 < 0 {
		return 0, taperror.New(taperror.DepthOutOfRange, "slowness not bracketed by model")
	}

	p0, p1 := m.Samples[k0].Slowness, m.Samples[k1].Slowness
	z0, z1 := m.Samples[k0].FlatDepth, m.Samples[k1].FlatDepth
	if p1 == p0 {
		return z0, nil
	}
	frac := (p - p0) / (p1 - p0)
	if math.IsInf(z1, -1) {
		// center-of-earth bracket: interpolate the radius ratio e^z linearly
		// to zero at the center, since e^{-Inf} itself can't be interpolated.
		ratio := (1 - frac) * math.Exp(z0)
		if ratio <= 0 {
			return math.Inf(-1), nil
		}
		return math.Log(ratio), nil
	}
	if math.IsInf(z0, -1) {
		ratio := frac * math.Exp(z1)
		if ratio <= 0 {
			return math.Inf(-1), nil
		}
		return math.Log(ratio), nil
	}
	e0, e1 := math.Exp(z0), math.Exp(z1)
	ez := e0 + frac*(e1-e0)
	if ez <= 0 {
		return z0, nil
	}
	return math.Log(ez), nil
}

func between(v, a, b float64) bool {
	if a <= b {
		return a <= v && v <= b
	}
	return b <= v && v <= a
}

// FindMaxSlowness returns the minimum of p among samples shallower than or
// at the source depth, i.e. the smallest slowness a source at this depth
// could be launched at without first crossing a low-velocity zone. Used to
// detect LVZ sources.
func (m *Model) FindMaxSlowness(srcFlatDepth float64) (float64, error) {
	n := len(m.Samples)
	if n == 0 {
		return 0, taperror.New(taperror.ModelReadFailure, "earth model has no samples")
	}
	minP := math.Inf(1)
	found := false
	for i := 0; i < n; i++ {
		if m.Samples[i].FlatDepth < srcFlatDepth {
			break
		}
		if m.Samples[i].Slowness < minP {
			minP = m.Samples[i].Slowness
			found = true
		}
	}
	if !found {
		return m.Samples[0].Slowness, nil
	}
	m.lastMaxSlow = minP
	return minP, nil
}
