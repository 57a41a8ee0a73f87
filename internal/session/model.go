/*------------------------------------------------------------------------------
* model.go : loaded Earth model bundle
*
* One immutable bundle of tables (normalization, per-wave-type layers,
* branch array, auxiliary corrections) built once per (name, path) and
* shared read-only across every session opened against it.
*-----------------------------------------------------------------------------*/
package session

import (
	"taupgo/internal/branch"
	"taupgo/internal/correction"
	"taupgo/internal/earth"
	"taupgo/internal/model"
	"taupgo/internal/phase"
	"taupgo/internal/upgoing"
)

// Model is the immutable, shareable bundle an opened Earth model produces:
// the normalization conversion, the P and S earth-model layers, their
// up-going tables, the full surface-focus branch array, and the optional
// auxiliary tables a session may consult.
type Model struct {
	Name string
	Conv *model.Conversion

	EarthP *earth.Model
	EarthS *earth.Model

	UpGoingP *upgoing.Table
	UpGoingS *upgoing.Table

	Branches []*branch.SurfaceFocus

	Groups         *phase.Groups
	Stats          map[string]phase.Statistics
	Ellipticity    map[string]*correction.EllipticityTable
	Topography     *correction.Topography
	NeedsStatsBias map[string]bool // phase codes whose reported bias needs the statistics-curve offset added

	VSurfaceKmS float64 // near-surface velocity used by elevation/bounce corrections
}

// upGoingFor returns the up-going table for a branch's down-going wave leg,
// or nil if the branch has no up-going correction (no wave type set).
func (m *Model) upGoingFor(sf *branch.SurfaceFocus) *upgoing.Table {
	switch sf.Legs.DownGoing {
	case branch.WaveP:
		return m.UpGoingP
	case branch.WaveS:
		return m.UpGoingS
	default:
		return nil
	}
}

// earthFor returns the earth-model layer matching a branch's down-going
// wave type, used to locate the source slowness.
func (m *Model) earthFor(sf *branch.SurfaceFocus) *earth.Model {
	if sf.Legs.DownGoing == branch.WaveS {
		return m.EarthS
	}
	return m.EarthP
}
