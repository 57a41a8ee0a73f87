/*------------------------------------------------------------------------------
* groups.go : phase groups, chaff set, diffraction and add-on mappings
*
* A fixed table of phase-code membership keyed by group name, loaded once
* and treated read-only afterwards.
*-----------------------------------------------------------------------------*/
package phase

// Group is a named set of phase codes used for teleseismic/association
// classification.
type Group struct {
	Name   string
	Phases []string
}

// DiffMapping describes a diffracted-phase continuation: source phase code
// -> diffracted code, with the distance extension limit x_diff.
type DiffMapping struct {
	SourceCode string
	DiffCode   string
	XDiffDeg   float64
}

// AddOnMapping describes a synthetic add-on phase emitted under a base
// phase's curve at a phase-dependent offset, activated once the base
// branch's distance reaches ActivateAtDeg.
type AddOnMapping struct {
	SourceCode    string
	AddOnCode     string
	ActivateAtDeg float64
}

// Groups is the loaded-once auxiliary "extras" data: ordered phase groups,
// a chaff set, diffraction mappings and add-on mappings, exposed through
// the four read-only queries the session needs.
type Groups struct {
	groups  []Group
	chaff   map[string]bool
	diffs   map[string]DiffMapping
	addOns  map[string]AddOnMapping
	byPhase map[string][]string
}

// NewGroups builds a Groups table from already-parsed records; the
// auxiliary-data loader that reads phase-group/statistics files is a
// separate collaborator, and this constructor is the interface taupgo
// needs from it.
func NewGroups(groups []Group, chaffCodes []string, diffs []DiffMapping, addOns []AddOnMapping) *Groups {
	g := &Groups{
		groups:  groups,
		chaff:   make(map[string]bool, len(chaffCodes)),
		diffs:   make(map[string]DiffMapping, len(diffs)),
		addOns:  make(map[string]AddOnMapping, len(addOns)),
		byPhase: make(map[string][]string),
	}
	for _, c := range chaffCodes {
		g.chaff[c] = true
	}
	for _, d := range diffs {
		g.diffs[d.SourceCode] = d
	}
	for _, a := range addOns {
		g.addOns[a.SourceCode] = a
	}
	for _, grp := range groups {
		for _, code := range grp.Phases {
			g.byPhase[code] = append(g.byPhase[code], grp.Name)
		}
	}
	return g
}

// PhaseGroup returns the group names code belongs to, in the order groups
// were loaded.
func (g *Groups) PhaseGroup(code string) []string {
	return g.byPhase[code]
}

// IsChaff reports whether code is in the chaff set.
func (g *Groups) IsChaff(code string) bool {
	return g.chaff[code]
}

// DiffOf returns the diffracted continuation for code, if any.
func (g *Groups) DiffOf(code string) (DiffMapping, bool) {
	d, ok := g.diffs[code]
	return d, ok
}

// AddOnOf returns the add-on mapping for code, active only once the base
// branch's x_max has reached the mapping's activation distance.
func (g *Groups) AddOnOf(code string, xMaxDeg float64) (AddOnMapping, bool) {
	a, ok := g.addOns[code]
	if !ok || xMaxDeg < a.ActivateAtDeg {
		return AddOnMapping{}, false
	}
	return a, true
}
