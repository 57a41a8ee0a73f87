package phase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taupgo/internal/phase"
)

func TestGroupsQueries(t *testing.T) {
	g := phase.NewGroups(
		[]phase.Group{{Name: "teleseismic", Phases: []string{"P", "S", "PKP"}}},
		[]string{"PcP_coda"},
		[]phase.DiffMapping{{SourceCode: "P", DiffCode: "Pdiff", XDiffDeg: 150}},
		[]phase.AddOnMapping{{SourceCode: "P", AddOnCode: "pwP", ActivateAtDeg: 0}},
	)

	assert.Contains(t, g.PhaseGroup("P"), "teleseismic")
	assert.True(t, g.IsChaff("PcP_coda"))
	assert.False(t, g.IsChaff("P"))

	d, ok := g.DiffOf("P")
	assert.True(t, ok)
	assert.Equal(t, "Pdiff", d.DiffCode)

	a, ok := g.AddOnOf("P", 10)
	assert.True(t, ok)
	assert.Equal(t, "pwP", a.AddOnCode)
}

func TestStatisticsWindow(t *testing.T) {
	assert.InDelta(t, 4.0, phase.Window(2.0, 2.0, 1.0), 1e-9)
	assert.InDelta(t, 1.0, phase.Window(0.1, 2.0, 1.0), 1e-9)
}

func TestCurveEvalAndClamp(t *testing.T) {
	c := phase.Curve{Segments: []phase.Segment{
		{DeltaStart: 0, DeltaEnd: 30, Slope: 0.1, Offset: 1.0},
		{DeltaStart: 30, DeltaEnd: 90, Slope: 0.05, Offset: 2.5},
	}}
	assert.InDelta(t, 1.0, c.Eval(0), 1e-9)
	assert.InDelta(t, 4.0, c.Eval(30), 1e-9)
	// out of range: clamps to the last segment's line
	assert.InDelta(t, c.Segments[1].Offset+c.Segments[1].Slope*200, c.Eval(200), 1e-9)
}
