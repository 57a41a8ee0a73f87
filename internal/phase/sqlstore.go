/*------------------------------------------------------------------------------
* sqlstore.go : relational fallback backend for the phase-group/statistics
*               auxiliary loader
*
* sqlx.Open(driver, dsn) plus context-scoped queries. The text-format
* phase-group/statistics file parser stays a separate collaborator; this is
* the alternate path for a deployment that keeps the same tables in a
* relational store instead, still handing NewGroups/Statistics
* already-parsed records.
*-----------------------------------------------------------------------------*/
package phase

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SQLStore reads phase groups, chaff membership, diffraction/add-on
// mappings and per-phase statistics curves from a relational database.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore opens a relational phase-data store over driverName/dsn
// (e.g. "clickhouse", a ClickHouse DSN).
func OpenSQLStore(driverName, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "phase: open sql store")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "phase: ping sql store")
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

type groupRow struct {
	GroupName string `db:"group_name"`
	Phase     string `db:"phase"`
}

type diffRow struct {
	SourceCode string  `db:"source_code"`
	DiffCode   string  `db:"diff_code"`
	XDiffDeg   float64 `db:"x_diff_deg"`
}

type addOnRow struct {
	SourceCode    string  `db:"source_code"`
	AddOnCode     string  `db:"add_on_code"`
	ActivateAtDeg float64 `db:"activate_at_deg"`
}

type chaffRow struct {
	Phase string `db:"phase"`
}

// LoadGroups reads phase_groups/phase_chaff/phase_diffractions/phase_add_ons
// and builds a Groups table the same shape NewGroups expects from a parsed
// text file.
func (s *SQLStore) LoadGroups(ctx context.Context) (*Groups, error) {
	var gr []groupRow
	if err := s.db.SelectContext(ctx, &gr, `SELECT group_name, phase FROM phase_groups ORDER BY group_name`); err != nil {
		return nil, errors.Wrap(err, "phase: load groups")
	}
	byName := map[string]*Group{}
	var order []string
	for _, row := range gr {
		g, ok := byName[row.GroupName]
		if !ok {
			g = &Group{Name: row.GroupName}
			byName[row.GroupName] = g
			order = append(order, row.GroupName)
		}
		g.Phases = append(g.Phases, row.Phase)
	}
	groups := make([]Group, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byName[name])
	}

	var cr []chaffRow
	if err := s.db.SelectContext(ctx, &cr, `SELECT phase FROM phase_chaff`); err != nil {
		return nil, errors.Wrap(err, "phase: load chaff")
	}
	chaff := make([]string, 0, len(cr))
	for _, row := range cr {
		chaff = append(chaff, row.Phase)
	}

	var dr []diffRow
	if err := s.db.SelectContext(ctx, &dr, `SELECT source_code, diff_code, x_diff_deg FROM phase_diffractions`); err != nil {
		return nil, errors.Wrap(err, "phase: load diffractions")
	}
	diffs := make([]DiffMapping, 0, len(dr))
	for _, row := range dr {
		diffs = append(diffs, DiffMapping{SourceCode: row.SourceCode, DiffCode: row.DiffCode, XDiffDeg: row.XDiffDeg})
	}

	var ar []addOnRow
	if err := s.db.SelectContext(ctx, &ar, `SELECT source_code, add_on_code, activate_at_deg FROM phase_add_ons`); err != nil {
		return nil, errors.Wrap(err, "phase: load add-ons")
	}
	addOns := make([]AddOnMapping, 0, len(ar))
	for _, row := range ar {
		addOns = append(addOns, AddOnMapping{SourceCode: row.SourceCode, AddOnCode: row.AddOnCode, ActivateAtDeg: row.ActivateAtDeg})
	}

	return NewGroups(groups, chaff, diffs, addOns), nil
}

type statRow struct {
	Phase      string  `db:"phase"`
	Curve      string  `db:"curve"` // "bias" | "spread" | "observability"
	DeltaStart float64 `db:"delta_start"`
	DeltaEnd   float64 `db:"delta_end"`
	Slope      float64 `db:"slope"`
	Offset     float64 `db:"offset"`
}

// LoadStatistics reads phase_statistics and builds the per-phase piecewise
// curves session.Model.Stats indexes by base phase code.
func (s *SQLStore) LoadStatistics(ctx context.Context) (map[string]Statistics, error) {
	var rows []statRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT phase, curve, delta_start, delta_end, slope, offset FROM phase_statistics ORDER BY phase, curve, delta_start`); err != nil {
		return nil, errors.Wrap(err, "phase: load statistics")
	}

	out := map[string]Statistics{}
	for _, row := range rows {
		st := out[row.Phase]
		seg := Segment{DeltaStart: row.DeltaStart, DeltaEnd: row.DeltaEnd, Slope: row.Slope, Offset: row.Offset}
		switch row.Curve {
		case "bias":
			st.Bias.Segments = append(st.Bias.Segments, seg)
		case "spread":
			st.Spread.Segments = append(st.Spread.Segments, seg)
		case "observability":
			st.Observability.Segments = append(st.Observability.Segments, seg)
		}
		out[row.Phase] = st
	}
	return out, nil
}
