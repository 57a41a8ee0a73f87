package plotter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"taupgo/internal/taperror"
)

// WriteCSV writes tracks as one row per point: phase,delta_deg,time_s,spread,observability,ray_param.
// Phase codes are emitted in lexicographic order for reproducible output.
func WriteCSV(w io.Writer, tracks map[string]*Track) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"phase", "delta_deg", "time_s", "spread", "observability", "ray_param"}); err != nil {
		return taperror.Wrap(taperror.ModelReadFailure, err, "writing csv header")
	}

	for _, code := range sortedCodes(tracks) {
		for _, p := range tracks[code].Points {
			row := []string{
				code,
				fmt.Sprintf("%.6f", p.DeltaDeg),
				fmt.Sprintf("%.6f", p.TimeS),
				fmt.Sprintf("%.6f", p.Spread),
				fmt.Sprintf("%.6f", p.Observability),
				fmt.Sprintf("%.6f", p.RayParam),
			}
			if err := cw.Write(row); err != nil {
				return taperror.Wrap(taperror.ModelReadFailure, err, "writing csv row")
			}
		}
	}
	return nil
}

// WriteJSON writes tracks keyed by phase code, the in-memory plot() result
// serialized directly.
func WriteJSON(w io.Writer, tracks map[string]*Track) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tracks); err != nil {
		return taperror.Wrap(taperror.ModelReadFailure, err, "writing json output")
	}
	return nil
}

func sortedCodes(tracks map[string]*Track) []string {
	codes := make([]string, 0, len(tracks))
	for code := range tracks {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
