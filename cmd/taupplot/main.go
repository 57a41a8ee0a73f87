/*------------------------------------------------------------------------------
* main.go : taupplot driver, a dense distance sweep exported to CSV/JSON
*
* Grounded on app/plot/plot.go's main(): flag.Var-bound options, a
* searchHelp-backed "-?" listing, then one batch operation (ReadSol there,
* plotter.Sweep here) whose output is written to a sink instead of returned
* interactively.
*-----------------------------------------------------------------------------*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"taupgo/internal/plotter"
	"taupgo/internal/session"
)

const progname = "taupplot"

var help = []string{
	"",
	" usage: taupplot [option]...",
	"",
	" Sweep distance at a fixed source depth and export per-phase plot tracks.",
	"",
	" -?                print help",
	" --modelPath=PATH  directory holding model table/header files",
	" --earthModel=NAME earth model name [ak135]",
	" --sourceDepth=KM  source depth in kilometers",
	" --maxDelta=DEG    maximum distance swept, degrees [180]",
	" --maxTime=SEC     maximum travel time kept, seconds [3600]",
	" --step=DEG        distance sweep step, degrees [1]",
	" --format=FMT       csv|json output format [csv]",
	" --out=PATH        output file path [stdout]",
}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Contains(v, key) {
			return v
		}
	}
	return "no supported argument"
}

func main() {
	var (
		showHelp      bool
		modelPath     string
		earthModel    string
		sourceDepthKm float64
		maxDelta      float64
		maxTime       float64
		step          float64
		format        string
		outPath       string
	)

	flag.BoolVar(&showHelp, "?", false, searchHelp("-?"))
	flag.StringVar(&modelPath, "modelPath", "", searchHelp("--modelPath"))
	flag.StringVar(&earthModel, "earthModel", "ak135", searchHelp("--earthModel"))
	flag.Float64Var(&sourceDepthKm, "sourceDepth", 0, searchHelp("--sourceDepth"))
	flag.Float64Var(&maxDelta, "maxDelta", 180, searchHelp("--maxDelta"))
	flag.Float64Var(&maxTime, "maxTime", 3600, searchHelp("--maxTime"))
	flag.Float64Var(&step, "step", 1, searchHelp("--step"))
	flag.StringVar(&format, "format", "csv", searchHelp("--format"))
	flag.StringVar(&outPath, "out", "", searchHelp("--out"))
	flag.Parse()

	if showHelp {
		for _, h := range help {
			fmt.Fprintln(os.Stderr, h)
		}
		return
	}

	loader, err := session.NewFileLoader(modelPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, progname+":", err)
		os.Exit(1)
	}
	factory := session.NewFactory(1, loader)
	m, err := factory.Open(earthModel, modelPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, progname+":", err)
		os.Exit(1)
	}

	tracks, err := plotter.Sweep(m, sourceDepthKm, plotter.Options{
		MaxDeltaDeg:  maxDelta,
		MaxTimeS:     maxTime,
		DeltaStepDeg: step,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, progname+":", err)
		os.Exit(1)
	}

	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, progname+":", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		err = plotter.WriteJSON(w, tracks)
	default:
		err = plotter.WriteCSV(w, tracks)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, progname+":", err)
		os.Exit(1)
	}
}
