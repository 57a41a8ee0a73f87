/*------------------------------------------------------------------------------
* main.go : taup driver
*
* Parse options, open the required inputs, run one pass, map failures to
* documented process exit codes. "local"/"validate" compute directly
* in-process; "service" starts a thin HTTP shell around the same session
* machinery.
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"taupgo/internal/config"
	"taupgo/internal/logging"
	"taupgo/internal/searchsink"
	"taupgo/internal/serviceshell"
	"taupgo/internal/session"
	"taupgo/internal/taperror"
	"taupgo/internal/telemetry"
	"taupgo/internal/validate"
)

const version = "taupgo 0.1.0"

func main() {
	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(config.ExitModelFileMalformed)
	}

	if opts.ShowVersion {
		fmt.Println(version)
		os.Exit(config.ExitSuccess)
	}

	if err := logging.Open(opts.LogPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log path %q: %v\n", opts.LogPath, err)
	}
	defer logging.Close()
	logging.SetLevel(opts.LogLevel)

	code := run(opts)
	os.Exit(code)
}

func run(opts config.Options) int {
	switch opts.Mode {
	case config.ModeService:
		return runService(opts)
	case config.ModeValidate:
		return runValidate(opts)
	default:
		return runLocal(opts)
	}
}

func openModel(opts config.Options) (*session.Model, error) {
	loader, err := session.NewFileLoader(opts.ModelPath)
	if err != nil {
		return nil, err
	}
	factory := session.NewFactory(8, loader)
	return factory.Open(opts.EarthModel, opts.ModelPath)
}

func runLocal(opts config.Options) int {
	m, err := openModel(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeFor(err)
	}

	if _, err := session.NewSession(m, opts.SourceDepthKm, nil, session.Options{Tolerances: session.DefaultTolerances()}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeFor(err)
	}

	logging.Trace(2, "taup: opened model %s, session ready at depth %.1f km\n", opts.EarthModel, opts.SourceDepthKm)
	fmt.Printf("model %s ready at source depth %.1f km\n", opts.EarthModel, opts.SourceDepthKm)
	return config.ExitSuccess
}

func runValidate(opts config.Options) int {
	m, err := openModel(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeFor(err)
	}

	if _, err := session.NewSession(m, opts.SourceDepthKm, nil, session.Options{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeFor(err)
	}

	report := validate.Run(m)
	if report.Passed {
		fmt.Println("validate: PASS")
		return config.ExitSuccess
	}

	fmt.Println("validate: FAIL")
	for _, f := range report.Failures {
		fmt.Println(" -", f)
	}
	return config.ExitCodeFor(taperror.New(taperror.TauIntegralFailure, "validation failed"))
}

func runService(opts config.Options) int {
	loader, err := session.NewFileLoader(opts.ModelPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeFor(err)
	}
	factory := session.NewFactory(8, loader)
	if _, err := factory.Open(opts.EarthModel, opts.ModelPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeFor(err)
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	var search *searchsink.Sink
	if opts.SearchURL != "" {
		search, err = searchsink.Open(opts.SearchURL)
		if err != nil {
			logging.Trace(2, "taup: search sink disabled: %v\n", err)
			search = nil
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler(reg))
	mux.Handle("/tt", serviceshell.NewHandler(factory, opts.EarthModel, opts.ModelPath, metrics, search))

	addr := fmt.Sprintf(":%d", opts.ServicePort)
	logging.Trace(2, "taup: service mode listening on %s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitModelReadFailed
	}
	return config.ExitSuccess
}
