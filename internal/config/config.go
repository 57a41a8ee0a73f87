/*------------------------------------------------------------------------------
* config.go : CLI flags and option-file loading for the taup driver
*
* flag.Var/flag.StringVar bound directly to option fields, a "-?" help
* listing searched by searchHelp, and a "-k file" config-file override
* loaded as YAML.
*-----------------------------------------------------------------------------*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Mode selects the CLI driver's top-level behavior.
type Mode string

const (
	ModeLocal    Mode = "local"
	ModeService  Mode = "service"
	ModeValidate Mode = "validate"
)

// Options is the full CLI surface of the taup driver.
type Options struct {
	ModelPath     string `yaml:"modelPath"`
	EarthModel    string `yaml:"earthModel"`
	SourceDepthKm float64 `yaml:"sourceDepth"`
	LogPath       string `yaml:"logPath"`
	LogLevel      int    `yaml:"logLevel"`
	Mode          Mode   `yaml:"mode"`
	ServicePort   int    `yaml:"servicePort"`
	SearchURL     string `yaml:"searchURL"`
	ConfigPath    string `yaml:"-"`
	ShowVersion   bool   `yaml:"-"`
}

// Default returns the CLI surface's documented defaults.
func Default() Options {
	return Options{
		EarthModel:  "ak135",
		Mode:        ModeLocal,
		LogLevel:    2,
		ServicePort: 8080,
	}
}

var help = []string{
	"",
	" usage: taup [option]...",
	"",
	" Compute seismic body-wave travel times from a 1-D Earth model.",
	"",
	" -?                print help",
	" -k file           load options from a YAML config file",
	" --modelPath=PATH  directory holding model table/header files",
	" --earthModel=NAME earth model name [ak135]",
	" --sourceDepth=KM  source depth in kilometers",
	" --logPath=DIR     directory for trace log output",
	" --logLevel=LEVEL  trace verbosity level",
	" --mode=MODE       local|service|validate [local]",
	" --servicePort=N   HTTP port for --mode=service [8080]",
	" --searchURL=URL   Elasticsearch URL for indexing service arrivals (optional)",
	" --version         print version and exit",
}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Contains(v, key) {
			return v
		}
	}
	return "no supported argument"
}

// Parse builds Options from args (normally os.Args[1:]), applying a -k
// config file first, if given, then letting explicit flags override it.
func Parse(args []string) (Options, error) {
	opts := Default()

	fs := flag.NewFlagSet("taup", flag.ContinueOnError)
	showHelp := fs.Bool("?", false, searchHelp("-?"))
	configPath := fs.String("k", "", searchHelp("-k"))
	fs.StringVar(&opts.ModelPath, "modelPath", opts.ModelPath, searchHelp("--modelPath"))
	fs.StringVar(&opts.EarthModel, "earthModel", opts.EarthModel, searchHelp("--earthModel"))
	fs.Float64Var(&opts.SourceDepthKm, "sourceDepth", opts.SourceDepthKm, searchHelp("--sourceDepth"))
	fs.StringVar(&opts.LogPath, "logPath", opts.LogPath, searchHelp("--logPath"))
	fs.IntVar(&opts.LogLevel, "logLevel", opts.LogLevel, searchHelp("--logLevel"))
	mode := fs.String("mode", string(opts.Mode), searchHelp("--mode"))
	fs.IntVar(&opts.ServicePort, "servicePort", opts.ServicePort, searchHelp("--servicePort"))
	fs.StringVar(&opts.SearchURL, "searchURL", opts.SearchURL, searchHelp("--searchURL"))
	fs.BoolVar(&opts.ShowVersion, "version", false, searchHelp("--version"))

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if *showHelp {
		for _, h := range help {
			fmt.Fprintln(os.Stderr, h)
		}
		os.Exit(0)
	}

	if *configPath != "" {
		opts.ConfigPath = *configPath
		loaded, err := Load(*configPath)
		if err != nil {
			return opts, err
		}
		merged := loaded
		mergeFlagOverrides(&merged, fs)
		opts = merged
		return opts, nil
	}

	opts.Mode = Mode(*mode)
	return opts, nil
}

// mergeFlagOverrides re-applies any flag explicitly set on the command line
// on top of a config-file-loaded Options, so a -k file and an explicit flag
// can be combined without the flag being silently shadowed.
func mergeFlagOverrides(opts *Options, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "modelPath":
			opts.ModelPath = f.Value.String()
		case "earthModel":
			opts.EarthModel = f.Value.String()
		case "sourceDepth":
			fmt.Sscanf(f.Value.String(), "%g", &opts.SourceDepthKm)
		case "logPath":
			opts.LogPath = f.Value.String()
		case "logLevel":
			fmt.Sscanf(f.Value.String(), "%d", &opts.LogLevel)
		case "mode":
			opts.Mode = Mode(f.Value.String())
		case "servicePort":
			fmt.Sscanf(f.Value.String(), "%d", &opts.ServicePort)
		case "searchURL":
			opts.SearchURL = f.Value.String()
		case "version":
			opts.ShowVersion = true
		}
	})
}

// Load reads Options from a YAML file (the -k config path).
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// Save writes opts to path as YAML.
func Save(path string, opts Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
