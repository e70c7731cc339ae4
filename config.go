package rcaide

import (
	"fmt"
	"os"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/spectral"
	"github.com/spf13/viper"
)

// ConfigEnv names the environment variable pointing to the directory of conf.toml.
const ConfigEnv = "RCAIDE_CONFIG"

var (
	cfgMu     sync.Mutex
	cfgLoaded = false
	config    = _rcaideconfig{}
)

// _rcaideconfig is a "hidden" struct, just use `rcaideConfig`
type _rcaideconfig struct {
	ControlPoints  int
	Discretization spectral.Kind
	Tolerance      float64
	MaxEvaluations int
	OutputDir      string
	Verbose        bool
}

func defaultConfig() _rcaideconfig {
	return _rcaideconfig{ControlPoints: 16, Discretization: spectral.ChebyshevKind, Tolerance: 1e-8, OutputDir: "."}
}

// rcaideConfig returns the library configuration, reading $RCAIDE_CONFIG/conf.toml on
// first use. Without the environment variable the defaults are used.
func rcaideConfig() _rcaideconfig {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	if cfgLoaded {
		return config
	}
	config = defaultConfig()
	if confPath := os.Getenv(ConfigEnv); confPath != "" {
		conf, err := readConfig(confPath)
		if err != nil {
			panic(err)
		}
		config = conf
	}
	cfgLoaded = true
	return config
}

// LoadConfig replaces the library configuration by the conf.toml found in dir.
func LoadConfig(dir string) error {
	conf, err := readConfig(dir)
	if err != nil {
		return err
	}
	cfgMu.Lock()
	config = conf
	cfgLoaded = true
	cfgMu.Unlock()
	return nil
}

func readConfig(dir string) (_rcaideconfig, error) {
	conf := defaultConfig()
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetDefault("numerics.control_points", conf.ControlPoints)
	v.SetDefault("numerics.discretization", conf.Discretization.String())
	v.SetDefault("numerics.tolerance", conf.Tolerance)
	v.SetDefault("numerics.max_evaluations", conf.MaxEvaluations)
	v.SetDefault("general.output_path", conf.OutputDir)
	v.SetDefault("general.verbose", false)
	if err := v.ReadInConfig(); err != nil {
		return conf, fmt.Errorf("%s/conf.toml: %w", dir, err)
	}
	kind, err := spectral.ParseKind(v.GetString("numerics.discretization"))
	if err != nil {
		return conf, err
	}
	conf.ControlPoints = v.GetInt("numerics.control_points")
	if conf.ControlPoints <= 0 {
		return conf, invalidf("%s/conf.toml: %d control points", dir, conf.ControlPoints)
	}
	conf.Discretization = kind
	conf.Tolerance = v.GetFloat64("numerics.tolerance")
	conf.MaxEvaluations = v.GetInt("numerics.max_evaluations")
	conf.OutputDir = v.GetString("general.output_path")
	conf.Verbose = v.GetBool("general.verbose")
	return conf, nil
}

// OutputDir returns the configured directory for exported results.
func OutputDir() string {
	return rcaideConfig().OutputDir
}

// defaultLogger returns a logfmt logger on stdout when the configuration is verbose and
// a nop logger otherwise.
func defaultLogger() kitlog.Logger {
	if rcaideConfig().Verbose {
		return kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}
	return kitlog.NewNopLogger()
}
