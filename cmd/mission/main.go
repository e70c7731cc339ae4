package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	kitlog "github.com/go-kit/kit/log"
	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// This code reads a scenario file, flies the mission and exports the results.

const defaultScenario = "~~unset~~"

var (
	scenarioPath string
	confDir      string
	logFile      string
	verbose      bool
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func init() {
	flag.StringVar(&scenarioPath, "scenario", defaultScenario, "mission scenario TOML file")
	flag.StringVar(&confDir, "config", "", "directory of conf.toml (defaults to $"+rcaide.ConfigEnv+")")
	flag.StringVar(&logFile, "log", "", "also log to this file, rotated")
	flag.BoolVar(&verbose, "verbose", false, "log every residual evaluation")
}

// newLogger returns a logfmt logger on stdout, and on a rotated file if requested.
func newLogger(file string) (kitlog.Logger, io.Closer) {
	var w io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    32, // MB
			MaxBackups: 3,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, lj)
		closer = lj
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC), closer
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Printf("[error] %s", err)
		os.Exit(1)
	}
}

// run flies the scenario. The results are exported even when the mission fails, whose
// error is then returned last.
func run() error {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if scenarioPath == defaultScenario {
		return errors.New("no scenario provided")
	}
	if confDir != "" {
		if err := rcaide.LoadConfig(confDir); err != nil {
			return err
		}
	}
	logger, closer := newLogger(logFile)
	defer closer.Close()

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		logger.Log("level", "critical", "subsys", "scenario", "err", err)
		return err
	}
	reg := prometheus.NewRegistry()
	if err := rcaide.RegisterMetrics(reg); err != nil {
		return err
	}

	m, err := sc.Mission(rcaide.DispersionDraw{})
	if err != nil {
		return err
	}
	m.SetLogger(logger)
	for _, s := range m.Segments.Leaves() {
		s.Base().Settings.Verbose = verbose
	}
	logger.Log("level", "info", "subsys", "mission", "scenario", scenarioPath, "segments", m.Segments.Len(), "cpus", runtime.NumCPU())

	results, evalErr := m.Evaluate()
	if evalErr != nil {
		logger.Log("level", "critical", "subsys", "mission", "err", evalErr)
	}
	// Partial results are still exported.
	if err := rcaide.Export(sc.Export, m); err != nil {
		return err
	}
	if sc.Plots && results.Len() > 0 {
		if err := plotResults(rcaide.OutputDir(), m.Tag, results.Merged()); err != nil {
			return err
		}
	}
	if err := prometheus.WriteToTextfile(filepath.Join(rcaide.OutputDir(), "mission-"+m.Tag+".prom"), reg); err != nil {
		return err
	}
	return evalErr
}
