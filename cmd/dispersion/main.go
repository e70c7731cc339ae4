package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	kitlog "github.com/go-kit/kit/log"
	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// This code flies a scenario many times with dispersed takeoff mass and temperature.

const defaultScenario = "~~unset~~"

var (
	scenarioPath string
	confDir      string
	metricsAddr  string
	runs         int
	cpus         int
)

func init() {
	flag.StringVar(&scenarioPath, "scenario", defaultScenario, "mission scenario TOML file with a [dispersion] table")
	flag.StringVar(&confDir, "config", "", "directory of conf.toml (defaults to $"+rcaide.ConfigEnv+")")
	flag.StringVar(&metricsAddr, "metrics", "", "serve prometheus metrics on this address while running")
	flag.IntVar(&runs, "runs", 0, "override the number of runs of the scenario")
	flag.IntVar(&cpus, "cpus", 0, "missions in flight (0 for all CPUs)")
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Printf("[error] %s", err)
		os.Exit(1)
	}
}

func run() error {
	if scenarioPath == defaultScenario {
		return errors.New("no scenario provided")
	}
	if confDir != "" {
		if err := rcaide.LoadConfig(confDir); err != nil {
			return err
		}
	}
	logger := kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)), "ts", kitlog.DefaultTimestampUTC)

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}
	d := sc.Dispersion
	if runs > 0 {
		d.Runs = runs
	}
	if cpus > 0 {
		d.Concurrency = cpus
	}
	d.ContinueOnError = true

	reg := prometheus.NewRegistry()
	if err := rcaide.RegisterMetrics(reg); err != nil {
		return err
	}
	if metricsAddr != "" {
		ln, err := net.Listen("tcp", metricsAddr)
		if err != nil {
			return err
		}
		defer ln.Close()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go http.Serve(ln, mux)
		logger.Log("level", "info", "subsys", "metrics", "addr", ln.Addr().String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	nop := kitlog.NewNopLogger()
	out, err := rcaide.Disperse(ctx, d, func(run int, draw rcaide.DispersionDraw) (*rcaide.Mission, error) {
		m, err := sc.Mission(draw)
		if err != nil {
			return nil, err
		}
		m.SetLogger(nop)
		return m, nil
	})
	if out == nil {
		return err
	}
	failed := 0
	for _, r := range out {
		if r.Err != nil {
			failed++
		}
	}
	logger.Log("level", "notice", "subsys", "dispersion", "runs", len(out), "failed", failed)
	return writeSummary(filepath.Join(rcaide.OutputDir(), "dispersion-"+sc.Name+".csv"), out)
}

// writeSummary writes the draw and the final state of every run.
func writeSummary(path string, out []rcaide.DispersionRun) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"run", "mission", "mass_offset_kg", "temperature_deviation_K", "final_time_s", "final_range_m", "final_mass_kg", "error"})
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for i, r := range out {
		record := []string{strconv.Itoa(i), r.Tag, ff(r.Draw.MassOffset), ff(r.Draw.TemperatureDeviation)}
		if r.Err != nil || r.Results == nil || r.Results.Len() == 0 {
			record = append(record, "", "", "", fmt.Sprint(r.Err))
		} else {
			last := r.Results.Last().Conditions
			record = append(record,
				ff(last.Array(rcaide.PathTime).Last(0)),
				ff(last.Array(rcaide.PathRange).Last(0)),
				ff(last.Array(rcaide.PathMass).Last(0)),
				"")
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
