// Package scenario reads a mission description from a TOML file and builds the
// corresponding mission.
//
// A scenario holds a [mission] table, a [vehicle] table and one [segments.N] table per
// segment, flown in increasing N. Every segment table names its kind (see segments.Kinds)
// and sets the parameters of that kind in SI units, angles in radians.
//
//	[mission]
//	name = "short hop"
//	csv = true
//
//	[vehicle]
//	kind = "transport"
//
//	[segments.1]
//	kind = "climb.constant_speed_constant_rate"
//	altitude_start = 0.0
//	altitude_end = 3000.0
//	air_speed = 130.0
//	climb_rate = 6.0
package scenario

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/segments"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/vehicle"
	"github.com/spf13/viper"
)

var vehicles = map[string]func() *vehicle.Vehicle{
	"transport":   vehicle.Transport,
	"multicopter": vehicle.Multicopter,
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Name                 string
	Vehicle              *vehicle.Vehicle
	TemperatureDeviation float64 // K, applied to every segment
	Export               rcaide.ExportConfig
	Plots                bool
	Dispersion           rcaide.Dispersion
	segments             []*viper.Viper
}

// Load reads the scenario file at path.
func Load(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parse(v, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func parse(v *viper.Viper, fallback string) (*Scenario, error) {
	v.SetDefault("mission.name", fallback)
	v.SetDefault("dispersion.runs", 1)
	s := &Scenario{
		Name:                 v.GetString("mission.name"),
		TemperatureDeviation: v.GetFloat64("mission.temperature_deviation"),
		Export: rcaide.ExportConfig{
			Filename:  v.GetString("mission.filename"),
			AsCSV:     v.GetBool("mission.csv"),
			Archive:   v.GetBool("mission.archive"),
			Timestamp: v.GetBool("mission.timestamp"),
		},
		Plots: v.GetBool("mission.plots"),
		Dispersion: rcaide.Dispersion{
			Runs:             v.GetInt("dispersion.runs"),
			Seed:             uint64(v.GetInt64("dispersion.seed")),
			MassSigma:        v.GetFloat64("dispersion.mass_sigma"),
			TemperatureSigma: v.GetFloat64("dispersion.temperature_sigma"),
			Concurrency:      v.GetInt("dispersion.concurrency"),
			ContinueOnError:  v.GetBool("dispersion.continue_on_error"),
		},
	}

	kind := v.GetString("vehicle.kind")
	build, ok := vehicles[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vehicle kind `%s`", rcaide.ErrInvalidArgument, kind)
	}
	s.Vehicle = build()
	if mass := v.Sub("vehicle.mass"); mass != nil {
		if err := mass.Unmarshal(&s.Vehicle.MassProperties); err != nil {
			return nil, fmt.Errorf("vehicle mass: %w", err)
		}
	}
	if err := s.Vehicle.Validate(); err != nil {
		return nil, err
	}

	keys := make([]int, 0)
	for key := range v.GetStringMap("segments") {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: segment table `%s` is not numbered", rcaide.ErrInvalidArgument, key)
		}
		keys = append(keys, n)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: scenario `%s` has no segments", rcaide.ErrMissingAttribute, s.Name)
	}
	sort.Ints(keys)
	for _, n := range keys {
		sub := v.Sub(fmt.Sprintf("segments.%d", n))
		if _, err := segments.New(sub.GetString("kind"), "check"); err != nil {
			return nil, fmt.Errorf("segment %d: %w", n, err)
		}
		s.segments = append(s.segments, sub)
	}
	return s, nil
}

// Mission builds a new mission flown by a copy of the vehicle perturbed by draw.
func (s *Scenario) Mission(draw rcaide.DispersionDraw) (*rcaide.Mission, error) {
	veh := s.Vehicle.Clone()
	veh.MassProperties.TakeoffMass += draw.MassOffset
	if err := veh.Validate(); err != nil {
		return nil, err
	}
	m, err := rcaide.NewMission(s.Name)
	if err != nil {
		return nil, err
	}
	for i, sub := range s.segments {
		kind := sub.GetString("kind")
		tag := sub.GetString("tag")
		if tag == "" {
			tag = kind[strings.LastIndex(kind, ".")+1:]
		}
		seg, err := segments.New(kind, tag)
		if err != nil {
			return nil, err
		}
		if err := sub.Unmarshal(seg); err != nil {
			return nil, fmt.Errorf("segment #%d `%s`: %w", i, tag, err)
		}
		base := seg.Base()
		if sub.IsSet("control_points") {
			base.State.Numerics.NumberOfControlPoints = sub.GetInt("control_points")
		}
		if sub.IsSet("tolerance") {
			base.State.Numerics.ToleranceSolution = sub.GetFloat64("tolerance")
		}
		base.TemperatureDeviation = s.TemperatureDeviation + sub.GetFloat64("temperature_deviation") + draw.TemperatureDeviation
		base.Analyses = veh.Analyses(nil)
		if _, err := m.AppendSegment(seg); err != nil {
			return nil, err
		}
	}
	return m, nil
}
