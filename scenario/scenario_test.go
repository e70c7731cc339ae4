package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/segments"
	"gonum.org/v1/gonum/floats/scalar"
)

const hop = `[mission]
name = "short hop"
csv = true
temperature_deviation = 5.0

[vehicle]
kind = "transport"

[vehicle.mass]
takeoff = 65000

[dispersion]
runs = 8
seed = 3
mass_sigma = 200.0

[segments.2]
kind = "cruise.constant_speed_constant_altitude"
air_speed = 130
distance = 20000
control_points = 8

[segments.1]
kind = "climb.constant_speed_constant_rate"
tag = "initial climb"
altitude_start = 0
altitude_end = 1000
air_speed = 130.0
climb_rate = 5.0
`

func write(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hop.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	s, err := Load(write(t, hop))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "short hop" || !s.Export.AsCSV || s.Export.Archive || s.TemperatureDeviation != 5 {
		t.Fatalf("unexpected mission settings %+v", s)
	}
	if s.Vehicle.TakeoffMass() != 65000 || s.Vehicle.MassProperties.MaxTakeoffMass != 79000 {
		t.Fatalf("vehicle mass %+v", s.Vehicle.MassProperties)
	}
	if d := s.Dispersion; d.Runs != 8 || d.Seed != 3 || d.MassSigma != 200 || d.TemperatureSigma != 0 {
		t.Fatalf("dispersion %+v", d)
	}

	m, err := s.Mission(rcaide.DispersionDraw{MassOffset: 1000, TemperatureDeviation: -2})
	if err != nil {
		t.Fatal(err)
	}
	if keys := m.Segments.Keys(); m.Tag != "short_hop" || len(keys) != 2 || keys[0] != "initial_climb" || keys[1] != "constant_speed_constant_altitude" {
		t.Fatalf("mission %s with segments %v", m.Tag, keys)
	}
	first, _ := m.Segments.Get("initial_climb")
	climb := first.(*segments.ClimbConstantSpeedConstantRate)
	if climb.AltitudeEnd != 1000 || climb.AirSpeed != 130 || climb.ClimbRate != 5 || climb.TemperatureDeviation != 3 {
		t.Fatalf("climb not decoded: %+v", climb)
	}
	if climb.Analyses.Weights.TakeoffMass() != 66000 || s.Vehicle.TakeoffMass() != 65000 {
		t.Fatal("draw not applied to a copy of the vehicle")
	}
	second, _ := m.Segments.Get("constant_speed_constant_altitude")
	cruise := second.(*segments.CruiseConstantSpeedConstantAltitude)
	if cruise.Distance != 20000 || cruise.State.Numerics.NumberOfControlPoints != 8 || !rcaide.IsUnset(cruise.Altitude) {
		t.Fatalf("cruise not decoded: %+v", cruise)
	}

	results, err := m.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	last := results.Last()
	if h := last.Conditions.Array(rcaide.PathAltitude).Last(0); !scalar.EqualWithinAbs(h, 1000, 1e-6) {
		t.Fatalf("cruise altitude %f", h)
	}
	if !results.Merged().Numerics.Converged {
		t.Fatal("mission not converged")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("missing file loaded")
	}
	for name, tc := range map[string]struct {
		contents string
		exp      error
	}{
		"vehicle":  {"[vehicle]\nkind = \"glider\"\n[segments.1]\nkind = \"vertical.hover\"\n", rcaide.ErrInvalidArgument},
		"empty":    {"[vehicle]\nkind = \"multicopter\"\n", rcaide.ErrMissingAttribute},
		"numbered": {"[vehicle]\nkind = \"multicopter\"\n[segments.first]\nkind = \"vertical.hover\"\n", rcaide.ErrInvalidArgument},
		"kind":     {"[vehicle]\nkind = \"multicopter\"\n[segments.1]\nkind = \"vertical.barrel_roll\"\n", rcaide.ErrInvalidArgument},
		"heavy":    {"[vehicle]\nkind = \"multicopter\"\n[vehicle.mass]\ntakeoff = 1000\n[segments.1]\nkind = \"vertical.hover\"\n", rcaide.ErrInvalidArgument},
	} {
		if _, err := Load(write(t, tc.contents)); !errors.Is(err, tc.exp) {
			t.Fatalf("%s: expected %v, got %v", name, tc.exp, err)
		}
	}
}
