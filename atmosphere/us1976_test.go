package atmosphere

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestUS1976(t *testing.T) {
	d, err := US1976{}.ComputeValues([]float64{0, 11000, 20000, 30000}, nil)
	if err != nil {
		t.Fatal(err)
	}
	exp := []struct{ T, P, rho, a float64 }{
		{288.15, 101325, 1.2250, 340.29},
		{216.77, 22699.9, 0.36480, 295.15},
		{216.65, 5529.3, 0.088910, 295.07},
		{226.51, 1197.0, 0.018410, 301.71},
	}
	for i, e := range exp {
		if !scalar.EqualWithinRel(d.Temperature[i], e.T, 1e-3) {
			t.Fatalf("#%d: T got %f exp %f", i, d.Temperature[i], e.T)
		}
		if !scalar.EqualWithinRel(d.Pressure[i], e.P, 2e-3) {
			t.Fatalf("#%d: P got %f exp %f", i, d.Pressure[i], e.P)
		}
		if !scalar.EqualWithinRel(d.Density[i], e.rho, 2e-3) {
			t.Fatalf("#%d: rho got %f exp %f", i, d.Density[i], e.rho)
		}
		if !scalar.EqualWithinRel(d.SpeedOfSound[i], e.a, 1e-3) {
			t.Fatalf("#%d: a got %f exp %f", i, d.SpeedOfSound[i], e.a)
		}
	}
	if !scalar.EqualWithinRel(d.DynamicViscosity[0], 1.7894e-5, 1e-3) {
		t.Fatalf("sea level viscosity got %e", d.DynamicViscosity[0])
	}
	if d.Gravity[0] != G0 || d.Gravity[3] >= G0 {
		t.Fatalf("incorrect gravity %+v", d.Gravity)
	}
}

func TestTemperatureDeviation(t *testing.T) {
	std, _ := US1976{}.ComputeValues([]float64{0, 5000}, nil)
	hot, err := US1976{}.ComputeValues([]float64{0, 5000}, []float64{15})
	if err != nil {
		t.Fatal(err)
	}
	for i := range std.Pressure {
		if hot.Pressure[i] != std.Pressure[i] {
			t.Fatal("temperature deviation changed the pressure")
		}
		if !scalar.EqualWithinAbs(hot.Temperature[i]-std.Temperature[i], 15, 1e-12) {
			t.Fatalf("temperature deviation not applied: %f", hot.Temperature[i]-std.Temperature[i])
		}
		if hot.Density[i] >= std.Density[i] {
			t.Fatal("hot day is not less dense")
		}
	}
	if _, err := (US1976{}).ComputeValues([]float64{0, 1, 2}, []float64{1, 2}); err == nil {
		t.Fatal("mismatched deviations accepted")
	}
}

func TestAltitudeRange(t *testing.T) {
	for _, z := range []float64{-6000, 90000} {
		if _, err := (US1976{}).ComputeValues([]float64{0, z}, nil); !errors.Is(err, ErrAltitudeRange) {
			t.Fatalf("%f m: expected ErrAltitudeRange got %v", z, err)
		}
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Density did not panic out of range")
		}
	}()
	Density(1e6)
}
