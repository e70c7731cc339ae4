package rcaide

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Dispersion defines a Monte Carlo batch of missions.
type Dispersion struct {
	Runs             int
	Seed             uint64
	MassSigma        float64 // kg, one sigma on the takeoff mass
	TemperatureSigma float64 // K, one sigma on the temperature deviation
	Concurrency      int
	ContinueOnError  bool
}

// DispersionDraw holds the perturbations of one run.
type DispersionDraw struct {
	MassOffset           float64
	TemperatureDeviation float64
}

// MissionFactory builds the mission of a run from its draw.
type MissionFactory func(run int, draw DispersionDraw) (*Mission, error)

// DispersionRun is the outcome of one run.
type DispersionRun struct {
	Draw DispersionDraw
	MissionResult
}

// Draws samples the perturbations of every run. Null sigmas yield null offsets.
func (d Dispersion) Draws() ([]DispersionDraw, error) {
	if d.Runs <= 0 {
		return nil, invalidf("dispersion needs at least one run (got %d)", d.Runs)
	}
	if d.MassSigma < 0 || d.TemperatureSigma < 0 {
		return nil, invalidf("negative dispersion sigma")
	}
	draws := make([]DispersionDraw, d.Runs)
	var sigmas []float64
	var targets []func(*DispersionDraw, float64)
	if d.MassSigma > 0 {
		sigmas = append(sigmas, d.MassSigma)
		targets = append(targets, func(dr *DispersionDraw, v float64) { dr.MassOffset = v })
	}
	if d.TemperatureSigma > 0 {
		sigmas = append(sigmas, d.TemperatureSigma)
		targets = append(targets, func(dr *DispersionDraw, v float64) { dr.TemperatureDeviation = v })
	}
	if len(sigmas) == 0 {
		return draws, nil
	}
	cov := mat.NewSymDense(len(sigmas), nil)
	for i, s := range sigmas {
		cov.SetSym(i, i, s*s)
	}
	dist, ok := distmv.NewNormal(make([]float64, len(sigmas)), cov, rand.NewPCG(d.Seed, d.Seed^0x9e3779b97f4a7c15))
	if !ok {
		return nil, invalidf("dispersion covariance is not positive definite")
	}
	for i := range draws {
		sample := dist.Rand(nil)
		for k, set := range targets {
			set(&draws[i], sample[k])
		}
	}
	return draws, nil
}

// Disperse builds one mission per draw with the factory and evaluates them as a batch.
func Disperse(ctx context.Context, d Dispersion, factory MissionFactory) ([]DispersionRun, error) {
	draws, err := d.Draws()
	if err != nil {
		return nil, err
	}
	batch := NewMissions()
	for i, draw := range draws {
		m, err := factory(i, draw)
		if err != nil {
			return nil, err
		}
		if _, err := batch.AppendMission(m); err != nil {
			return nil, err
		}
	}
	results, err := batch.Evaluate(ctx, EvaluateOptions{Concurrency: d.Concurrency, ContinueOnError: d.ContinueOnError})
	runs := make([]DispersionRun, len(results))
	for i, r := range results {
		runs[i] = DispersionRun{Draw: draws[i], MissionResult: r}
	}
	return runs, err
}
