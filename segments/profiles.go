package segments

import (
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/atmosphere"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/units"
)

const degree = units.Degree

// Sea level standard day, for the air speed conversions.
var (
	seaLevelPressure = 101325.
	seaLevelDensity  = 101325. / (atmosphere.GasConstant * 288.15)
	seaLevelSound    = math.Sqrt(atmosphere.HeatRatio * atmosphere.GasConstant * 288.15)
)

// speedLaw returns the true air speed at the given altitudes and control points.
type speedLaw func(seg *rcaide.Segment, alt, x []float64) ([]float64, error)

func constantSpeed(v float64) speedLaw {
	return linearSpeed(v, v)
}

func linearSpeed(v0, v1 float64) speedLaw {
	return func(_ *rcaide.Segment, _, x []float64) ([]float64, error) {
		return linspace(v0, v1, x), nil
	}
}

func constantMach(m float64) speedLaw {
	return linearMach(m, m)
}

func linearMach(m0, m1 float64) speedLaw {
	return func(seg *rcaide.Segment, alt, x []float64) ([]float64, error) {
		d, err := atmosphereAt(seg, alt)
		if err != nil {
			return nil, err
		}
		V := linspace(m0, m1, x)
		for i := range V {
			V[i] *= d.SpeedOfSound[i]
		}
		return V, nil
	}
}

// calibratedSpeed converts a calibrated air speed through the impact pressure.
func calibratedSpeed(cas float64) speedLaw {
	return func(seg *rcaide.Segment, alt, _ []float64) ([]float64, error) {
		d, err := atmosphereAt(seg, alt)
		if err != nil {
			return nil, err
		}
		r := cas / seaLevelSound
		qc := seaLevelPressure * (math.Pow(1+0.2*r*r, 3.5) - 1)
		V := make([]float64, len(alt))
		for i := range V {
			mach := math.Sqrt(5 * (math.Pow(qc/d.Pressure[i]+1, 2/7.) - 1))
			V[i] = mach * d.SpeedOfSound[i]
		}
		return V, nil
	}
}

func equivalentSpeed(eas float64) speedLaw {
	return func(seg *rcaide.Segment, alt, _ []float64) ([]float64, error) {
		d, err := atmosphereAt(seg, alt)
		if err != nil {
			return nil, err
		}
		V := make([]float64, len(alt))
		for i := range V {
			V[i] = eas * math.Sqrt(seaLevelDensity/d.Density[i])
		}
		return V, nil
	}
}

func dynamicPressureSpeed(q float64) speedLaw {
	return func(seg *rcaide.Segment, alt, _ []float64) ([]float64, error) {
		d, err := atmosphereAt(seg, alt)
		if err != nil {
			return nil, err
		}
		V := make([]float64, len(alt))
		for i := range V {
			V[i] = math.Sqrt(2 * q / d.Density[i])
		}
		return V, nil
	}
}

// verticalLaw returns the vertical speed, positive up, for the given air speeds.
type verticalLaw func(V []float64) []float64

func constantRate(w float64) verticalLaw {
	return func(V []float64) []float64 {
		out := make([]float64, len(V))
		for i := range out {
			out[i] = w
		}
		return out
	}
}

func constantAngle(gamma float64) verticalLaw {
	return pathAngles([]float64{gamma})
}

// pathAngles uses one flight path angle per point, or a single one for all of them.
func pathAngles(gamma []float64) verticalLaw {
	return func(V []float64) []float64 {
		out := make([]float64, len(V))
		for i := range out {
			g := gamma[0]
			if len(gamma) > 1 {
				g = gamma[i]
			}
			out[i] = V[i] * math.Sin(g)
		}
		return out
	}
}

func linspace(v0, v1 float64, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = v0 + (v1-v0)*xi
	}
	return out
}

// climbProfile flies from altitude h0 to h1, linearly over the control points. The time
// follows from integrating the inverse of the vertical speed over the altitude.
func climbProfile(seg *rcaide.Segment, h0, h1 float64, speed speedLaw, vertical verticalLaw) error {
	x := seg.State.Numerics.Dimensionless.X
	alt := linspace(h0, h1, x)
	V, err := speed(seg, alt, x)
	if err != nil {
		return err
	}
	w := vertical(V)
	n := len(x)
	vx, vz, dtdx := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		if math.Abs(w[i]) > V[i] {
			return fmt.Errorf("%w: segment `%s` vertical speed %.2f m/s above its air speed %.2f m/s", rcaide.ErrInvalidArgument, seg.Tag(), w[i], V[i])
		}
		vx[i] = math.Sqrt(V[i]*V[i] - w[i]*w[i])
		vz[i] = -w[i]
		if h1 != h0 {
			dtdx[i] = (h1 - h0) / w[i]
		}
	}
	return writeProfile(seg, integratedTime(seg, dtdx), alt, vx, make([]float64, n), vz)
}

// distanceProfile flies from altitude h0 to h1 over a horizontal distance, the altitude
// being linear in the distance flown.
func distanceProfile(seg *rcaide.Segment, h0, h1, distance float64, speed speedLaw) error {
	x := seg.State.Numerics.Dimensionless.X
	alt := linspace(h0, h1, x)
	V, err := speed(seg, alt, x)
	if err != nil {
		return err
	}
	sg, cg := math.Sincos(math.Atan2(h1-h0, distance))
	n := len(x)
	vx, vz, dtdx := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		vx[i] = V[i] * cg
		vz[i] = -V[i] * sg
		dtdx[i] = distance / vx[i]
	}
	return writeProfile(seg, integratedTime(seg, dtdx), alt, vx, make([]float64, n), vz)
}

// levelProfile flies at constant altitude for the given duration with the given
// horizontal speeds along the course.
func levelProfile(seg *rcaide.Segment, altitude, duration float64, V []float64) error {
	x := seg.State.Numerics.Dimensionless.X
	n := len(x)
	t, err := spannedTime(seg, duration)
	if err != nil {
		return err
	}
	return writeProfile(seg, t, linspace(altitude, altitude, x), V, make([]float64, n), make([]float64, n))
}

// spannedTime returns the times of the control points for a segment of the given duration.
// Only single point segments may have no duration.
func spannedTime(seg *rcaide.Segment, duration float64) ([]float64, error) {
	x := seg.State.Numerics.Dimensionless.X
	if len(x) > 1 && !(duration > 0) {
		return nil, fmt.Errorf("%w: segment `%s` has a non positive duration of %.3g s", rcaide.ErrInvalidArgument, seg.Tag(), duration)
	}
	t0 := seg.State.Conditions.Array(rcaide.PathTime).At(0, 0)
	return linspace(t0, t0+duration, x), nil
}

// integratedTime returns the times of the control points from dt/dx.
func integratedTime(seg *rcaide.Segment, dtdx []float64) []float64 {
	t0 := seg.State.Conditions.Array(rcaide.PathTime).At(0, 0)
	t := rcaide.Integrate(seg.State.Numerics.Dimensionless, dtdx)
	for i := range t {
		t[i] += t0
	}
	return t
}

// writeProfile stores the kinematics and updates the time operators and the acceleration.
func writeProfile(seg *rcaide.Segment, t, alt, vx, vy, vz []float64) error {
	c := seg.State.Conditions
	c.Array(rcaide.PathTime).SetCol(0, t)
	c.Array(rcaide.PathAltitude).SetCol(0, alt)
	v := c.Array(rcaide.PathVelocity)
	v.SetCol(0, vx)
	v.SetCol(1, vy)
	v.SetCol(2, vz)
	updateDifferentials(seg)
	return nil
}

// updateDifferentials maps the operators onto the time of the control points and
// differentiates the velocity.
func updateDifferentials(seg *rcaide.Segment) {
	num := &seg.State.Numerics
	c := seg.State.Conditions
	num.Time = num.Dimensionless.Mapped(c.Array(rcaide.PathTime).Col(0))
	v := c.Array(rcaide.PathVelocity)
	a := c.Array(rcaide.PathAcceleration)
	for j := 0; j < 3; j++ {
		a.SetCol(j, rcaide.Differentiate(num.Time, v.Col(j)))
	}
}

// elapsedTime returns the elapsed time unknown.
func elapsedTime(seg *rcaide.Segment) float64 {
	return seg.State.Unknowns.Array(UnknownElapsedTime).At(0, 0)
}

// withStart prepends v0 to the velocity unknown, which holds every point but the first.
func withStart(seg *rcaide.Segment, v0 float64) []float64 {
	return append([]float64{v0}, seg.State.Unknowns.Array(UnknownVelocity).Col(0)...)
}
