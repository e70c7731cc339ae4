package segments

import (
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/atmosphere"
)

// InitialTime starts the segment where the previous one ended, or at zero.
func InitialTime(seg *rcaide.Segment) error {
	t0, _ := initialValue(seg, rcaide.PathTime, 0)
	seg.State.Conditions.Array(rcaide.PathTime).Set(0, 0, t0)
	return nil
}

// InitialWeights sets the mass at the first point to the carried over mass, or to the
// takeoff mass of the vehicle.
func InitialWeights(seg *rcaide.Segment) error {
	m0, ok := initialValue(seg, rcaide.PathMass, 0)
	if !ok {
		if seg.Analyses.Weights == nil {
			return missing(seg, "weights analysis")
		}
		m0 = seg.Analyses.Weights.TakeoffMass()
	}
	seg.State.Conditions.Array(rcaide.PathMass).Set(0, 0, m0)
	return nil
}

// InitialPosition carries the horizontal position, the range and the planet position over.
func InitialPosition(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	pos := c.Array(rcaide.PathPosition)
	for j := 0; j < 2; j++ {
		v, _ := initialValue(seg, rcaide.PathPosition, j)
		pos.Set(0, j, v)
	}
	for _, p := range []string{rcaide.PathRange, rcaide.PathLatitude, rcaide.PathLongitude, rcaide.PathEnergyUsed} {
		v, _ := initialValue(seg, p, 0)
		c.Array(p).Set(0, 0, v)
	}
	return nil
}

// InitialEnergy lets the networks with an energy store set their initial charge.
func InitialEnergy(seg *rcaide.Segment) error {
	for _, n := range seg.Analyses.Networks {
		if e, ok := n.(rcaide.EnergyInitializer); ok {
			if err := e.InitializeEnergy(seg); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnpackControls copies the throttle, body angle and elevator unknowns into the conditions.
func UnpackControls(seg *rcaide.Segment) error {
	u := seg.State.Unknowns
	c := seg.State.Conditions
	if a, ok := u.Lookup(UnknownThrottle); ok {
		c.Array(rcaide.PathThrottle).SetCol(0, a.Col(0))
	}
	if a, ok := u.Lookup(UnknownBodyAngle); ok {
		c.Array(rcaide.PathBodyRotations).SetCol(1, a.Col(0))
	}
	if a, ok := u.Lookup(UnknownElevator); ok {
		c.Array(rcaide.PathElevator).SetCol(0, a.Col(0))
	}
	return nil
}

// UnpackNetworks lets the balanced networks unpack their unknowns.
func UnpackNetworks(seg *rcaide.Segment) error {
	for _, n := range seg.Analyses.Networks {
		if b, ok := n.(rcaide.Balancer); ok {
			if err := b.UnpackUnknowns(seg); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateAltitude sets the vertical position from the altitude.
func UpdateAltitude(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	alt := c.Array(rcaide.PathAltitude).Col(0)
	pos := c.Array(rcaide.PathPosition)
	for i, h := range alt {
		pos.Set(i, 2, -h)
	}
	return nil
}

// UpdateAtmosphere evaluates the atmosphere at every point. Its errors are returned as is.
func UpdateAtmosphere(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	d, err := atmosphereAt(seg, c.Array(rcaide.PathAltitude).Col(0))
	if err != nil {
		return err
	}
	c.Array(rcaide.PathPressure).SetCol(0, d.Pressure)
	c.Array(rcaide.PathTemperature).SetCol(0, d.Temperature)
	c.Array(rcaide.PathDensity).SetCol(0, d.Density)
	c.Array(rcaide.PathSpeedOfSound).SetCol(0, d.SpeedOfSound)
	c.Array(rcaide.PathViscosity).SetCol(0, d.DynamicViscosity)
	return nil
}

func atmosphereAt(seg *rcaide.Segment, alt []float64) (*rcaide.AtmosphereData, error) {
	return seg.Analyses.Atmosphere.ComputeValues(alt, []float64{seg.TemperatureDeviation})
}

// UpdateGravity applies the inverse square law of the planet.
func UpdateGravity(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	radius := seg.Analyses.PlanetRadius
	if radius <= 0 {
		radius = atmosphere.EarthRadius
	}
	alt := c.Array(rcaide.PathAltitude).Col(0)
	g := c.Array(rcaide.PathGravity)
	for i, h := range alt {
		r := radius / (radius + h)
		g.Set(i, 0, atmosphere.G0*r*r)
	}
	return nil
}

// UpdateFreestream computes the air speed, Mach number, dynamic pressure and Reynolds number.
func UpdateFreestream(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	vel := c.Array(rcaide.PathVelocity)
	rho := c.Array(rcaide.PathDensity).Col(0)
	a := c.Array(rcaide.PathSpeedOfSound).Col(0)
	mu := c.Array(rcaide.PathViscosity).Col(0)
	length := seg.Analyses.Aerodynamics.ReferenceLength()
	if length <= 0 {
		length = 1
	}
	speed := c.Array(rcaide.PathSpeed)
	mach := c.Array(rcaide.PathMach)
	q := c.Array(rcaide.PathDynamicPress)
	re := c.Array(rcaide.PathReynolds)
	for i := range rho {
		v := vel.Row(i)
		V := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		speed.Set(i, 0, V)
		mach.Set(i, 0, V/a[i])
		q.Set(i, 0, 0.5*rho[i]*V*V)
		re.Set(i, 0, rho[i]*V*length/mu[i])
	}
	return nil
}

// UpdateOrientations computes the flight path angle and the heading from the velocity,
// and the angle of attack from the pitch attitude.
func UpdateOrientations(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	vel := c.Array(rcaide.PathVelocity)
	rot := c.Array(rcaide.PathBodyRotations)
	gamma := c.Array(rcaide.PathGamma)
	alpha := c.Array(rcaide.PathAlpha)
	rows, _ := vel.Dims()
	for i := 0; i < rows; i++ {
		v := vel.Row(i)
		horizontal := math.Hypot(v[0], v[1])
		g := math.Atan2(-v[2], horizontal)
		gamma.Set(i, 0, g)
		alpha.Set(i, 0, rot.At(i, 1)-g)
		if horizontal > 0 {
			rot.Set(i, 2, math.Atan2(v[1], v[0]))
		}
	}
	return nil
}

// UpdateEnergy sums the performance of every network and rotates the thrust into the
// inertial frame. Networks with an energy store update it from the power they draw.
func UpdateEnergy(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	n := c.Size()
	thrust := make([]float64, 3*n)
	mdot := make([]float64, n)
	power := make([]float64, n)
	for _, net := range seg.Analyses.Networks {
		perf, err := net.ComputePerformance(seg.State)
		if err != nil {
			return err
		}
		if r, cols := perf.Thrust.Dims(); r != n || cols != 3 || len(perf.MassRate) != n || len(perf.Power) != n {
			return fmt.Errorf("%w: network `%s` returned %dx%d thrust for %d points", rcaide.ErrDimension, net.Tag(), r, cols, n)
		}
		for i, v := range perf.Thrust.Raw() {
			thrust[i] += v
		}
		for i := 0; i < n; i++ {
			mdot[i] += perf.MassRate[i]
			power[i] += perf.Power[i]
		}
		if e, ok := net.(rcaide.EnergyInitializer); ok {
			if err := e.UpdateEnergy(seg, perf.Power); err != nil {
				return err
			}
		}
	}
	body := c.Array(rcaide.PathBodyThrust)
	inertial := c.Array(rcaide.PathThrustForce)
	rot := c.Array(rcaide.PathBodyRotations)
	for i := 0; i < n; i++ {
		tx, ty, tz := thrust[3*i], thrust[3*i+1], thrust[3*i+2]
		body.Set(i, 0, tx)
		body.Set(i, 1, ty)
		body.Set(i, 2, tz)
		xb, yb, zb := bodyAxes(rot.At(i, 1), rot.At(i, 2))
		for j := 0; j < 3; j++ {
			inertial.Set(i, j, tx*xb[j]+ty*yb[j]+tz*zb[j])
		}
	}
	c.Array(rcaide.PathMassRate).SetCol(0, mdot)
	c.Array(rcaide.PathPower).SetCol(0, power)
	return nil
}

// bodyAxes returns the body axes in the inertial frame for a wings level attitude.
func bodyAxes(pitch, heading float64) (x, y, z [3]float64) {
	sp, cp := math.Sincos(pitch)
	sh, ch := math.Sincos(heading)
	x = [3]float64{cp * ch, cp * sh, -sp}
	y = [3]float64{-sh, ch, 0}
	z = [3]float64{sp * ch, sp * sh, cp}
	return
}

// UpdateAerodynamics evaluates the aerodynamic coefficients and the wind frame forces.
func UpdateAerodynamics(seg *rcaide.Segment) error {
	aero := seg.Analyses.Aerodynamics
	if err := aero.Evaluate(seg.State); err != nil {
		return err
	}
	c := seg.State.Conditions
	q := c.Array(rcaide.PathDynamicPress).Col(0)
	CL := c.Array(rcaide.PathCL).Col(0)
	CD := c.Array(rcaide.PathCD).Col(0)
	lift := c.Array(rcaide.PathLiftForce)
	drag := c.Array(rcaide.PathDragForce)
	S := aero.ReferenceArea()
	for i := range q {
		lift.Set(i, 2, -q[i]*S*CL[i])
		drag.Set(i, 0, -q[i]*S*CD[i])
	}
	return nil
}

// UpdateStability computes the pitching moment.
func UpdateStability(seg *rcaide.Segment) error {
	aero := seg.Analyses.Aerodynamics
	c := seg.State.Conditions
	q := c.Array(rcaide.PathDynamicPress).Col(0)
	CM := c.Array(rcaide.PathCM).Col(0)
	m := c.Array(rcaide.PathPitchMoment)
	qSc := aero.ReferenceArea() * aero.ReferenceLength()
	for i := range q {
		m.Set(i, 1, q[i]*qSc*CM[i])
	}
	return nil
}

// UpdateWeights integrates the mass rate from the initial mass.
func UpdateWeights(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	mass := c.Array(rcaide.PathMass)
	m0 := mass.At(0, 0)
	burnt := rcaide.Integrate(seg.State.Numerics.Time, c.Array(rcaide.PathMassRate).Col(0))
	for i, b := range burnt {
		mass.Set(i, 0, m0-b)
	}
	return nil
}

// UpdateForces sums gravity, thrust, lift and drag in the inertial frame. The lift is
// banked by the roll angle.
func UpdateForces(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	mass := c.Array(rcaide.PathMass).Col(0)
	g := c.Array(rcaide.PathGravity).Col(0)
	gamma := c.Array(rcaide.PathGamma).Col(0)
	rot := c.Array(rcaide.PathBodyRotations)
	lift := c.Array(rcaide.PathLiftForce)
	drag := c.Array(rcaide.PathDragForce)
	thrust := c.Array(rcaide.PathThrustForce)
	weight := c.Array(rcaide.PathGravityForce)
	total := c.Array(rcaide.PathTotalForce)
	for i := range mass {
		W := mass[i] * g[i]
		weight.Set(i, 0, 0)
		weight.Set(i, 1, 0)
		weight.Set(i, 2, W)
		sg, cg := math.Sincos(gamma[i])
		sh, ch := math.Sincos(rot.At(i, 2))
		sr, cr := math.Sincos(rot.At(i, 0))
		along := [3]float64{cg * ch, cg * sh, -sg}
		normal := [3]float64{-sg * ch, -sg * sh, -cg}
		lateral := [3]float64{-sh, ch, 0}
		L := -lift.At(i, 2)
		D := -drag.At(i, 0)
		for j := 0; j < 3; j++ {
			up := cr*normal[j] + sr*lateral[j]
			total.Set(i, j, weight.At(i, j)+thrust.At(i, j)+L*up-D*along[j])
		}
	}
	return nil
}

// FlightDynamicsResiduals writes the tangential and vertical equations of motion, and the
// pitching moment coefficient, for the residuals declared.
func FlightDynamicsResiduals(seg *rcaide.Segment) error {
	r := seg.State.Residuals
	c := seg.State.Conditions
	mass := c.Array(rcaide.PathMass).Col(0)
	F := c.Array(rcaide.PathTotalForce)
	a := c.Array(rcaide.PathAcceleration)
	rot := c.Array(rcaide.PathBodyRotations)
	n := len(mass)
	if res, ok := r.Lookup(ResidualForceX); ok {
		rows, _ := res.Dims()
		off := n - rows
		for k := 0; k < rows; k++ {
			i := k + off
			sh, ch := math.Sincos(rot.At(i, 2))
			fx := F.At(i, 0)*ch + F.At(i, 1)*sh
			ax := a.At(i, 0)*ch + a.At(i, 1)*sh
			res.Set(k, 0, fx/mass[i]-ax)
		}
	}
	if res, ok := r.Lookup(ResidualForceZ); ok {
		for i := 0; i < n; i++ {
			res.Set(i, 0, F.At(i, 2)/mass[i]-a.At(i, 2))
		}
	}
	if res, ok := r.Lookup(ResidualMomentY); ok {
		res.SetCol(0, c.Array(rcaide.PathCM).Col(0))
	}
	return nil
}

// NetworkResiduals lets the balanced networks write their residuals.
func NetworkResiduals(seg *rcaide.Segment) error {
	for _, n := range seg.Analyses.Networks {
		if b, ok := n.(rcaide.Balancer); ok {
			if err := b.Residuals(seg); err != nil {
				return err
			}
		}
	}
	return nil
}

// IntegratePosition integrates the horizontal velocity into the position and the range.
func IntegratePosition(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	ops := seg.State.Numerics.Time
	vel := c.Array(rcaide.PathVelocity)
	pos := c.Array(rcaide.PathPosition)
	rng := c.Array(rcaide.PathRange)
	vx, vy := vel.Col(0), vel.Col(1)
	ground := make([]float64, len(vx))
	for i := range vx {
		ground[i] = math.Hypot(vx[i], vy[i])
	}
	x0, y0, r0 := pos.At(0, 0), pos.At(0, 1), rng.At(0, 0)
	dx, dy, dr := rcaide.Integrate(ops, vx), rcaide.Integrate(ops, vy), rcaide.Integrate(ops, ground)
	for i := range dx {
		pos.Set(i, 0, x0+dx[i])
		pos.Set(i, 1, y0+dy[i])
		rng.Set(i, 0, r0+dr[i])
	}
	return nil
}

// PlanetPosition converts the horizontal displacement along the true course into
// latitude and longitude (degrees) on a spherical planet.
func PlanetPosition(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	radius := seg.Analyses.PlanetRadius
	if radius <= 0 {
		radius = atmosphere.EarthRadius
	}
	pos := c.Array(rcaide.PathPosition)
	lat := c.Array(rcaide.PathLatitude)
	lon := c.Array(rcaide.PathLongitude)
	lat0, lon0 := lat.At(0, 0), lon.At(0, 0)
	sc, cc := math.Sincos(seg.TrueCourse)
	coslat := math.Cos(lat0 * math.Pi / 180)
	rows, _ := pos.Dims()
	for i := 0; i < rows; i++ {
		dx := pos.At(i, 0) - pos.At(0, 0)
		dy := pos.At(i, 1) - pos.At(0, 1)
		north := dx*cc - dy*sc
		east := dx*sc + dy*cc
		lat.Set(i, 0, lat0+north/radius*180/math.Pi)
		if coslat > 1e-12 {
			lon.Set(i, 0, lon0+east/(radius*coslat)*180/math.Pi)
		} else {
			lon.Set(i, 0, lon0)
		}
	}
	return nil
}

// CumulativeEnergy integrates the power drawn since the mission started.
func CumulativeEnergy(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	used := c.Array(rcaide.PathEnergyUsed)
	e0 := used.At(0, 0)
	for i, e := range rcaide.Integrate(seg.State.Numerics.Time, c.Array(rcaide.PathPower).Col(0)) {
		used.Set(i, 0, e0+e)
	}
	seg.Logger().Log("level", "debug", "subsys", "energy", "used(J)", used.Last(0), "mass(kg)", c.Array(rcaide.PathMass).Last(0))
	return nil
}
