// Package segments provides the flight segments a mission is made of. Every segment runs
// the same pipeline of steps: the variants only differ in the kinematics step, which turns
// their parameters and unknowns into a time history of altitude and velocity, and in the
// unknowns and residuals they declare.
//
// Parameters left to rcaide.Unset are either required or, for start values, carried over
// from the last point of the previous segment.
package segments

import (
	"fmt"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

// Names of the unknowns and residuals.
const (
	UnknownThrottle        = "throttle"
	UnknownBodyAngle       = "body_angle"
	UnknownElevator        = "elevator_deflection"
	UnknownVelocity        = "velocity"
	UnknownElapsedTime     = "elapsed_time"
	UnknownAltitude        = "altitude"
	UnknownFlightPathAngle = "flight_path_angle"
	UnknownAcceleration    = "acceleration"

	ResidualForceX        = "force_x"
	ResidualForceZ        = "force_z"
	ResidualMomentY       = "moment_y"
	ResidualAltitude      = "altitude"
	ResidualFinalAltitude = "final_altitude"
	ResidualFinalVelocity = "final_velocity"
)

type step = rcaide.Step[*rcaide.Segment]

// hooks are the variant specific steps of the pipeline. Nil hooks are no-ops.
type hooks struct {
	validate   step // initialize.validate, after the shared checks
	declare    step // initialize.declare, after the controls and before the networks
	initialize step // initialize.conditions, once the state is expanded
	kinematics step // iterate.conditions.differentials
	residuals  step // iterate.residuals.segment
}

// wire replaces the process of seg by the shared pipeline with the given hooks.
func wire(seg *rcaide.Segment, h hooks) {
	ini := rcaide.NewProcess[*rcaide.Segment]()
	ini.Set("validate", chain(validateAnalyses, h.validate))
	ini.Set("declare", chain(declareControls, h.declare, declareNetworks))
	ini.Set("expand_state", rcaide.ExpandState)
	ini.Set("differentials", rcaide.DifferentialsDimensionless)
	ini.Set("conditions", chain(initializeConditions, h.initialize))
	seg.Process.SetProcess(rcaide.PhaseInitialize, ini)

	iter := seg.Phase(rcaide.PhaseIterate)
	iter.Sub("initials").
		Set("time", InitialTime).
		Set("weights", InitialWeights).
		Set("inertial_position", InitialPosition).
		Set("energy", InitialEnergy)
	iter.Sub("unknowns").
		Set("controls", UnpackControls).
		Set("network", UnpackNetworks)
	iter.Sub("conditions").
		Set("differentials", h.kinematics).
		Set("altitude", UpdateAltitude).
		Set("atmosphere", UpdateAtmosphere).
		Set("gravity", UpdateGravity).
		Set("freestream", UpdateFreestream).
		Set("orientations", UpdateOrientations).
		Set("energy", UpdateEnergy).
		Set("aerodynamics", UpdateAerodynamics).
		Set("stability", UpdateStability).
		Set("weights", UpdateWeights).
		Set("forces", UpdateForces)
	res := iter.Sub("residuals").
		Set("flight_dynamics", FlightDynamicsResiduals).
		Set("network", NetworkResiduals)
	if h.residuals != nil {
		res.Set("segment", h.residuals)
	}
	seg.Phase(rcaide.PhasePostProcess).
		Set("inertial_position", IntegratePosition).
		Set("planet_position", PlanetPosition).
		Set("energy", CumulativeEnergy).
		Set("noise", nil).Skip("noise").
		Set("emissions", nil).Skip("emissions")
}

func chain(steps ...step) step {
	return func(seg *rcaide.Segment) error {
		for _, s := range steps {
			if s == nil {
				continue
			}
			if err := s(seg); err != nil {
				return err
			}
		}
		return nil
	}
}

// aircraft declares the unknowns and residuals of a trimmed fixed wing segment.
func aircraft(seg *rcaide.Segment) {
	seg.Controls.Throttle.Active = true
	seg.Controls.BodyAngle.Active = true
	seg.FlightDynamics.ForceX = true
	seg.FlightDynamics.ForceZ = true
}

func validateAnalyses(seg *rcaide.Segment) error {
	a := seg.Analyses
	switch {
	case a == nil || a.Atmosphere == nil:
		return missing(seg, "atmosphere analysis")
	case a.Aerodynamics == nil:
		return missing(seg, "aerodynamics analysis")
	case len(a.Networks) == 0:
		return missing(seg, "propulsion network")
	case a.Weights == nil && !hasInitial(seg, rcaide.PathMass):
		return missing(seg, "weights analysis")
	}
	return nil
}

func missing(seg *rcaide.Segment, what string) error {
	return fmt.Errorf("%w: segment `%s` has no %s", rcaide.ErrMissingAttribute, seg.Tag(), what)
}

type param struct {
	name  string
	value float64
}

// required returns an error naming the first unset parameter.
func required(seg *rcaide.Segment, params ...param) error {
	for _, p := range params {
		if rcaide.IsUnset(p.value) {
			return missing(seg, "`"+p.name+"`")
		}
	}
	return nil
}

// positive returns an error naming the first parameter which is not strictly positive.
func positive(seg *rcaide.Segment, params ...param) error {
	if err := required(seg, params...); err != nil {
		return err
	}
	for _, p := range params {
		if p.value <= 0 {
			return fmt.Errorf("%w: segment `%s` needs a positive `%s` (got %f)", rcaide.ErrInvalidArgument, seg.Tag(), p.name, p.value)
		}
	}
	return nil
}

// startOrInitial requires that a start value is either given or carried over.
func startOrInitial(seg *rcaide.Segment, name string, value float64, path string) error {
	if rcaide.IsUnset(value) && !hasInitial(seg, path) {
		return missing(seg, "`"+name+"` and no previous segment")
	}
	return nil
}

// start returns value, or the carried over value at path when value is unset.
func start(seg *rcaide.Segment, value float64, path string) float64 {
	if !rcaide.IsUnset(value) {
		return value
	}
	v, _ := initialValue(seg, path, 0)
	return v
}

func hasInitial(seg *rcaide.Segment, path string) bool {
	_, ok := initialValue(seg, path, 0)
	return ok
}

// initialValue returns column col of the last row the previous segment left at path.
func initialValue(seg *rcaide.Segment, path string, col int) (float64, bool) {
	if seg.State.Initials == nil {
		return 0, false
	}
	a, ok := seg.State.Initials.Lookup(path)
	if !ok || a.Pending() || a.Len() == 0 {
		return 0, false
	}
	return a.Last(col), true
}

func guess(cv rcaide.ControlVariable, def float64, adjust int) *rcaide.Array {
	if len(cv.InitialGuess) > 1 {
		return rcaide.Column(cv.InitialGuess)
	}
	return rcaide.ExpandedValue(1, adjust, cv.Guess(def))
}

// declareControls adds the active controls to the unknowns and the flight dynamics to
// the residuals. A velocity unknown starts at the second point, the first one being the
// initial speed, and the tangential force residual then skips the first point as well.
func declareControls(seg *rcaide.Segment) error {
	n := seg.State.Numerics.NumberOfControlPoints
	c := seg.Controls
	u := seg.State.Unknowns
	declared := []struct {
		key    string
		cv     rcaide.ControlVariable
		def    float64
		adjust int
	}{
		{UnknownThrottle, c.Throttle, 0.5, 0},
		{UnknownBodyAngle, c.BodyAngle, 3 * degree, 0},
		{UnknownElevator, c.ElevatorDeflection, 0, 0},
		{UnknownVelocity, c.Velocity, 100, 1},
		{UnknownAltitude, c.Altitude, 0, 0},
		{UnknownFlightPathAngle, c.FlightPathAngle, 3 * degree, 0},
		{UnknownAcceleration, c.Acceleration, 0, 0},
	}
	for _, d := range declared {
		if !d.cv.Active {
			continue
		}
		if g := len(d.cv.InitialGuess); g > 1 && g != n-d.adjust {
			return fmt.Errorf("%w: segment `%s` has %d initial guesses of `%s` for %d points", rcaide.ErrInvalidArgument, seg.Tag(), g, d.key, n-d.adjust)
		}
		u.Set(d.key, guess(d.cv, d.def, d.adjust))
	}
	if c.ElapsedTime.Active {
		u.Set(UnknownElapsedTime, rcaide.NewFixed(1, 1, []float64{c.ElapsedTime.Guess(60)}))
	}

	r := seg.State.Residuals
	fd := seg.FlightDynamics
	if fd.ForceX {
		adjust := 0
		if c.Velocity.Active {
			adjust = 1
		}
		r.Set(ResidualForceX, rcaide.Expanded(1, adjust))
	}
	if fd.ForceZ {
		r.Set(ResidualForceZ, rcaide.Expanded(1, 0))
	}
	if fd.MomentY {
		r.Set(ResidualMomentY, rcaide.Expanded(1, 0))
	}
	return nil
}

// declareNetworks inserts the operating conditions of every network under the energy
// node, along with the unknowns and residuals of the balanced ones.
func declareNetworks(seg *rcaide.Segment) error {
	energy := seg.State.Conditions.Sub(rcaide.PathEnergy)
	for _, n := range seg.Analyses.Networks {
		if energy.Has(n.Tag()) {
			return fmt.Errorf("%w: segment `%s` has two networks tagged `%s`", rcaide.ErrInvalidArgument, seg.Tag(), n.Tag())
		}
		n.AppendOperatingConditions(seg, energy)
		if b, ok := n.(rcaide.Balancer); ok {
			b.AppendUnknownsResiduals(seg)
		}
	}
	return nil
}

// initializeConditions seeds the attitude, which is level unless it is an unknown.
func initializeConditions(seg *rcaide.Segment) error {
	seg.State.Conditions.Array(rcaide.PathBodyRotations).Fill(0)
	return nil
}

// linearGuess sets the unknown at key to the straight line from v0 to v1 over the control
// points it holds, unless the user gave a profile.
func linearGuess(seg *rcaide.Segment, key string, cv rcaide.ControlVariable, v0, v1 float64) {
	if len(cv.InitialGuess) > 0 {
		return
	}
	a := seg.State.Unknowns.Array(key)
	x := seg.State.Numerics.Dimensionless.X
	rows, _ := a.Dims()
	off := len(x) - rows
	for i := 0; i < rows; i++ {
		a.Set(i, 0, v0+(v1-v0)*x[i+off])
	}
}
