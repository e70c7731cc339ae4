package rcaide

// AtmosphereData holds the atmospheric properties at every control point.
type AtmosphereData struct {
	Pressure         []float64 // Pa
	Temperature      []float64 // K
	Density          []float64 // kg/m^3
	SpeedOfSound     []float64 // m/s
	DynamicViscosity []float64 // Pa s
	Gravity          []float64 // m/s^2
}

// AtmosphereModel computes the atmosphere at the given geometric altitudes (m) and
// temperature deviations (K) from the standard day.
type AtmosphereModel interface {
	ComputeValues(altitude, temperatureDeviation []float64) (*AtmosphereData, error)
}

// AerodynamicsModel reads the angle of attack, the Mach number and the control surface
// deflections of the state and writes the lift, drag and pitching moment coefficients.
type AerodynamicsModel interface {
	Evaluate(s *State) error
	ReferenceArea() float64   // m^2
	ReferenceLength() float64 // m, mean aerodynamic chord
}

// Performance is the output of a propulsion network at every control point.
type Performance struct {
	Thrust   *Array    // N x 3, body frame
	MassRate []float64 // kg/s consumed
	Power    []float64 // W drawn from the energy source
}

// Network is a propulsion system. AppendOperatingConditions inserts the zero initialized
// subtree of the network under the energy node of the segment before the solve starts,
// and ComputePerformance is called on every iteration.
type Network interface {
	Tag() string
	AppendOperatingConditions(seg *Segment, energy *Conditions)
	ComputePerformance(s *State) (Performance, error)
}

// Balancer is a Network which adds its own unknowns and residuals to the solve, such as
// the rotor speed of an electric network balanced against the motor torque.
type Balancer interface {
	Network
	AppendUnknownsResiduals(seg *Segment)
	UnpackUnknowns(seg *Segment) error
	Residuals(seg *Segment) error
}

// EnergyInitializer is a Network which carries an energy store from one segment to the next.
type EnergyInitializer interface {
	Network
	InitializeEnergy(seg *Segment) error
	UpdateEnergy(seg *Segment, power []float64) error
}

// MassModel provides the mass of the vehicle when the mission starts.
type MassModel interface {
	TakeoffMass() float64 // kg
}

// Analyses bundles the external models a segment calls during its solve.
type Analyses struct {
	Atmosphere   AtmosphereModel
	Aerodynamics AerodynamicsModel
	Networks     []Network
	Weights      MassModel
	PlanetRadius float64 // m
}
