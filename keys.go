package rcaide

// Paths of the conditions shared by every aerodynamic segment. Inertial frames have x
// along the true course and z pointing down.
const (
	PathTime           = "frames.inertial.time"
	PathPosition       = "frames.inertial.position_vector"
	PathVelocity       = "frames.inertial.velocity_vector"
	PathAcceleration   = "frames.inertial.acceleration_vector"
	PathGravityForce   = "frames.inertial.gravity_force_vector"
	PathThrustForce    = "frames.inertial.thrust_force_vector"
	PathTotalForce     = "frames.inertial.total_force_vector"
	PathRange          = "frames.inertial.aircraft_range"
	PathBodyRotations  = "frames.body.inertial_rotations" // roll, pitch, yaw
	PathBodyThrust     = "frames.body.thrust_force_vector"
	PathLiftForce      = "frames.wind.lift_force_vector"
	PathDragForce      = "frames.wind.drag_force_vector"
	PathPitchMoment    = "frames.wind.moment_vector"
	PathLatitude       = "frames.planet.latitude"
	PathLongitude      = "frames.planet.longitude"
	PathAltitude       = "freestream.altitude"
	PathPressure       = "freestream.pressure"
	PathTemperature    = "freestream.temperature"
	PathDensity        = "freestream.density"
	PathSpeedOfSound   = "freestream.speed_of_sound"
	PathViscosity      = "freestream.dynamic_viscosity"
	PathGravity        = "freestream.gravity"
	PathSpeed          = "freestream.velocity"
	PathMach           = "freestream.mach_number"
	PathDynamicPress   = "freestream.dynamic_pressure"
	PathReynolds       = "freestream.reynolds_number"
	PathAlpha          = "aerodynamics.angles.alpha"
	PathGamma          = "aerodynamics.angles.gamma"
	PathCL             = "aerodynamics.coefficients.lift"
	PathCD             = "aerodynamics.coefficients.drag"
	PathCM             = "aerodynamics.coefficients.moment"
	PathElevator       = "control_surfaces.elevator.deflection"
	PathMass           = "weights.total_mass"
	PathMassRate       = "weights.vehicle_mass_rate"
	PathPower          = "energy.total_power"
	PathEnergyUsed     = "energy.cumulative_energy"
	PathThrottle       = "energy.throttle"
	PathEnergy         = "energy"
	PathNetworkTorque  = "torque"
	PathNetworkEnergy  = "battery.energy"
	PathNetworkCurrent = "battery.current"
)

// defaultConditions returns the conditions of a segment before any declaration.
func defaultConditions() *Conditions {
	c := NewConditions()
	for _, p := range []string{PathPosition, PathVelocity, PathAcceleration, PathGravityForce,
		PathThrustForce, PathTotalForce, PathBodyRotations, PathBodyThrust, PathLiftForce,
		PathDragForce, PathPitchMoment} {
		c.DeepSet(p, Expanded(3, 0))
	}
	for _, p := range []string{PathTime, PathRange, PathLatitude, PathLongitude, PathAltitude,
		PathPressure, PathTemperature, PathDensity, PathSpeedOfSound, PathViscosity, PathGravity,
		PathSpeed, PathMach, PathDynamicPress, PathReynolds, PathAlpha, PathGamma, PathCL, PathCD,
		PathCM, PathElevator, PathMass, PathMassRate, PathPower, PathEnergyUsed, PathThrottle} {
		c.DeepSet(p, Expanded(1, 0))
	}
	return c
}
