package vehicle

import (
	"fmt"
	"math"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
)

// MotorKind is the closed set of motor models. Torque returns the shaft torque (N m) and
// the current drawn (A) at the applied voltage and shaft speed (rad/s).
type MotorKind interface {
	Torque(voltage, omega float64) (torque, current float64)
	isMotor()
}

// DCMotor is a brushed DC motor.
type DCMotor struct {
	Resistance    float64 `mapstructure:"resistance"`      // Ohm
	SpeedConstant float64 `mapstructure:"speed_constant"`  // rad/s/V
	NoLoadCurrent float64 `mapstructure:"no_load_current"` // A
}

// Torque implements MotorKind.
func (m DCMotor) Torque(voltage, omega float64) (torque, current float64) {
	current = (voltage - omega/m.SpeedConstant) / m.Resistance
	return (current - m.NoLoadCurrent) / m.SpeedConstant, current
}

func (DCMotor) isMotor() {}

// PMSMMotor is a permanent magnet synchronous motor driven on the q axis.
type PMSMMotor struct {
	Resistance  float64 `mapstructure:"resistance"`   // Ohm, phase
	FluxLinkage float64 `mapstructure:"flux_linkage"` // Wb
	PolePairs   int     `mapstructure:"pole_pairs"`
}

// Torque implements MotorKind.
func (m PMSMMotor) Torque(voltage, omega float64) (torque, current float64) {
	emf := float64(m.PolePairs) * m.FluxLinkage * omega
	current = (voltage - emf) / m.Resistance
	return 1.5 * float64(m.PolePairs) * m.FluxLinkage * current, current
}

func (PMSMMotor) isMotor() {}

// Battery is an ideal energy store at constant voltage.
type Battery struct {
	MaxEnergy float64 `mapstructure:"max_energy"` // J
	Voltage   float64 `mapstructure:"voltage"`    // V
}

// Rotor is a fixed pitch propeller or lift rotor with constant coefficients.
type Rotor struct {
	Diameter float64 `mapstructure:"diameter"` // m
	Ct       float64 `mapstructure:"ct"`
	Cq       float64 `mapstructure:"cq"`
	Count    int     `mapstructure:"count"`
	Angle    float64 `mapstructure:"angle"` // rad, nose up from the body x axis
}

// Loads returns the thrust (N) and torque (N m) of one rotor at shaft speed omega.
func (r Rotor) Loads(density, omega float64) (thrust, torque float64) {
	n := omega / (2 * math.Pi)
	n2 := n * math.Abs(n)
	d2 := r.Diameter * r.Diameter
	thrust = r.Ct * density * n2 * d2 * d2
	torque = r.Cq * density * n2 * d2 * d2 * r.Diameter
	return
}

// ElectricNetwork is a battery feeding identical motors, each one driving a rotor. The
// throttle sets the fraction of the battery voltage applied to the motors, and the rotor
// speed is an unknown balanced against the motor torque.
type ElectricNetwork struct {
	NetworkTag string    `mapstructure:"tag"`
	Battery    Battery   `mapstructure:"battery"`
	Motor      MotorKind `mapstructure:"-"`
	Rotor      Rotor     `mapstructure:"rotor"`
	RotorSpeed float64   `mapstructure:"rotor_speed"` // rad/s, initial guess
}

// Tag implements rcaide.Network.
func (n *ElectricNetwork) Tag() string { return n.NetworkTag }

func (n *ElectricNetwork) path(key string) string {
	return rcaide.PathEnergy + "." + n.NetworkTag + "." + key
}

// AppendOperatingConditions implements rcaide.Network.
func (n *ElectricNetwork) AppendOperatingConditions(seg *rcaide.Segment, energy *rcaide.Conditions) {
	sub := energy.Sub(n.NetworkTag)
	for _, key := range []string{"rotor_speed", "motor_torque", "rotor_torque", "thrust", "power", "voltage", rcaide.PathNetworkCurrent, rcaide.PathNetworkEnergy} {
		sub.DeepSet(key, rcaide.Expanded(1, 0))
	}
}

// AppendUnknownsResiduals implements rcaide.Balancer.
func (n *ElectricNetwork) AppendUnknownsResiduals(seg *rcaide.Segment) {
	guess := n.RotorSpeed
	if guess == 0 {
		guess = 100
	}
	seg.State.Unknowns.DeepSet(n.NetworkTag+".rotor_speed", rcaide.ExpandedValue(1, 0, guess))
	seg.State.Residuals.DeepSet(n.NetworkTag+"."+rcaide.PathNetworkTorque, rcaide.Expanded(1, 0))
}

// UnpackUnknowns implements rcaide.Balancer.
func (n *ElectricNetwork) UnpackUnknowns(seg *rcaide.Segment) error {
	omega := seg.State.Unknowns.Array(n.NetworkTag + ".rotor_speed")
	seg.State.Conditions.Array(n.path("rotor_speed")).SetCol(0, omega.Col(0))
	return nil
}

// Residuals implements rcaide.Balancer: the motor and rotor torques must match.
func (n *ElectricNetwork) Residuals(seg *rcaide.Segment) error {
	c := seg.State.Conditions
	motor := c.Array(n.path("motor_torque")).Col(0)
	rotor := c.Array(n.path("rotor_torque")).Col(0)
	res := seg.State.Residuals.Array(n.NetworkTag + "." + rcaide.PathNetworkTorque)
	for i := range motor {
		res.Set(i, 0, motor[i]-rotor[i])
	}
	return nil
}

// ComputePerformance implements rcaide.Network.
func (n *ElectricNetwork) ComputePerformance(s *rcaide.State) (rcaide.Performance, error) {
	if n.Motor == nil {
		return rcaide.Performance{}, fmt.Errorf("electric network `%s` has no motor", n.NetworkTag)
	}
	c := s.Conditions
	throttle := c.Array(rcaide.PathThrottle).Col(0)
	rho := c.Array(rcaide.PathDensity).Col(0)
	omega := c.Array(n.path("rotor_speed")).Col(0)
	rows := len(throttle)
	perf := rcaide.Performance{
		Thrust:   rcaide.NewArray(rows, 3),
		MassRate: make([]float64, rows),
		Power:    make([]float64, rows),
	}
	count := float64(max(n.Rotor.Count, 1))
	for i := 0; i < rows; i++ {
		voltage := throttle[i] * n.Battery.Voltage
		qm, current := n.Motor.Torque(voltage, omega[i])
		thrust, qr := n.Rotor.Loads(rho[i], omega[i])
		power := count * voltage * current
		c.Array(n.path("voltage")).Set(i, 0, voltage)
		c.Array(n.path("motor_torque")).Set(i, 0, qm)
		c.Array(n.path("rotor_torque")).Set(i, 0, qr)
		c.Array(n.path("thrust")).Set(i, 0, count*thrust)
		c.Array(n.path("power")).Set(i, 0, power)
		c.Array(n.path(rcaide.PathNetworkCurrent)).Set(i, 0, count*current)
		perf.Thrust.Set(i, 0, count*thrust*math.Cos(n.Rotor.Angle))
		perf.Thrust.Set(i, 2, -count*thrust*math.Sin(n.Rotor.Angle))
		perf.Power[i] = power
	}
	return perf, nil
}

// InitializeEnergy implements rcaide.EnergyInitializer: the battery starts full, or
// where the previous segment left it.
func (n *ElectricNetwork) InitializeEnergy(seg *rcaide.Segment) error {
	e0 := n.Battery.MaxEnergy
	if ini := seg.State.Initials; ini != nil {
		if a, ok := ini.Lookup(n.path(rcaide.PathNetworkEnergy)); ok && !a.Pending() {
			e0 = a.Last(0)
		}
	}
	c := seg.State.Conditions.Array(n.path(rcaide.PathNetworkEnergy))
	c.Set(0, 0, e0)
	return nil
}

// UpdateEnergy implements rcaide.EnergyInitializer: the battery energy is its initial
// value minus the integral of the power drawn.
func (n *ElectricNetwork) UpdateEnergy(seg *rcaide.Segment, power []float64) error {
	energy := seg.State.Conditions.Array(n.path(rcaide.PathNetworkEnergy))
	e0 := energy.At(0, 0)
	ops := seg.State.Numerics.Time
	rows, _ := energy.Dims()
	if ops == nil || rows == 1 {
		energy.Fill(e0)
		return nil
	}
	used := rcaide.Integrate(ops, power)
	for i := 0; i < rows; i++ {
		energy.Set(i, 0, e0-used[i])
	}
	if last := energy.Last(0); last < 0 {
		seg.Logger().Log("level", "warning", "subsys", "energy", "network", n.NetworkTag, "battery(J)", last)
	}
	return nil
}
