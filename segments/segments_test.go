package segments

import (
	"errors"
	"math"
	"sort"
	"testing"

	rcaide "github.com/leadsgroup/RCAIDE-UIUC-sub000"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/atmosphere"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/units"
	"github.com/leadsgroup/RCAIDE-UIUC-sub000/vehicle"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// flown attaches the analyses of v to the segment and returns its base.
func flown(s rcaide.Segmenter, v *vehicle.Vehicle) *rcaide.Segment {
	seg := s.Base()
	seg.Analyses = v.Analyses(nil)
	return seg
}

func mustConverge(t *testing.T, seg *rcaide.Segment) {
	t.Helper()
	if err := seg.Evaluate(); err != nil {
		t.Fatalf("segment `%s`: %s", seg.Tag(), err)
	}
	num := seg.State.Numerics
	if !num.Converged || seg.Status() != rcaide.PostProcessed {
		t.Fatalf("segment `%s` ended %s (converged=%v)", seg.Tag(), seg.Status(), num.Converged)
	}
	if num.ResidualNorm >= num.ToleranceSolution {
		t.Fatalf("segment `%s` |R|=%e above tolerance", seg.Tag(), num.ResidualNorm)
	}
}

func TestCruiseConstantSpeed(t *testing.T) {
	s := NewCruiseConstantSpeedConstantAltitude("cruise")
	s.Altitude = 10 * units.Kilometer
	s.AirSpeed = 230
	s.Distance = 100 * units.Kilometer
	seg := flown(s, vehicle.Transport())
	mustConverge(t, seg)
	num := seg.State.Numerics
	if num.Iterations > 10 {
		t.Fatalf("trimmed cruise took %d iterations", num.Iterations)
	}
	c := seg.State.Conditions
	if rng := c.Array(rcaide.PathRange).Last(0); !scalar.EqualWithinRel(rng, 100e3, 1e-9) {
		t.Fatalf("range got %f exp %f", rng, 100e3)
	}
	if tf := c.Array(rcaide.PathTime).Last(0); !scalar.EqualWithinRel(tf, 100e3/230, 1e-12) {
		t.Fatalf("duration got %f exp %f", tf, 100e3/230)
	}
	for i, th := range c.Array(rcaide.PathThrottle).Col(0) {
		if th <= 0.2 || th >= 0.7 {
			t.Fatalf("#%d: unexpected throttle %f", i, th)
		}
	}
	for i, a := range c.Array(rcaide.PathAlpha).Col(0) {
		if a <= 0 || a >= 6*units.Degree {
			t.Fatalf("#%d: unexpected angle of attack %f deg", i, a/units.Degree)
		}
	}
	mass := c.Array(rcaide.PathMass).Col(0)
	if mass[0] != 70000 || mass[len(mass)-1] >= mass[0] {
		t.Fatalf("no fuel burnt: %v", mass)
	}
	for i, z := range c.Array(rcaide.PathPosition).Col(2) {
		if z != -10000 {
			t.Fatalf("#%d: cruise changed altitude: z=%f", i, z)
		}
	}
	// Residuals at the solution.
	for _, key := range []string{ResidualForceX, ResidualForceZ} {
		if n := floats.Norm(seg.State.Residuals.Array(key).Col(0), math.Inf(1)); n > 1e-8 {
			t.Fatalf("%s residual %e", key, n)
		}
	}
}

func TestClimbConstantCAS(t *testing.T) {
	s := NewClimbConstantCASConstantRate("climb")
	s.AltitudeStart = 0
	s.AltitudeEnd = 1000
	s.CalibratedAirSpeed = 120
	s.ClimbRate = 3
	seg := flown(s, vehicle.Transport())
	mustConverge(t, seg)
	c := seg.State.Conditions
	if h := c.Array(rcaide.PathAltitude).Last(0); !scalar.EqualWithinAbs(h, 1000, 1e-6) {
		t.Fatalf("final altitude got %f exp 1000", h)
	}
	if tf := c.Array(rcaide.PathTime).Last(0); !scalar.EqualWithinRel(tf, 1000./3, 1e-2) {
		t.Fatalf("climb time got %f exp %f", tf, 1000./3)
	}
	vz := c.Array(rcaide.PathVelocity).Col(2)
	for i := range vz {
		if !scalar.EqualWithinAbs(vz[i], -3, 1e-12) {
			t.Fatalf("#%d: vertical speed got %f exp -3", i, vz[i])
		}
	}
	// The true air speed increases with altitude at constant CAS.
	V := c.Array(rcaide.PathSpeed).Col(0)
	if !scalar.EqualWithinRel(V[0], 120, 1e-6) || V[len(V)-1] <= V[0] {
		t.Fatalf("unexpected true air speeds %v", V)
	}
}

func TestSegmentVariants(t *testing.T) {
	climbMachAngle := NewClimbConstantMachConstantAngle("mach_angle")
	climbMachAngle.AltitudeStart = 1000
	climbMachAngle.AltitudeEnd = 2000
	climbMachAngle.Mach = 0.4
	climbMachAngle.ClimbAngle = 3 * units.Degree

	climbSpeed := NewClimbConstantSpeedConstantRate("speed_rate")
	climbSpeed.AltitudeStart = 500
	climbSpeed.AltitudeEnd = 3000
	climbSpeed.AirSpeed = 140
	climbSpeed.ClimbRate = 8

	climbMach := NewClimbConstantMachConstantRate("mach_rate")
	climbMach.AltitudeStart = 1000
	climbMach.AltitudeEnd = 3000
	climbMach.Mach = 0.45

	descent := NewDescentConstantSpeedConstantRate("descent")
	descent.AltitudeStart = 3000
	descent.AltitudeEnd = 1000
	descent.AirSpeed = 130
	descent.DescentRate = 5

	loiter := NewCruiseConstantMachConstantAltitudeLoiter("loiter")
	loiter.Altitude = 8000
	loiter.Mach = 0.6
	loiter.Time = 20 * units.Minute

	turn := NewCruiseCurvedConstantRadius("turn")
	turn.Altitude = 5000
	turn.AirSpeed = 150
	turn.TurnRadius = 5000
	turn.TurnAngle = 90 * units.Degree

	for _, s := range []rcaide.Segmenter{climbMachAngle, climbSpeed, climbMach, descent, loiter, turn} {
		mustConverge(t, flown(s, vehicle.Transport()))
	}

	if h := climbMachAngle.State.Conditions.Array(rcaide.PathAltitude).Last(0); !scalar.EqualWithinAbs(h, 2000, 1e-6) {
		t.Fatalf("constant mach constant angle climb ended at %f m", h)
	}
	if h := descent.State.Conditions.Array(rcaide.PathAltitude).Last(0); !scalar.EqualWithinAbs(h, 1000, 1e-9) {
		t.Fatalf("descent ended at %f m", h)
	}
	if vz := descent.State.Conditions.Array(rcaide.PathVelocity).At(3, 2); !scalar.EqualWithinAbs(vz, 5, 1e-12) {
		t.Fatalf("descent vertical speed got %f exp 5 (down)", vz)
	}
	if tf := loiter.State.Conditions.Array(rcaide.PathTime).Last(0); !scalar.EqualWithinAbs(tf, 1200, 1e-9) {
		t.Fatalf("loiter lasted %f s", tf)
	}
	c := turn.State.Conditions
	pos := c.Array(rcaide.PathPosition)
	if !scalar.EqualWithinAbs(pos.Last(0), 5000, 1e-6) || !scalar.EqualWithinAbs(pos.Last(1), 5000, 1e-6) {
		t.Fatalf("quarter turn ended at (%f, %f)", pos.Last(0), pos.Last(1))
	}
	if bank := c.Array(rcaide.PathBodyRotations).At(0, 0); !scalar.EqualWithinAbs(bank, math.Atan(150*150/(atmosphere.G0*5000)), 1e-12) {
		t.Fatalf("bank angle got %f deg", bank/units.Degree)
	}
	if heading := c.Array(rcaide.PathBodyRotations).Last(2); !scalar.EqualWithinAbs(heading, math.Pi/2, 1e-9) {
		t.Fatalf("final heading got %f deg", heading/units.Degree)
	}
}

func TestConstantThrottleAcceleration(t *testing.T) {
	seeded := NewCruiseConstantThrottleConstantAltitude("seeded")
	seeded.Altitude = 5000
	seeded.AirSpeedStart = 150
	seeded.AirSpeedEnd = 170
	seg := flown(seeded, vehicle.Transport())
	if err := seg.Phase(rcaide.PhaseInitialize).Run(seg); err != nil {
		t.Fatal(err)
	}
	if guess := elapsedTime(seg); guess != 10 {
		t.Fatalf("elapsed time guess %f s for a 20 m/s speed change", guess)
	}

	var durations []float64
	for _, throttle := range []float64{1, 0.9, 0.5} {
		s := NewCruiseConstantThrottleConstantAltitude("accelerate")
		s.Altitude = 5000
		s.Throttle = throttle
		s.AirSpeedStart = 150
		s.AirSpeedEnd = 170
		seg := flown(s, vehicle.Transport())
		mustConverge(t, seg)
		c := seg.State.Conditions
		tf := c.Array(rcaide.PathTime).Last(0)
		if tf <= 0 || !scalar.EqualWithinRel(tf, elapsedTime(seg), 1e-12) {
			t.Fatalf("throttle %.1f: lasted %f s for an elapsed time of %f s", throttle, tf, elapsedTime(seg))
		}
		if V := c.Array(rcaide.PathSpeed).Last(0); !scalar.EqualWithinAbs(V, 170, 1e-6) {
			t.Fatalf("throttle %.1f: final speed %f", throttle, V)
		}
		durations = append(durations, tf)
	}
	if !(durations[0] < durations[1] && durations[1] < durations[2]) {
		t.Fatalf("more throttle took longer: %v", durations)
	}
	if durations[2] < 30 || durations[2] > 40 {
		t.Fatalf("half throttle acceleration lasted %f s", durations[2])
	}
}

func TestInfeasibleGroundRoll(t *testing.T) {
	// Idle thrust does not overcome the rolling friction.
	s := NewGround("idle")
	s.Altitude = 0
	s.Throttle = 0.05
	s.AirSpeedStart = 10
	s.AirSpeedEnd = 60
	seg := flown(s, vehicle.Transport())
	if err := seg.Evaluate(); err == nil {
		t.Fatalf("idle roll to 60 m/s converged in %f s", seg.State.Conditions.Array(rcaide.PathTime).Last(0))
	}
	if seg.State.Numerics.Converged || seg.Status() == rcaide.PostProcessed {
		t.Fatalf("infeasible roll ended %s", seg.Status())
	}
}

// kindCases flies every registered kind, with its parameters as they would be read from
// a scenario file, and checks the value left at path on the last point.
var kindCases = map[string]struct {
	multicopter bool
	params      map[string]float64
	path        string
	end         float64
}{
	"climb.constant_speed_constant_rate":             {false, map[string]float64{"altitude_start": 500, "altitude_end": 3000, "air_speed": 140, "climb_rate": 8}, rcaide.PathAltitude, 3000},
	"climb.constant_speed_constant_angle":            {false, map[string]float64{"altitude_start": 500, "altitude_end": 2000, "air_speed": 140, "climb_angle": 3 * degree}, rcaide.PathAltitude, 2000},
	"climb.constant_speed_linear_altitude":           {false, map[string]float64{"altitude_start": 1000, "altitude_end": 2000, "air_speed": 140, "distance": 30000}, rcaide.PathAltitude, 2000},
	"climb.constant_mach_constant_rate":              {false, map[string]float64{"altitude_start": 1000, "altitude_end": 3000, "mach": 0.45}, rcaide.PathAltitude, 3000},
	"climb.constant_mach_constant_angle":             {false, map[string]float64{"altitude_start": 1000, "altitude_end": 2000, "mach": 0.4}, rcaide.PathAltitude, 2000},
	"climb.constant_mach_linear_altitude":            {false, map[string]float64{"altitude_start": 1000, "altitude_end": 2000, "mach": 0.4, "distance": 30000}, rcaide.PathAltitude, 2000},
	"climb.constant_cas_constant_rate":               {false, map[string]float64{"altitude_start": 0, "altitude_end": 1000, "calibrated_air_speed": 120}, rcaide.PathAltitude, 1000},
	"climb.constant_eas_constant_rate":               {false, map[string]float64{"altitude_start": 0, "altitude_end": 1000, "equivalent_air_speed": 120}, rcaide.PathAltitude, 1000},
	"climb.constant_dynamic_pressure_constant_rate":  {false, map[string]float64{"altitude_start": 0, "altitude_end": 1000, "dynamic_pressure": 8820}, rcaide.PathAltitude, 1000},
	"climb.constant_dynamic_pressure_constant_angle": {false, map[string]float64{"altitude_start": 0, "altitude_end": 1000, "dynamic_pressure": 8820}, rcaide.PathAltitude, 1000},
	"climb.constant_throttle_constant_speed":         {false, map[string]float64{"altitude_start": 1000, "altitude_end": 2000, "throttle": 0.5, "air_speed": 140}, rcaide.PathAltitude, 2000},
	"climb.linear_mach_constant_rate":                {false, map[string]float64{"altitude_start": 1000, "altitude_end": 3000, "mach_start": 0.4, "mach_end": 0.5, "climb_rate": 5}, rcaide.PathAltitude, 3000},
	"climb.linear_speed_constant_rate":               {false, map[string]float64{"altitude_start": 500, "altitude_end": 2000, "air_speed_start": 120, "air_speed_end": 150, "climb_rate": 5}, rcaide.PathSpeed, 150},

	"cruise.constant_speed_constant_altitude":            {false, map[string]float64{"altitude": 10000, "air_speed": 230, "distance": 100000}, rcaide.PathRange, 100000},
	"cruise.constant_mach_constant_altitude":             {false, map[string]float64{"altitude": 10000, "mach": 0.78, "distance": 100000}, rcaide.PathRange, 100000},
	"cruise.constant_dynamic_pressure_constant_altitude": {false, map[string]float64{"altitude": 8000, "dynamic_pressure": 12000, "distance": 50000}, rcaide.PathRange, 50000},
	"cruise.constant_speed_constant_altitude_loiter":     {false, map[string]float64{"altitude": 8000, "air_speed": 200, "time": 600}, rcaide.PathTime, 600},
	"cruise.constant_mach_constant_altitude_loiter":      {false, map[string]float64{"altitude": 8000, "mach": 0.6, "time": 600}, rcaide.PathTime, 600},
	"cruise.constant_acceleration_constant_altitude":     {false, map[string]float64{"altitude": 5000, "air_speed_start": 150, "air_speed_end": 170, "acceleration": 0.5}, rcaide.PathSpeed, 170},
	"cruise.constant_throttle_constant_altitude":         {false, map[string]float64{"altitude": 5000, "air_speed_start": 150, "air_speed_end": 170, "throttle": 0.5}, rcaide.PathSpeed, 170},
	"cruise.constant_pitch_rate_constant_altitude":       {false, map[string]float64{"altitude": 5000, "air_speed_start": 150, "pitch_start": 0.0833, "pitch_end": 0.0733, "pitch_rate": -0.0005}, rcaide.PathAltitude, 5000},
	"cruise.curved_constant_radius":                      {false, map[string]float64{"altitude": 5000, "air_speed": 150, "turn_radius": 5000, "turn_angle": -90 * degree}, rcaide.PathSpeed, 150},

	"descent.constant_speed_constant_rate":  {false, map[string]float64{"altitude_start": 3000, "altitude_end": 1000, "air_speed": 130, "descent_rate": 5}, rcaide.PathAltitude, 1000},
	"descent.constant_speed_constant_angle": {false, map[string]float64{"altitude_start": 3000, "altitude_end": 1000, "air_speed": 130}, rcaide.PathAltitude, 1000},
	"descent.constant_cas_constant_rate":    {false, map[string]float64{"altitude_start": 3000, "altitude_end": 1000, "calibrated_air_speed": 120, "descent_rate": 5}, rcaide.PathAltitude, 1000},
	"descent.constant_eas_constant_rate":    {false, map[string]float64{"altitude_start": 3000, "altitude_end": 1000, "equivalent_air_speed": 120, "descent_rate": 5}, rcaide.PathAltitude, 1000},
	"descent.linear_mach_constant_rate":     {false, map[string]float64{"altitude_start": 3000, "altitude_end": 1000, "mach_start": 0.4, "mach_end": 0.35, "descent_rate": 5}, rcaide.PathAltitude, 1000},

	"ground.ground":  {false, map[string]float64{"altitude": 0, "air_speed_start": 10, "air_speed_end": 60, "throttle": 0.8}, rcaide.PathSpeed, 60},
	"ground.takeoff": {false, map[string]float64{"altitude": 0, "air_speed_end": 70}, rcaide.PathSpeed, 70},
	"ground.landing": {false, map[string]float64{"altitude": 0, "air_speed_start": 70}, rcaide.PathSpeed, 10},

	"vertical.hover":   {true, map[string]float64{"altitude": 0, "time": 30}, rcaide.PathTime, 30},
	"vertical.climb":   {true, map[string]float64{"altitude_start": 0, "altitude_end": 30, "climb_rate": 2}, rcaide.PathAltitude, 30},
	"vertical.descent": {true, map[string]float64{"altitude_start": 30, "altitude_end": 0, "descent_rate": 2}, rcaide.PathAltitude, 0},

	"single_point.set_speed_set_altitude": {false, map[string]float64{"altitude": 5000, "air_speed": 150}, rcaide.PathSpeed, 150},
	"single_point.set_speed_set_throttle": {false, map[string]float64{"altitude": 5000, "air_speed": 150, "throttle": 1}, rcaide.PathSpeed, 150},
}

func TestAllKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != len(kindCases) {
		t.Fatalf("%d kinds registered for %d test cases", len(kinds), len(kindCases))
	}
	for _, kind := range kinds {
		tc, ok := kindCases[kind]
		if !ok {
			t.Errorf("%s: no test case", kind)
			continue
		}
		s, err := New(kind, "seg")
		if err != nil {
			t.Fatal(err)
		}
		v := viper.New()
		for k, val := range tc.params {
			v.Set(k, val)
		}
		if err := v.Unmarshal(s); err != nil {
			t.Fatalf("%s: %s", kind, err)
		}
		craft := vehicle.Transport()
		if tc.multicopter {
			craft = vehicle.Multicopter()
		}
		seg := flown(s, craft)
		if err := seg.Evaluate(); err != nil {
			t.Errorf("%s: %s", kind, err)
			continue
		}
		num := seg.State.Numerics
		if !num.Converged || seg.Status() != rcaide.PostProcessed || num.ResidualNorm >= num.ToleranceSolution {
			t.Errorf("%s: ended %s with |R|=%e", kind, seg.Status(), num.ResidualNorm)
			continue
		}
		c := seg.State.Conditions
		if span := c.Array(rcaide.PathTime); c.Size() > 1 && span.Last(0) <= span.First(0) {
			t.Errorf("%s: time went from %f s to %f s", kind, span.First(0), span.Last(0))
		}
		if got := c.Array(tc.path).Last(0); !scalar.EqualWithinAbsOrRel(got, tc.end, 1e-6, 1e-6) {
			t.Errorf("%s: %s ended at %f exp %f", kind, tc.path, got, tc.end)
		}
	}
}

func TestTakeoffRoll(t *testing.T) {
	s := NewTakeoff("takeoff")
	s.Altitude = 0
	s.AirSpeedEnd = 70
	seg := flown(s, vehicle.Transport())
	mustConverge(t, seg)
	c := seg.State.Conditions
	V := c.Array(rcaide.PathSpeed).Col(0)
	if V[0] != 0 || !scalar.EqualWithinAbs(V[len(V)-1], 70, 1e-6) {
		t.Fatalf("takeoff speeds %v", V)
	}
	if tf := c.Array(rcaide.PathTime).Last(0); tf < 20 || tf > 27 {
		t.Fatalf("takeoff roll lasted %f s", tf)
	}
	for i, fz := range c.Array(rcaide.PathTotalForce).Col(2) {
		if fz != 0 {
			t.Fatalf("#%d: runway did not carry the weight: %f N", i, fz)
		}
	}
	if rng := c.Array(rcaide.PathRange).Last(0); rng < 500 || rng > 1200 {
		t.Fatalf("takeoff distance %f m", rng)
	}
}

func TestHover(t *testing.T) {
	s := NewHover("hover")
	s.Altitude = 0
	s.Time = 60
	seg := flown(s, vehicle.Multicopter())
	mustConverge(t, seg)
	c := seg.State.Conditions
	for i, th := range c.Array(rcaide.PathThrottle).Col(0) {
		if !scalar.EqualWithinAbs(th, 0.2888, 1e-3) {
			t.Fatalf("#%d: hover throttle got %f exp 0.2888", i, th)
		}
	}
	omega := c.Array("energy.bus.rotor_speed").Col(0)
	for i := range omega {
		if !scalar.EqualWithinAbs(omega[i], 172.1, 0.5) {
			t.Fatalf("#%d: rotor speed got %f exp 172.1", i, omega[i])
		}
	}
	power := c.Array(rcaide.PathPower).At(0, 0)
	used := c.Array(rcaide.PathEnergyUsed).Last(0)
	if !scalar.EqualWithinRel(used, 60*power, 1e-6) {
		t.Fatalf("energy used got %f exp %f", used, 60*power)
	}
	battery := c.Array("energy.bus.battery.energy")
	if !scalar.EqualWithinRel(battery.First(0)-battery.Last(0), used, 1e-9) {
		t.Fatalf("battery drained %f J for %f J used", battery.First(0)-battery.Last(0), used)
	}
	pos := c.Array(rcaide.PathPosition)
	if pos.Last(0) != pos.First(0) || pos.Last(1) != pos.First(1) {
		t.Fatal("hover moved horizontally")
	}
}

func TestVerticalClimb(t *testing.T) {
	s := NewVerticalClimb("liftoff")
	s.AltitudeStart = 0
	s.AltitudeEnd = 30
	s.ClimbRate = 2
	seg := flown(s, vehicle.Multicopter())
	mustConverge(t, seg)
	c := seg.State.Conditions
	if tf := c.Array(rcaide.PathTime).Last(0); !scalar.EqualWithinRel(tf, 15, 1e-9) {
		t.Fatalf("vertical climb lasted %f s", tf)
	}
	if rng := c.Array(rcaide.PathRange).Last(0); rng != 0 {
		t.Fatalf("vertical climb flew %f m", rng)
	}
}

func TestSinglePoint(t *testing.T) {
	trim := NewSetSpeedSetAltitude("trim")
	trim.Altitude = 5000
	trim.AirSpeed = 150
	mustConverge(t, flown(trim, vehicle.Transport()))
	if n := trim.State.Conditions.Size(); n != 1 {
		t.Fatalf("single point segment has %d points", n)
	}
	if th := trim.State.Conditions.Array(rcaide.PathThrottle).At(0, 0); th <= 0 || th >= 1 {
		t.Fatalf("unexpected trim throttle %f", th)
	}

	full := NewSetSpeedSetThrottle("full")
	full.Altitude = 5000
	full.AirSpeed = 150
	mustConverge(t, flown(full, vehicle.Transport()))
	ax := full.State.Conditions.Array(rcaide.PathAcceleration).At(0, 0)
	if ax < 1 || ax > 2.5 {
		t.Fatalf("full throttle acceleration %f m/s^2", ax)
	}
	if th := full.State.Conditions.Array(rcaide.PathThrottle).At(0, 0); th != 1 {
		t.Fatalf("throttle changed to %f", th)
	}
}

func TestMissionCarryOver(t *testing.T) {
	v := vehicle.Transport()
	climb := NewClimbConstantSpeedConstantRate("climb")
	climb.AltitudeStart = 0
	climb.AltitudeEnd = 1000
	climb.AirSpeed = 130
	climb.ClimbRate = 5
	cruise := NewCruiseConstantSpeedConstantAltitude("cruise")
	cruise.AirSpeed = 130
	cruise.Distance = 20 * units.Kilometer

	m, err := rcaide.NewMission("short hop")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []rcaide.Segmenter{climb, cruise} {
		flown(s, v)
		if _, err := m.AppendSegment(s); err != nil {
			t.Fatal(err)
		}
	}
	results, err := m.Evaluate()
	if err != nil {
		t.Fatal(err)
	}
	if results.Len() != 2 {
		t.Fatalf("%d states stored", results.Len())
	}
	first, _ := results.Get("climb")
	second, _ := results.Get("cruise")
	for _, p := range []string{rcaide.PathMass, rcaide.PathTime, rcaide.PathAltitude, rcaide.PathRange} {
		end := first.Conditions.Array(p).Last(0)
		if begin := second.Conditions.Array(p).First(0); begin != end {
			t.Fatalf("%s: segment ended at %v, next started at %v", p, end, begin)
		}
	}
	merged := results.Merged()
	if rows, _ := merged.Conditions.Array(rcaide.PathTime).Dims(); rows != first.Conditions.Size()+second.Conditions.Size() {
		t.Fatalf("merged history has %d rows", rows)
	}
	if !merged.Numerics.Converged {
		t.Fatal("merged state not converged")
	}
}

func TestMissionAborts(t *testing.T) {
	v := vehicle.Transport()
	climb := NewClimbConstantSpeedConstantRate("climb")
	climb.AltitudeStart = 0
	climb.AltitudeEnd = 1000
	climb.AirSpeed = 130
	broken := NewClimbConstantSpeedConstantRate("broken") // no end altitude
	broken.AirSpeed = 130
	m, _ := rcaide.NewMission("aborted")
	for _, s := range []rcaide.Segmenter{climb, broken} {
		flown(s, v)
		m.AppendSegment(s)
	}
	results, err := m.Evaluate()
	var segErr *rcaide.SegmentError
	if !errors.As(err, &segErr) {
		t.Fatalf("expected a segment error, got %v", err)
	}
	if segErr.Index != 1 || segErr.Segment != "broken" || !errors.Is(err, rcaide.ErrMissingAttribute) {
		t.Fatalf("unexpected error %s", err)
	}
	if results.Len() != 1 {
		t.Fatalf("%d states kept before the failure", results.Len())
	}
}

func TestDimensionMismatch(t *testing.T) {
	s := NewCruiseConstantSpeedConstantAltitude("unbalanced")
	s.Altitude = 10000
	s.AirSpeed = 230
	s.Distance = 50000
	seg := flown(s, vehicle.Transport())
	seg.Phase(rcaide.PhaseInitialize).Set("extra_residual", func(seg *rcaide.Segment) error {
		seg.State.Residuals.Set("extra", rcaide.NewFixed(1, 1, []float64{0}))
		return nil
	})
	err := seg.Evaluate()
	var dimErr *rcaide.DimensionError
	if !errors.As(err, &dimErr) || !errors.Is(err, rcaide.ErrDimension) {
		t.Fatalf("expected a dimension error, got %v", err)
	}
	n := seg.State.Numerics.NumberOfControlPoints
	if dimErr.Unknowns != 2*n || dimErr.Residuals != 2*n+1 {
		t.Fatalf("unexpected sizes %+v", dimErr)
	}
	if seg.Status() != rcaide.Converging {
		t.Fatalf("status %s after a dimension error", seg.Status())
	}
}

func TestValidation(t *testing.T) {
	transport := vehicle.Transport()
	noEnd := NewClimbConstantSpeedConstantRate("no_end")
	noEnd.AltitudeStart = 0
	noEnd.AirSpeed = 100
	noStart := NewClimbConstantSpeedConstantRate("no_start")
	noStart.AltitudeEnd = 1000
	noStart.AirSpeed = 100
	upwards := NewDescentConstantSpeedConstantRate("upwards")
	upwards.AltitudeStart = 0
	upwards.AltitudeEnd = 1000
	upwards.AirSpeed = 100
	tooSteep := NewClimbConstantSpeedConstantRate("too_steep")
	tooSteep.AltitudeStart = 0
	tooSteep.AltitudeEnd = 1000
	tooSteep.AirSpeed = 10
	tooSteep.ClimbRate = 20
	badGuess := NewCruiseConstantSpeedConstantAltitude("bad_guess")
	badGuess.Altitude = 1000
	badGuess.AirSpeed = 100
	badGuess.Distance = 1000
	badGuess.Controls.Throttle.InitialGuess = []float64{0.1, 0.2, 0.3}

	for _, tc := range []struct {
		seg rcaide.Segmenter
		exp error
	}{
		{noEnd, rcaide.ErrMissingAttribute},
		{noStart, rcaide.ErrMissingAttribute},
		{upwards, rcaide.ErrInvalidArgument},
		{tooSteep, rcaide.ErrInvalidArgument},
		{badGuess, rcaide.ErrInvalidArgument},
	} {
		seg := flown(tc.seg, transport)
		if err := seg.Evaluate(); !errors.Is(err, tc.exp) {
			t.Fatalf("segment `%s`: expected %s, got %v", seg.Tag(), tc.exp, err)
		}
	}

	bare := NewHover("bare")
	bare.Altitude = 0
	if err := bare.Evaluate(); !errors.Is(err, rcaide.ErrMissingAttribute) {
		t.Fatalf("segment without analyses: %v", err)
	}

	twice := vehicle.Multicopter()
	twice.Networks = append(twice.Networks, twice.Networks[0])
	dup := NewHover("dup")
	dup.Altitude = 0
	if err := flown(dup, twice).Evaluate(); !errors.Is(err, rcaide.ErrInvalidArgument) {
		t.Fatalf("duplicate network tags: %v", err)
	}
}

func TestAirSpeedConversions(t *testing.T) {
	seg := flown(NewHover("conversions"), vehicle.Multicopter())
	alt := []float64{0, 3000}
	x := []float64{0, 1}
	for _, tc := range []struct {
		name string
		law  speedLaw
	}{
		{"cas", calibratedSpeed(100)},
		{"eas", equivalentSpeed(100)},
		{"q", dynamicPressureSpeed(0.5 * seaLevelDensity * 100 * 100)},
	} {
		V, err := tc.law(seg, alt, x)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(V[0], 100, 1e-6) {
			t.Fatalf("%s: sea level true air speed got %f exp 100", tc.name, V[0])
		}
		if V[1] <= V[0] {
			t.Fatalf("%s: true air speed does not increase with altitude: %v", tc.name, V)
		}
	}
	V, _ := constantMach(0.5)(seg, alt, x)
	if !scalar.EqualWithinRel(V[0], 0.5*seaLevelSound, 1e-6) {
		t.Fatalf("mach 0.5 at sea level got %f m/s", V[0])
	}
	if _, err := calibratedSpeed(100)(seg, []float64{-6000}, []float64{0}); !errors.Is(err, atmosphere.ErrAltitudeRange) {
		t.Fatalf("expected an altitude range error, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != len(registry) || !sort.StringsAreSorted(kinds) {
		t.Fatalf("unexpected kinds %v", kinds)
	}
	for _, kind := range kinds {
		s, err := New(kind, "seg")
		if err != nil {
			t.Fatalf("%s: %s", kind, err)
		}
		seg := s.Base()
		if seg.Tag() != "seg" || seg.Status() != rcaide.Constructed {
			t.Fatalf("%s: unexpected segment %s (%s)", kind, seg.Tag(), seg.Status())
		}
		iter := seg.Phase(rcaide.PhaseIterate)
		for _, sub := range []string{"initials", "unknowns", "conditions", "residuals"} {
			if !iter.Has(sub) {
				t.Fatalf("%s: iterate has no `%s`", kind, sub)
			}
		}
		post := seg.Phase(rcaide.PhasePostProcess)
		if !post.IsSkipped("noise") || !post.IsSkipped("emissions") {
			t.Fatalf("%s: noise and emissions should be skipped", kind)
		}
	}
	if _, err := New("cruise.warp_speed", "seg"); !errors.Is(err, rcaide.ErrInvalidArgument) {
		t.Fatalf("unknown kind: %v", err)
	}
}
