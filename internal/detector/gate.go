package detector

import (
	"math"

	"github.com/OCAP2/wallscan/internal/geo"
	"github.com/OCAP2/wallscan/pkg/core"
)

// Default tolerances, in degrees.
const (
	DefaultPitchTolerance = 0.7
	DefaultYawTolerance   = 0.05
)

// SpottedFunc reports whether the observer currently has the target spotted.
type SpottedFunc func(observer, target string) bool

// Gate decides whether an observer's aim tracks a target it cannot see.
type Gate struct {
	PitchTolerance float64
	YawTolerance   float64
	Mode           geo.BearingMode
}

// DefaultGate returns a Gate with the default tolerances and the atan2 bearing.
func DefaultGate() Gate {
	return Gate{
		PitchTolerance: DefaultPitchTolerance,
		YawTolerance:   DefaultYawTolerance,
		Mode:           geo.BearingAtan2,
	}
}

// Matches reports whether observer is aiming at target through an obstruction.
func (g Gate) Matches(observer, target core.PlayerSnapshot, spotted SpottedFunc) bool {
	_, ok := g.Evaluate(observer, target, spotted)
	return ok
}

// Evaluate is Matches that also returns the angles pointing at the target.
// The angles are only meaningful when ok is true.
func (g Gate) Evaluate(observer, target core.PlayerSnapshot, spotted SpottedFunc) (expected core.Angles, ok bool) {
	if observer.Name == target.Name {
		return expected, false
	}
	if spotted(observer.Name, target.Name) {
		return expected, false
	}

	aim := observer.Aim
	if !(aim.Pitch > -90 && aim.Pitch < 90) || !(aim.Yaw > -180 && aim.Yaw < 180) {
		return expected, false
	}
	// zeroed angles are what the demo reports before the first usercmd
	if aim.Pitch == 0 || aim.Yaw == 0 {
		return expected, false
	}

	expected = geo.AngleTo(observer.Position, target.Position, g.Mode)
	if math.IsNaN(expected.Pitch) || math.IsNaN(expected.Yaw) {
		return expected, false
	}

	yawErr := expected.Yaw - aim.Yaw
	if g.Mode != geo.BearingLegacy {
		yawErr = geo.AngleDelta(expected.Yaw, aim.Yaw)
	}
	pitchErr := expected.Pitch - aim.Pitch

	return expected, math.Abs(pitchErr) <= g.PitchTolerance && math.Abs(yawErr) <= g.YawTolerance
}
