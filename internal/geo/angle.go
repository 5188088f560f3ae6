package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/golang/geo/r3"
)

// BearingMode selects how the horizontal bearing between two points is computed.
type BearingMode int

const (
	// BearingAtan2 uses the two-argument arctangent.
	BearingAtan2 BearingMode = iota
	// BearingLegacy reproduces the single-argument arctangent formula of the first
	// detector, including its shift/wrap steps, for comparison with old result files.
	BearingLegacy
)

// ErrUnknownBearingMode is returned by ParseBearingMode for unsupported names.
var ErrUnknownBearingMode = errors.New("unknown bearing mode")

const radToDeg = 180 / math.Pi

// ParseBearingMode converts a config value ("atan2" or "legacy") to a BearingMode.
func ParseBearingMode(s string) (BearingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "atan2":
		return BearingAtan2, nil
	case "legacy":
		return BearingLegacy, nil
	default:
		return BearingAtan2, fmt.Errorf("%w: %q", ErrUnknownBearingMode, s)
	}
}

func (m BearingMode) String() string {
	if m == BearingLegacy {
		return "legacy"
	}
	return "atan2"
}

// AngleTo returns the eye angles a viewer at viewer needs to look straight at target.
//
// Yaw is in (-180, 180]. When both points share the same X and Y the bearing is
// undefined and yaw is NaN. Pitch is positive when the target is below the viewer,
// ±90 when it is directly below/above, and NaN for identical points.
func AngleTo(viewer, target r3.Vector, mode BearingMode) core.Angles {
	d := viewer.Sub(target)

	var yaw float64
	switch {
	case d.X == 0 && d.Y == 0:
		yaw = math.NaN()
	case mode == BearingLegacy:
		yaw = legacyYaw(d.X, d.Y)
	default:
		yaw = NormalizeAngle(math.Atan2(-d.Y, -d.X) * radToDeg)
	}

	pitch := math.Atan(d.Z/math.Hypot(d.X, d.Y)) * radToDeg

	return core.Angles{Pitch: pitch, Yaw: yaw}
}

// legacyYaw loses the quadrant in atan and patches it back with the dx sign.
// dx == 0 divides to ±Inf, which atan maps to ±90 before the shift.
func legacyYaw(dx, dy float64) float64 {
	yaw := math.Atan(dy/dx) * radToDeg
	if dx >= 0 {
		yaw -= 180
	}
	if yaw < -180 {
		yaw += 360
	}
	return yaw
}

// NormalizeAngle wraps deg into (-180, 180]. NaN and Inf are returned unchanged.
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// AngleDelta returns the shortest signed difference a - b in degrees, in (-180, 180].
func AngleDelta(a, b float64) float64 {
	return NormalizeAngle(a - b)
}
