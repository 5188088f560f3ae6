// pkg/core/player.go
package core

import "github.com/golang/geo/r3"

// Angles is an orientation in degrees.
// Positive pitch looks down, yaw grows counter-clockwise from the +X axis.
type Angles struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// PlayerSnapshot is the state of one player on one tick.
// Snapshots are rebuilt every tick and never stored.
type PlayerSnapshot struct {
	Name     string
	Position r3.Vector
	Aim      Angles
}
