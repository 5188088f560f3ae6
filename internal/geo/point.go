package geo

import (
	"github.com/golang/geo/r3"
	geom "github.com/peterstace/simplefeatures/geom"
)

// POINTS
// Positions are stored in game units as PointZ without an SRID. Both SQLite and
// PostGIS keep them as WKB, so the same column type works for either database.

// PointFromVector converts a game-space position to a PointZ.
func PointFromVector(v r3.Vector) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X, Y: v.Y},
		Z:    v.Z,
		Type: geom.DimXYZ,
	})
}

// VectorFromPoint converts a point back to a game-space position.
// An empty point gives the zero vector; a 2D point gives Z=0.
func VectorFromPoint(p geom.Point) r3.Vector {
	coords, ok := p.Coordinates()
	if !ok {
		return r3.Vector{}
	}
	return r3.Vector{X: coords.X, Y: coords.Y, Z: coords.Z}
}
