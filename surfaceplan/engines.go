package surfaceplan

import (
	"github.com/golang/geo/r3"

	"github.com/legplan/contactplan/referenceframe"
)

// PathEngine resolves configurations along the paths of a planning session.
type PathEngine interface {
	NumberPaths() int
	PathLength(pathID int) (float64, error)
	ConfigAtParam(pathID int, t float64) (referenceframe.Configuration, error)
}

// InitialConfigProvider returns the configuration the robot starts from.
type InitialConfigProvider interface {
	InitialConfig() (referenceframe.Configuration, error)
}

// CollisionEngine reports which obstacles the reachable volume of one leg collides with at a
// configuration. Both methods must answer in the same obstacle order.
type CollisionEngine interface {
	CollidingSurfaceNames(cfg referenceframe.Configuration, side LegSide) ([]string, error)
	CollidingSurfaceGeometries(cfg referenceframe.Configuration, side LegSide) ([][]r3.Vector, error)
}

// AffordanceEngine lists the obstacle surfaces tagged with an affordance category. The i'th name
// identifies the i'th surface.
type AffordanceEngine interface {
	AffordancePoints(category string) ([]RawSurface, error)
	AffordanceRefObstacles(category string) ([]string, error)
}
