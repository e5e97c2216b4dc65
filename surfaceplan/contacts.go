package surfaceplan

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/legplan/contactplan/referenceframe"
)

// LegSide selects the reachable volume of one leg.
type LegSide int

// The legs alternate by phase, starting with the left leg.
const (
	Left LegSide = iota
	Right
)

func (s LegSide) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// LegSideForPhase returns the leg moving during phase `i`: left for even phases, right for odd.
func LegSideForPhase(i int) LegSide {
	if i%2 == 0 {
		return Left
	}
	return Right
}

// Contact is one obstacle collided by a reachable volume, with the polygon where they intersect. An
// empty Geometry means no usable contact.
type Contact struct {
	Name     string
	Geometry []r3.Vector
}

// ContactQueryAdapter pairs the answers of a CollisionEngine into contacts.
type ContactQueryAdapter struct {
	engine CollisionEngine
}

// NewContactQueryAdapter returns an adapter over `engine`.
func NewContactQueryAdapter(engine CollisionEngine) *ContactQueryAdapter {
	return &ContactQueryAdapter{engine: engine}
}

// Query returns every obstacle the `side` reachable volume collides with at `cfg`. It fails with
// ErrContractViolation if the engine's names and geometries do not line up.
func (a *ContactQueryAdapter) Query(cfg referenceframe.Configuration, side LegSide) ([]Contact, error) {
	geometries, err := a.engine.CollidingSurfaceGeometries(cfg, side)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s contact geometries", side)
	}
	names, err := a.engine.CollidingSurfaceNames(cfg, side)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s contact names", side)
	}
	if len(names) != len(geometries) {
		return nil, NewContractViolationError(side, len(names), len(geometries))
	}
	contacts := make([]Contact, 0, len(names))
	for i, name := range names {
		contacts = append(contacts, Contact{Name: name, Geometry: geometries[i]})
	}
	return contacts, nil
}
