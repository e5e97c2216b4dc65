package surfaceplan

import (
	"fmt"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/legplan/contactplan/referenceframe"
	"github.com/legplan/contactplan/spatialmath"
)

// fakePaths is a set of straight paths along x; the configuration at t sits at x = t.
type fakePaths struct {
	lengths []float64
	initial referenceframe.Configuration
	failAt  float64

	mu        sync.Mutex
	requested []float64
}

func (f *fakePaths) NumberPaths() int {
	return len(f.lengths)
}

func (f *fakePaths) PathLength(pathID int) (float64, error) {
	if pathID < 0 || pathID >= len(f.lengths) {
		return 0, errors.Errorf("no path %d", pathID)
	}
	return f.lengths[pathID], nil
}

func (f *fakePaths) ConfigAtParam(pathID int, t float64) (referenceframe.Configuration, error) {
	f.mu.Lock()
	f.requested = append(f.requested, t)
	f.mu.Unlock()
	if f.failAt > 0 && t >= f.failAt {
		return nil, errors.Errorf("cannot resolve %f", t)
	}
	return referenceframe.NewConfiguration(t, float64(pathID), 0, 0, 0, 0, 1), nil
}

func (f *fakePaths) InitialConfig() (referenceframe.Configuration, error) {
	if f.initial == nil {
		return nil, errors.New("no initial configuration")
	}
	return f.initial, nil
}

type fakeQuery struct {
	param float64
	side  LegSide
}

// fakeCollisions answers queries from a table keyed by the configuration's x and the leg side.
type fakeCollisions struct {
	contacts     map[string][]Contact
	dropGeometry bool

	mu      sync.Mutex
	queries []fakeQuery
}

func contactKey(param float64, side LegSide) string {
	return fmt.Sprintf("%.3f/%s", param, side)
}

func (f *fakeCollisions) set(param float64, side LegSide, contacts ...Contact) {
	if f.contacts == nil {
		f.contacts = map[string][]Contact{}
	}
	f.contacts[contactKey(param, side)] = contacts
}

func (f *fakeCollisions) lookup(cfg referenceframe.Configuration, side LegSide) []Contact {
	return f.contacts[contactKey(cfg[0].Value, side)]
}

func (f *fakeCollisions) CollidingSurfaceNames(cfg referenceframe.Configuration, side LegSide) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, fakeQuery{param: cfg[0].Value, side: side})
	f.mu.Unlock()
	var names []string
	for _, c := range f.lookup(cfg, side) {
		names = append(names, c.Name)
	}
	return names, nil
}

func (f *fakeCollisions) CollidingSurfaceGeometries(cfg referenceframe.Configuration, side LegSide) ([][]r3.Vector, error) {
	var geometries [][]r3.Vector
	for _, c := range f.lookup(cfg, side) {
		geometries = append(geometries, c.Geometry)
	}
	if f.dropGeometry && len(geometries) > 0 {
		geometries = geometries[1:]
	}
	return geometries, nil
}

// fakeAffordances reports square surfaces, each split in two triangles.
type fakeAffordances struct {
	names   []string
	squares [][]r3.Vector
}

func (f *fakeAffordances) AffordancePoints(category string) ([]RawSurface, error) {
	if category != DefaultAffordance {
		return nil, nil
	}
	raws := make([]RawSurface, 0, len(f.squares))
	for _, sq := range f.squares {
		raws = append(raws, RawSurface(spatialmath.FanTriangulate(sq)))
	}
	return raws, nil
}

func (f *fakeAffordances) AffordanceRefObstacles(category string) ([]string, error) {
	if category != DefaultAffordance {
		return nil, nil
	}
	return f.names, nil
}

// square returns the counter-clockwise square of side `size` whose lower corner is (x, y, z).
func square(x, y, z, size float64) []r3.Vector {
	return []r3.Vector{{X: x, Y: y, Z: z}, {X: x + size, Y: y, Z: z}, {X: x + size, Y: y + size, Z: z}, {X: x, Y: y + size, Z: z}}
}

func newTestCatalog(names ...string) *Catalog {
	surfaces := make([]Surface, 0, len(names))
	for i := range names {
		surfaces = append(surfaces, Surface{Points: square(float64(2*i), 0, 0, 1), Normal: r3.Vector{Z: 1}})
	}
	c, err := NewCatalogFromSurfaces(names, surfaces)
	if err != nil {
		panic(err)
	}
	return c
}
