package surfaceplan

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/legplan/contactplan/spatialmath"
)

// Catalog maps obstacle names to their full contact surface. It is built once per planning session
// and read-only afterwards, so it is safe for concurrent lookups.
type Catalog struct {
	surfaces map[string]Surface
	names    []string
}

// NewCatalog queries the affordance engine for every surface of `category` and reduces each to its
// contact polygon and normal.
func NewCatalog(engine AffordanceEngine, geometry SurfaceGeometry, category string) (*Catalog, error) {
	if geometry == nil {
		geometry = HullGeometry{}
	}
	raws, err := engine.AffordancePoints(category)
	if err != nil {
		return nil, errors.Wrapf(err, "getting affordance points for %q", category)
	}
	names, err := engine.AffordanceRefObstacles(category)
	if err != nil {
		return nil, errors.Wrapf(err, "getting affordance obstacles for %q", category)
	}
	if len(raws) != len(names) {
		return nil, NewAffordanceMismatchError(category, len(names), len(raws))
	}
	surfaces := make([]Surface, 0, len(raws))
	for _, raw := range raws {
		surfaces = append(surfaces, Surface{Points: geometry.ExtremumPoints(raw), Normal: geometry.Normal(raw)})
	}
	return NewCatalogFromSurfaces(names, surfaces)
}

// NewCatalogFromSurfaces builds a catalog from names and surfaces corresponding element-wise. A name
// given twice keeps its last surface.
func NewCatalogFromSurfaces(names []string, surfaces []Surface) (*Catalog, error) {
	if len(names) != len(surfaces) {
		return nil, errors.Wrapf(ErrContractViolation, "%d names but %d surfaces", len(names), len(surfaces))
	}
	c := &Catalog{surfaces: make(map[string]Surface, len(names))}
	for i, name := range names {
		if _, ok := c.surfaces[name]; !ok {
			c.names = append(c.names, name)
		}
		c.surfaces[name] = surfaces[i]
	}
	return c, nil
}

// Lookup returns the surface named `name`.
func (c *Catalog) Lookup(name string) (Surface, error) {
	s, ok := c.surfaces[name]
	if !ok {
		return Surface{}, NewCatalogMissError(name)
	}
	return s, nil
}

// Len returns the number of surfaces.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Names returns the surface names in the order the affordance engine first reported them.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// SortedSurfaces returns every surface, ordered by their point sequences.
func (c *Catalog) SortedSurfaces() []Surface {
	out := make([]Surface, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.surfaces[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return spatialmath.ComparePolygons(out[i].Points, out[j].Points) < 0
	})
	return out
}
