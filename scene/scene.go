// Package scene implements the path, collision and affordance engines of a contact planner over a
// scene described in JSON: guide paths through waypoint configurations, convex planar obstacles,
// and one box per leg approximating where the foot can reach.
package scene

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/legplan/contactplan/logging"
	"github.com/legplan/contactplan/referenceframe"
	"github.com/legplan/contactplan/spatialmath"
	"github.com/legplan/contactplan/surfaceplan"
)

const paramTolerance = 1e-9

type obstacle struct {
	name        string
	polygon     []r3.Vector
	affordances map[string]struct{}
}

// Scene answers path, collision and affordance queries. It is immutable once built and safe for
// concurrent use.
type Scene struct {
	paths     []*path
	obstacles []obstacle
	volumes   map[surfaceplan.LegSide]*spatialmath.Box
	initial   referenceframe.Configuration
	contact   string
	logger    logging.Logger
}

// New builds a scene from a validated config.
func New(cfg *Config, logger logging.Logger) (*Scene, error) {
	if err := cfg.Validate("scene"); err != nil {
		return nil, err
	}
	s := &Scene{
		volumes: map[surfaceplan.LegSide]*spatialmath.Box{},
		contact: cfg.contactAffordance(),
		logger:  logger,
	}
	for i, pc := range cfg.Paths {
		p, err := newPath(pc)
		if err != nil {
			return nil, errors.Wrapf(err, "path %d", i)
		}
		s.paths = append(s.paths, p)
	}
	for _, oc := range cfg.Obstacles {
		o := obstacle{name: oc.Name, polygon: oc.points(), affordances: map[string]struct{}{}}
		for _, a := range oc.affordances() {
			o.affordances[a] = struct{}{}
		}
		s.obstacles = append(s.obstacles, o)
	}
	var err error
	if s.volumes[surfaceplan.Left], err = cfg.ReachableVolumes.Left.Box(); err != nil {
		return nil, err
	}
	if s.volumes[surfaceplan.Right], err = cfg.ReachableVolumes.Right.Box(); err != nil {
		return nil, err
	}
	if cfg.InitialConfig != nil {
		s.initial = referenceframe.NewConfiguration(cfg.InitialConfig...)
	} else {
		s.initial = s.paths[len(s.paths)-1].waypoints[0]
	}
	logger.Debugw("scene loaded", "paths", len(s.paths), "obstacles", len(s.obstacles))
	return s, nil
}

// WithContactAffordance returns a scene whose reachable volumes only collide with obstacles offering
// `category`. A planner needs its catalog and its collisions built from the same category.
func (s *Scene) WithContactAffordance(category string) *Scene {
	if category == s.contact {
		return s
	}
	scoped := *s
	scoped.contact = category
	return &scoped
}

// ContactAffordance returns the category of the obstacles the reachable volumes collide with.
func (s *Scene) ContactAffordance() string {
	return s.contact
}

// NumberPaths returns the number of guide paths.
func (s *Scene) NumberPaths() int {
	return len(s.paths)
}

func (s *Scene) path(pathID int) (*path, error) {
	if pathID < 0 || pathID >= len(s.paths) {
		return nil, errors.Errorf("path %d does not exist, have %d paths", pathID, len(s.paths))
	}
	return s.paths[pathID], nil
}

// PathLength returns the length of a path: the summed distance between its waypoint positions.
func (s *Scene) PathLength(pathID int) (float64, error) {
	p, err := s.path(pathID)
	if err != nil {
		return 0, err
	}
	return p.length(), nil
}

// ConfigAtParam returns the configuration at distance t along a path.
func (s *Scene) ConfigAtParam(pathID int, t float64) (referenceframe.Configuration, error) {
	p, err := s.path(pathID)
	if err != nil {
		return nil, err
	}
	return p.configAt(t)
}

// InitialConfig returns the configured initial configuration, or the start of the last path.
func (s *Scene) InitialConfig() (referenceframe.Configuration, error) {
	return s.initial, nil
}

// ReachableVolume returns the reachable volume of a leg placed at a configuration.
func (s *Scene) ReachableVolume(cfg referenceframe.Configuration, side surfaceplan.LegSide) (*spatialmath.Box, error) {
	volume, ok := s.volumes[side]
	if !ok {
		return nil, errors.Errorf("no reachable volume for %s leg", side)
	}
	root, err := referenceframe.PoseFromConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return volume.Transform(root), nil
}

// contacts returns, in obstacle order, the name and clipped polygon of every contact obstacle the
// reachable volume intersects.
func (s *Scene) contacts(cfg referenceframe.Configuration, side surfaceplan.LegSide) ([]string, [][]r3.Vector, error) {
	volume, err := s.ReachableVolume(cfg, side)
	if err != nil {
		return nil, nil, err
	}
	var (
		names      []string
		geometries [][]r3.Vector
	)
	for _, o := range s.obstacles {
		if _, ok := o.affordances[s.contact]; !ok {
			continue
		}
		if clipped := volume.ClipPolygon(o.polygon); clipped != nil {
			names = append(names, o.name)
			geometries = append(geometries, clipped)
		}
	}
	return names, geometries, nil
}

// CollidingSurfaceNames returns the obstacles the leg's reachable volume intersects at cfg.
func (s *Scene) CollidingSurfaceNames(cfg referenceframe.Configuration, side surfaceplan.LegSide) ([]string, error) {
	names, _, err := s.contacts(cfg, side)
	return names, err
}

// CollidingSurfaceGeometries returns, for each obstacle CollidingSurfaceNames reports, the part of
// its polygon inside the leg's reachable volume.
func (s *Scene) CollidingSurfaceGeometries(cfg referenceframe.Configuration, side surfaceplan.LegSide) ([][]r3.Vector, error) {
	_, geometries, err := s.contacts(cfg, side)
	return geometries, err
}

// AffordancePoints returns the triangulation of every obstacle offering `category`.
func (s *Scene) AffordancePoints(category string) ([]surfaceplan.RawSurface, error) {
	var raws []surfaceplan.RawSurface
	for _, o := range s.obstacles {
		if _, ok := o.affordances[category]; ok {
			raws = append(raws, surfaceplan.RawSurface(spatialmath.FanTriangulate(o.polygon)))
		}
	}
	return raws, nil
}

// AffordanceRefObstacles returns the names of the obstacles offering `category`, in the order of
// AffordancePoints.
func (s *Scene) AffordanceRefObstacles(category string) ([]string, error) {
	var names []string
	for _, o := range s.obstacles {
		if _, ok := o.affordances[category]; ok {
			names = append(names, o.name)
		}
	}
	return names, nil
}

// Affordances returns every affordance category offered in the scene, sorted.
func (s *Scene) Affordances() []string {
	set := map[string]struct{}{}
	for _, o := range s.obstacles {
		for a := range o.affordances {
			set[a] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// path is a piecewise interpolation between waypoints, parameterized by distance travelled by the
// root.
type path struct {
	waypoints []referenceframe.Configuration
	// cumulative[i] is the distance from the first waypoint to waypoint i.
	cumulative []float64
}

func newPath(cfg PathConfig) (*path, error) {
	p := &path{cumulative: []float64{0}}
	for i, wp := range cfg.Waypoints {
		c := referenceframe.NewConfiguration(wp...)
		if err := c.Validate(); err != nil {
			return nil, errors.Wrapf(err, "waypoint %d", i)
		}
		if i > 0 {
			// Only the root position counts towards the length.
			previous := p.waypoints[i-1]
			step := referenceframe.InputsL2Distance(previous[:referenceframe.RootPositionDoF], c[:referenceframe.RootPositionDoF])
			p.cumulative = append(p.cumulative, p.length()+step)
		}
		p.waypoints = append(p.waypoints, c)
	}
	return p, nil
}

func (p *path) length() float64 {
	return p.cumulative[len(p.cumulative)-1]
}

func (p *path) configAt(t float64) (referenceframe.Configuration, error) {
	length := p.length()
	if (t < 0 && !scalar.EqualWithinAbs(t, 0, paramTolerance)) ||
		(t > length && !scalar.EqualWithinAbs(t, length, paramTolerance)) {
		return nil, errors.Errorf("parameter %f outside of path [0, %f]", t, length)
	}
	if len(p.waypoints) == 1 {
		return p.waypoints[0], nil
	}
	// The segment ending at the first waypoint at or beyond t.
	end := sort.SearchFloat64s(p.cumulative, t)
	switch {
	case end == 0:
		return p.waypoints[0], nil
	case end >= len(p.cumulative):
		return p.waypoints[len(p.waypoints)-1], nil
	}
	start := end - 1
	segment := p.cumulative[end] - p.cumulative[start]
	if segment <= 0 {
		return p.waypoints[end], nil
	}
	return referenceframe.InterpolateConfigurations(p.waypoints[start], p.waypoints[end], (t-p.cumulative[start])/segment)
}
