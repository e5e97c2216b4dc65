// Package surfaceplan splits the guide path of a legged robot into phases and gives each phase the
// contact surfaces a foot may step on during it, along with the root orientation of the phase.
package surfaceplan

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/legplan/contactplan/logging"
	"github.com/legplan/contactplan/referenceframe"
	"github.com/legplan/contactplan/spatialmath"
	"github.com/legplan/contactplan/utils"
)

// Planner computes contact surface sequences over the paths of a PathEngine.
type Planner struct {
	paths       PathEngine
	collisions  CollisionEngine
	affordances AffordanceEngine
	geometry    SurfaceGeometry
	observer    CandidateObserver
	logger      logging.Logger
}

// PlannerOption customizes a Planner.
type PlannerOption func(*Planner)

// WithObserver notifies `observer` of every candidate decision.
func WithObserver(observer CandidateObserver) PlannerOption {
	return func(p *Planner) {
		p.observer = observer
	}
}

// WithGeometry replaces the HullGeometry used to build the catalog.
func WithGeometry(geometry SurfaceGeometry) PlannerOption {
	return func(p *Planner) {
		p.geometry = geometry
	}
}

// NewPlanner returns a planner querying the given engines.
func NewPlanner(
	paths PathEngine,
	collisions CollisionEngine,
	affordances AffordanceEngine,
	logger logging.Logger,
	opts ...PlannerOption,
) *Planner {
	p := &Planner{
		paths:       paths,
		collisions:  collisions,
		affordances: affordances,
		geometry:    HullGeometry{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog builds the surface catalog of an affordance category.
func (p *Planner) Catalog(affordance string) (*Catalog, error) {
	return NewCatalog(p.affordances, p.geometry, affordance)
}

// Plan segments a path into phases and selects the candidate surfaces of each. Phases exist at
// every multiple of opts.Step strictly below the path length; phase i moves the left leg when i is
// even and the right leg otherwise.
func (p *Planner) Plan(ctx context.Context, opts Options) (*Sequence, error) {
	if err := opts.Validate("planner"); err != nil {
		return nil, err
	}
	start := time.Now()

	pathID := -1
	if opts.PathID != nil {
		pathID = *opts.PathID
	}
	sampler, err := NewPathSampler(p.paths, pathID)
	if err != nil {
		return nil, err
	}
	catalog, err := p.Catalog(opts.Affordance)
	if err != nil {
		return nil, err
	}
	logger := p.logger.With("path", sampler.PathID())
	logger.CDebugw(ctx, "starting plan",
		"length", sampler.Length(), "policy", opts.Policy, "surfaces", catalog.Len())

	raw, err := NewSegmenter(sampler, NewContactQueryAdapter(p.collisions), opts).Segment(ctx)
	if err != nil {
		return nil, err
	}

	mode := DedupAfter
	if opts.Policy == Windowed {
		mode = DedupIncremental
	}
	selector := NewSelector(catalog, opts.UseIntersection, opts.MaxSurfaceArea, p.observer)
	phases := make([][][]r3.Vector, 0, len(raw))
	configs := make([]referenceframe.Configuration, 0, len(raw))
	for _, phase := range raw {
		candidates, err := selector.Select(phase, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "phase %d", phase.Index)
		}
		logger.CDebugw(ctx, "phase sealed",
			"phase", phase.Index,
			"side", phase.Side,
			"param", phase.Sample.Param,
			"samples", phase.SubSamples,
			"contacts", len(phase.Contacts),
			"candidates", len(candidates))
		phases = append(phases, candidates)
		configs = append(configs, phase.Sample.Config)
	}

	rotations, err := RotationsFromConfigurations(configs)
	if err != nil {
		return nil, err
	}
	seq, err := Assemble(rotations, phases)
	if err != nil {
		return nil, err
	}
	logger.Infow("planned contact surfaces",
		"phases", seq.Len(), "duration", time.Since(start))
	return seq, nil
}

// AllSurfaces ignores the path and offers every surface of the catalog in each of `numPhases`
// phases, ordered by their points. When there is more than one surface, the first phase keeps only
// the first surface and the last phase only the last. Every rotation is the initial root
// orientation, which requires the path engine to be an InitialConfigProvider.
func (p *Planner) AllSurfaces(ctx context.Context, numPhases int, affordance string) (*Sequence, error) {
	if numPhases < 0 {
		return nil, errors.Errorf("number of phases cannot be negative, got %d", numPhases)
	}
	provider, ok := p.paths.(InitialConfigProvider)
	if !ok {
		return nil, utils.NewUnimplementedInterfaceError("InitialConfigProvider", p.paths)
	}
	catalog, err := p.Catalog(affordance)
	if err != nil {
		return nil, err
	}
	initial, err := provider.InitialConfig()
	if err != nil {
		return nil, errors.Wrap(err, "getting initial configuration")
	}
	rotation, err := RotationFromConfiguration(initial)
	if err != nil {
		return nil, err
	}

	all := make([][]r3.Vector, 0, catalog.Len())
	for _, s := range catalog.SortedSurfaces() {
		all = append(all, s.Points)
	}
	phases := make([][][]r3.Vector, numPhases)
	rotations := make([]*spatialmath.RotationMatrix, numPhases)
	for i := range phases {
		phases[i] = all
		rotations[i] = rotation
	}
	if numPhases > 0 && len(all) > 1 {
		phases[0] = all[:1]
		last := phases[numPhases-1]
		phases[numPhases-1] = last[len(last)-1:]
	}
	p.logger.CDebugw(ctx, "offering all surfaces", "phases", numPhases, "surfaces", len(all))
	return Assemble(rotations, phases)
}
