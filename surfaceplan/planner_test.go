package surfaceplan

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/legplan/contactplan/logging"
	"github.com/legplan/contactplan/referenceframe"
)

type testScene struct {
	paths       *fakePaths
	collisions  *fakeCollisions
	affordances *fakeAffordances
}

// newTestScene has a floor, a step and a ramp. Along a path of length 3, the left leg reaches the
// floor at 0, both legs reach the step at 1, and nothing is reached at 2.
func newTestScene() *testScene {
	floor, step, ramp := square(0, 0, 0, 1), square(1, 0, 0.1, 1), square(2, 0, 0.2, 1)
	s := &testScene{
		paths:       &fakePaths{lengths: []float64{1, 3}, initial: referenceframe.NewConfiguration(0, 0, 0, 0, 0, 1, 0)},
		collisions:  &fakeCollisions{},
		affordances: &fakeAffordances{names: []string{"floor", "step", "ramp"}, squares: [][]r3.Vector{floor, step, ramp}},
	}
	s.collisions.set(0, Left, Contact{"floor", floor[:3]}, Contact{"step", nil})
	s.collisions.set(0.5, Left, Contact{"step", step[:3]})
	s.collisions.set(1, Right, Contact{"step", step}, Contact{"floor", floor[:3]})
	s.collisions.set(1, Left, Contact{"ramp", ramp})
	return s
}

func (s *testScene) planner(t *testing.T, opts ...PlannerOption) *Planner {
	return NewPlanner(s.paths, s.collisions, s.affordances, logging.NewTestLogger(t), opts...)
}

func TestPlanPerSample(t *testing.T) {
	s := newTestScene()
	logger, logs := logging.NewObservedTestLogger(t)
	logger.SetLevel(logging.DEBUG)
	obs := &recordingObserver{}
	planner := NewPlanner(s.paths, s.collisions, s.affordances, logger, WithObserver(obs))

	seq, err := planner.Plan(context.Background(), DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seq.Len(), test.ShouldEqual, 3)
	test.That(t, seq.Surfaces, test.ShouldHaveLength, 3)
	test.That(t, seq.PhasePoints(0), test.ShouldResemble, [][]r3.Vector{square(0, 0, 0, 1)})
	test.That(t, seq.PhasePoints(1), test.ShouldResemble, [][]r3.Vector{square(1, 0, 0.1, 1), square(0, 0, 0, 1)})
	// Nothing is reached at 2, so the phase offers the surfaces of phase 1.
	test.That(t, seq.PhasePoints(2), test.ShouldResemble, seq.PhasePoints(1))

	test.That(t, s.collisions.queries, test.ShouldResemble, []fakeQuery{{0, Left}, {1, Right}, {2, Left}})
	test.That(t, obs.decisions(), test.ShouldResemble, []Decision{SubstitutedSurface, SubstitutedSurface, SubstitutedSurface})

	test.That(t, logs.FilterMessage("phase sealed").Len(), test.ShouldEqual, 3)
	planned := logs.FilterMessage("planned contact surfaces").All()
	test.That(t, planned, test.ShouldHaveLength, 1)
	test.That(t, planned[0].ContextMap()["path"], test.ShouldEqual, int64(1))
}

func TestPlanWindowedWithIntersections(t *testing.T) {
	s := newTestScene()
	opts := DefaultOptions()
	opts.Policy = Windowed
	opts.UseIntersection = true
	opts.Parallelism = 3

	seq, err := s.planner(t).Plan(context.Background(), opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seq.Len(), test.ShouldEqual, 3)
	// Phase 0 sees the floor sliver (area 0.5) and the step sliver (area 0.5) and keeps both.
	test.That(t, seq.PhasePoints(0), test.ShouldResemble, [][]r3.Vector{square(0, 0, 0, 1)[:3], square(1, 0, 0.1, 1)[:3]})
	test.That(t, seq.PhasePoints(1), test.ShouldResemble, [][]r3.Vector{square(1, 0, 0.1, 1), square(0, 0, 0, 1)[:3]})
	test.That(t, seq.CandidateCounts(), test.ShouldResemble, []int{2, 2, 2})
}

func TestPlanSmallIntersectionsAreSubstituted(t *testing.T) {
	s := newTestScene()
	opts := DefaultOptions()
	opts.UseIntersection = true
	opts.MaxSurfaceArea = 0.75

	seq, err := s.planner(t).Plan(context.Background(), opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seq.PhasePoints(0), test.ShouldResemble, [][]r3.Vector{square(0, 0, 0, 1)})
	test.That(t, seq.PhasePoints(1), test.ShouldResemble, [][]r3.Vector{square(1, 0, 0.1, 1), square(0, 0, 0, 1)})
}

func TestPlanPathSelection(t *testing.T) {
	s := newTestScene()
	opts := DefaultOptions()
	first := 0
	opts.PathID = &first

	seq, err := s.planner(t).Plan(context.Background(), opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seq.Len(), test.ShouldEqual, 1)

	missing := 5
	opts.PathID = &missing
	_, err = s.planner(t).Plan(context.Background(), opts)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanErrors(t *testing.T) {
	t.Run("invalid options", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Step = -1
		_, err := newTestScene().planner(t).Plan(context.Background(), opts)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("catalog miss", func(t *testing.T) {
		s := newTestScene()
		s.collisions.set(2, Left, Contact{"pit", square(5, 5, 0, 1)})
		_, err := s.planner(t).Plan(context.Background(), DefaultOptions())
		test.That(t, errors.Is(err, ErrCatalogMiss), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "phase 2")
	})

	t.Run("contract violation", func(t *testing.T) {
		s := newTestScene()
		s.collisions.dropGeometry = true
		_, err := s.planner(t).Plan(context.Background(), DefaultOptions())
		test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)
	})
}

func TestAllSurfaces(t *testing.T) {
	s := newTestScene()
	planner := s.planner(t)

	seq, err := planner.AllSurfaces(context.Background(), 4, DefaultAffordance)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seq.Len(), test.ShouldEqual, 4)
	all := [][]r3.Vector{square(0, 0, 0, 1), square(1, 0, 0.1, 1), square(2, 0, 0.2, 1)}
	test.That(t, seq.PhasePoints(0), test.ShouldResemble, all[:1])
	test.That(t, seq.PhasePoints(1), test.ShouldResemble, all)
	test.That(t, seq.PhasePoints(2), test.ShouldResemble, all)
	test.That(t, seq.PhasePoints(3), test.ShouldResemble, all[2:])
	for _, rm := range seq.Rotations {
		// The initial configuration is turned half way around z.
		test.That(t, rm.At(0, 0), test.ShouldAlmostEqual, -1)
		test.That(t, rm.At(1, 1), test.ShouldAlmostEqual, -1)
		test.That(t, rm.At(2, 2), test.ShouldAlmostEqual, 1)
	}

	single, err := planner.AllSurfaces(context.Background(), 1, DefaultAffordance)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, single.PhasePoints(0), test.ShouldResemble, all[:1])

	none, err := planner.AllSurfaces(context.Background(), 0, DefaultAffordance)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, none.Len(), test.ShouldEqual, 0)

	_, err = planner.AllSurfaces(context.Background(), -1, DefaultAffordance)
	test.That(t, err, test.ShouldNotBeNil)

	pathsOnly := struct{ PathEngine }{s.paths}
	_, err = NewPlanner(pathsOnly, s.collisions, s.affordances, logging.NewTestLogger(t)).
		AllSurfaces(context.Background(), 2, DefaultAffordance)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected implementation of InitialConfigProvider")

	s.paths.initial = nil
	_, err = planner.AllSurfaces(context.Background(), 2, DefaultAffordance)
	test.That(t, err, test.ShouldNotBeNil)
}
