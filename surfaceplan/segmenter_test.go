package surfaceplan

import (
	"context"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func newTestSegmenter(t *testing.T, length float64, collisions *fakeCollisions, opts Options) *Segmenter {
	t.Helper()
	sampler, err := NewPathSampler(&fakePaths{lengths: []float64{length}}, 0)
	test.That(t, err, test.ShouldBeNil)
	return NewSegmenter(sampler, NewContactQueryAdapter(collisions), opts)
}

func TestPolicyFromString(t *testing.T) {
	p, err := PolicyFromString("windowed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldEqual, Windowed)
	p, err = PolicyFromString("Per-Sample")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldEqual, PerSample)
	_, err = PolicyFromString("random")
	test.That(t, err, test.ShouldNotBeNil)

	text, err := Windowed.MarshalText()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(text), test.ShouldEqual, "windowed")
}

func TestWindows(t *testing.T) {
	perSample := DefaultOptions()
	windowed := DefaultOptions()
	windowed.Policy = Windowed

	for _, tc := range []struct {
		name    string
		length  float64
		opts    Options
		windows [][]float64
	}{
		{"per-sample", 3, perSample, [][]float64{{0}, {1}, {2}}},
		{"windowed", 3, windowed, [][]float64{{0, 0.5}, {1, 1.5}, {2, 2.5}}},
		{"windowed ending on a sub-sample", 2.5, windowed, [][]float64{{0, 0.5}, {1, 1.5}, {2, 2.5}}},
		{"windowed clipped at the path end", 2.2, windowed, [][]float64{{0, 0.5}, {1, 1.5}, {2}}},
		{"empty path", 0, windowed, [][]float64{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSegmenter(t, tc.length, &fakeCollisions{}, tc.opts)
			test.That(t, s.Windows(), test.ShouldResemble, tc.windows)
		})
	}

	t.Run("window wider than step", func(t *testing.T) {
		opts := windowed
		opts.WindowSize = 2
		s := newTestSegmenter(t, 3, &fakeCollisions{}, opts)
		test.That(t, s.Windows(), test.ShouldResemble, [][]float64{{0}, {1}, {2}})
	})

	t.Run("sub-sample count", func(t *testing.T) {
		opts := windowed
		opts.WindowSize = 0.3
		s := newTestSegmenter(t, 10, &fakeCollisions{}, opts)
		for _, w := range s.Windows() {
			// ceil(1 / 0.3)
			test.That(t, w, test.ShouldHaveLength, 4)
		}
	})
}

func TestSegmentPerSample(t *testing.T) {
	for _, parallelism := range []int{1, 3} {
		collisions := &fakeCollisions{}
		collisions.set(0, Left, Contact{"a", square(0, 0, 0, 1)})
		collisions.set(1, Right, Contact{"b", square(1, 0, 0, 1)}, Contact{"c", nil})
		opts := DefaultOptions()
		opts.Parallelism = parallelism

		phases, err := newTestSegmenter(t, 3, collisions, opts).Segment(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, phases, test.ShouldHaveLength, 3)
		for i, phase := range phases {
			test.That(t, phase.Index, test.ShouldEqual, i)
			test.That(t, phase.Sample.Param, test.ShouldEqual, float64(i))
			test.That(t, phase.SubSamples, test.ShouldEqual, 1)
		}
		test.That(t, []LegSide{phases[0].Side, phases[1].Side, phases[2].Side}, test.ShouldResemble, []LegSide{Left, Right, Left})
		test.That(t, phases[0].Contacts, test.ShouldResemble, []Contact{{"a", square(0, 0, 0, 1)}})
		test.That(t, phases[1].Contacts, test.ShouldHaveLength, 2)
		test.That(t, phases[2].Contacts, test.ShouldBeEmpty)

		test.That(t, collisions.queries, test.ShouldHaveLength, 3)
		sort.Slice(collisions.queries, func(i, j int) bool { return collisions.queries[i].param < collisions.queries[j].param })
		test.That(t, collisions.queries, test.ShouldResemble, []fakeQuery{{0, Left}, {1, Right}, {2, Left}})
	}
}

func TestSegmentWindowed(t *testing.T) {
	collisions := &fakeCollisions{}
	collisions.set(0, Left, Contact{"a", square(0, 0, 0, 1)})
	collisions.set(0.5, Left, Contact{"a", square(0, 0, 0, 1)}, Contact{"b", square(1, 0, 0, 1)})
	// Phase 1 moves the right leg, so a left contact at 1.5 is never seen.
	collisions.set(1.5, Left, Contact{"c", square(2, 0, 0, 1)})
	collisions.set(1.5, Right, Contact{"b", square(1, 0, 0, 1)})
	opts := DefaultOptions()
	opts.Policy = Windowed
	opts.Parallelism = 4

	phases, err := newTestSegmenter(t, 2, collisions, opts).Segment(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, phases, test.ShouldHaveLength, 2)

	test.That(t, phases[0].Side, test.ShouldEqual, Left)
	test.That(t, phases[0].SubSamples, test.ShouldEqual, 2)
	test.That(t, phases[0].Sample.Param, test.ShouldEqual, 0.)
	test.That(t, phases[0].Contacts, test.ShouldResemble, []Contact{
		{"a", square(0, 0, 0, 1)},
		{"a", square(0, 0, 0, 1)},
		{"b", square(1, 0, 0, 1)},
	})

	test.That(t, phases[1].Side, test.ShouldEqual, Right)
	test.That(t, phases[1].Sample.Param, test.ShouldEqual, 1.)
	test.That(t, phases[1].Contacts, test.ShouldResemble, []Contact{{"b", square(1, 0, 0, 1)}})

	for _, q := range collisions.queries {
		test.That(t, q.side, test.ShouldEqual, LegSideForPhase(int(q.param)))
	}
}

func TestSegmentErrors(t *testing.T) {
	t.Run("contract violation aborts", func(t *testing.T) {
		collisions := &fakeCollisions{dropGeometry: true}
		collisions.set(1, Right, Contact{"a", square(0, 0, 0, 1)})
		for _, policy := range []Policy{PerSample, Windowed} {
			opts := DefaultOptions()
			opts.Policy = policy
			_, err := newTestSegmenter(t, 3, collisions, opts).Segment(context.Background())
			test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)
			test.That(t, err.Error(), test.ShouldContainSubstring, "phase 1")
		}
	})

	t.Run("malformed path", func(t *testing.T) {
		sampler, err := NewPathSampler(&fakePaths{lengths: []float64{3}, failAt: 2}, 0)
		test.That(t, err, test.ShouldBeNil)
		_, err = NewSegmenter(sampler, NewContactQueryAdapter(&fakeCollisions{}), DefaultOptions()).Segment(context.Background())
		test.That(t, err, test.ShouldNotBeNil)

		// Configurations are resolved before any contact is queried.
		collisions := &fakeCollisions{}
		opts := DefaultOptions()
		opts.Policy = Windowed
		opts.Parallelism = 3
		_, err = NewSegmenter(sampler, NewContactQueryAdapter(collisions), opts).Segment(context.Background())
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "resolving path 0")
		test.That(t, collisions.queries, test.ShouldBeEmpty)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for _, parallelism := range []int{1, 2} {
			opts := DefaultOptions()
			opts.Parallelism = parallelism
			_, err := newTestSegmenter(t, 3, &fakeCollisions{}, opts).Segment(ctx)
			test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
		}
	})
}
