package surfaceplan

import (
	"context"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/legplan/contactplan/referenceframe"
	"github.com/legplan/contactplan/utils"
)

// paramTolerance absorbs floating point error when comparing path parameters against bounds.
const paramTolerance = 1e-9

// Sample is a configuration resolved at a path parameter.
type Sample struct {
	Param  float64
	Config referenceframe.Configuration
}

// PathSampler resolves configurations along one path of a PathEngine.
type PathSampler struct {
	engine PathEngine
	pathID int
	length float64
}

// NewPathSampler returns a sampler over path `pathID`. A negative id selects the last path.
func NewPathSampler(engine PathEngine, pathID int) (*PathSampler, error) {
	if pathID < 0 {
		pathID = engine.NumberPaths() - 1
	}
	if pathID < 0 || pathID >= engine.NumberPaths() {
		return nil, errors.Errorf("path %d does not exist, have %d paths", pathID, engine.NumberPaths())
	}
	length, err := engine.PathLength(pathID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting length of path %d", pathID)
	}
	if length < 0 {
		return nil, errors.Errorf("path %d has negative length %f", pathID, length)
	}
	return &PathSampler{engine: engine, pathID: pathID, length: length}, nil
}

// PathID returns the id of the sampled path.
func (s *PathSampler) PathID() int {
	return s.pathID
}

// Length returns the length of the sampled path.
func (s *PathSampler) Length() float64 {
	return s.length
}

// before returns whether t is strictly below the bound, treating near-equal values as equal.
func before(t, bound float64) bool {
	return t < bound && !scalar.EqualWithinAbs(t, bound, paramTolerance)
}

// Params returns the parameters 0, step, 2*step, ... strictly below the path length.
func (s *PathSampler) Params(step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var params []float64
	for k := 0; ; k++ {
		t := float64(k) * step
		if !before(t, s.length) {
			return params
		}
		params = append(params, t)
	}
}

// Sample resolves the configuration at parameter t.
func (s *PathSampler) Sample(t float64) (Sample, error) {
	cfg, err := s.engine.ConfigAtParam(s.pathID, t)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "resolving path %d at %f", s.pathID, t)
	}
	return Sample{Param: t, Config: cfg}, nil
}

// SampleAll resolves every parameter using up to `workers` concurrent queries. Samples are returned
// in parameter order.
func (s *PathSampler) SampleAll(ctx context.Context, params []float64, workers int) ([]Sample, error) {
	return utils.GetInParallel(ctx, len(params), workers, func(ctx context.Context, i int) (Sample, error) {
		return s.Sample(params[i])
	})
}

// Iterator returns a lazy iterator over the samples at Params(step). Each call starts over from the
// beginning of the path.
func (s *PathSampler) Iterator(step float64) *SampleIterator {
	return &SampleIterator{sampler: s, params: s.Params(step)}
}

// SampleIterator lazily resolves samples; use it as
//
//	for it.Next() {
//		sample := it.Sample()
//	}
//	if err := it.Err(); err != nil {
type SampleIterator struct {
	sampler *PathSampler
	params  []float64
	next    int
	current Sample
	err     error
}

// Next resolves the next sample, returning false when the path is exhausted or resolution failed.
func (it *SampleIterator) Next() bool {
	if it.err != nil || it.next >= len(it.params) {
		return false
	}
	it.current, it.err = it.sampler.Sample(it.params[it.next])
	it.next++
	return it.err == nil
}

// Sample returns the sample resolved by the last successful call to Next.
func (it *SampleIterator) Sample() Sample {
	return it.current
}

// Index returns the position of the current sample.
func (it *SampleIterator) Index() int {
	return it.next - 1
}

// Err returns the error that stopped iteration, if any.
func (it *SampleIterator) Err() error {
	return it.err
}
