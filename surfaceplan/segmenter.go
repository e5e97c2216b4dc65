package surfaceplan

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/legplan/contactplan/utils"
)

// Policy decides how path samples are grouped into phases.
type Policy int

const (
	// PerSample makes one phase per path sample, queried once.
	PerSample Policy = iota
	// Windowed makes one phase per step of path, queried at every sub-sample of a finer window.
	Windowed
)

func (p Policy) String() string {
	switch p {
	case PerSample:
		return "per-sample"
	case Windowed:
		return "windowed"
	default:
		return "unknown"
	}
}

// PolicyFromString parses a policy name as printed by Policy.String.
func PolicyFromString(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per-sample", "per_sample", "":
		return PerSample, nil
	case "windowed", "continuous":
		return Windowed, nil
	default:
		return PerSample, errors.Errorf("unknown segmentation policy %q", s)
	}
}

// MarshalText encodes the policy name.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a policy name.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := PolicyFromString(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RawPhase is a phase whose contacts have been gathered but not yet resolved into candidates.
type RawPhase struct {
	Index int
	Side  LegSide
	// Sample is the first sample of the phase; the phase's rotation comes from it.
	Sample Sample
	// SubSamples is the number of configurations queried for this phase.
	SubSamples int
	// Contacts holds every contact of every sub-sample, in path order, repeats included.
	Contacts []Contact
}

// Segmenter walks a path and gathers the raw contacts of each phase.
type Segmenter struct {
	sampler    *PathSampler
	contacts   *ContactQueryAdapter
	policy     Policy
	step       float64
	windowSize float64
	workers    int
}

// NewSegmenter returns a segmenter following the policy, step, window size and parallelism of
// `opts`.
func NewSegmenter(sampler *PathSampler, contacts *ContactQueryAdapter, opts Options) *Segmenter {
	return &Segmenter{
		sampler:    sampler,
		contacts:   contacts,
		policy:     opts.Policy,
		step:       opts.Step,
		windowSize: opts.WindowSize,
		workers:    opts.Parallelism,
	}
}

// Windows returns, for each phase, the path parameters queried during it.
func (s *Segmenter) Windows() [][]float64 {
	starts := s.sampler.Params(s.step)
	windows := make([][]float64, 0, len(starts))
	for _, start := range starts {
		if s.policy != Windowed {
			windows = append(windows, []float64{start})
			continue
		}
		end := start + s.step
		var window []float64
		for j := 0; ; j++ {
			t := start + float64(j)*s.windowSize
			if !before(t, end) || before(s.sampler.Length(), t) {
				break
			}
			window = append(window, t)
			if s.windowSize <= 0 {
				break
			}
		}
		windows = append(windows, window)
	}
	return windows
}

type query struct {
	phase int
	param float64
}

// Segment returns the raw phases of the path in path order. The leg side of every query in a
// phase is that of the phase index.
func (s *Segmenter) Segment(ctx context.Context) ([]RawPhase, error) {
	if s.policy == PerSample && s.workers == 1 {
		return s.segmentStreaming(ctx)
	}
	windows := s.Windows()
	var queries []query
	for i, window := range windows {
		for _, t := range window {
			queries = append(queries, query{phase: i, param: t})
		}
	}

	params := make([]float64, 0, len(queries))
	for _, q := range queries {
		params = append(params, q.param)
	}
	samples, err := s.sampler.SampleAll(ctx, params, s.workers)
	if err != nil {
		return nil, err
	}
	contacts, err := utils.GetInParallel(ctx, len(queries), s.workers, func(ctx context.Context, i int) ([]Contact, error) {
		q := queries[i]
		found, err := s.contacts.Query(samples[i].Config, LegSideForPhase(q.phase))
		if err != nil {
			return nil, errors.Wrapf(err, "phase %d at %f", q.phase, q.param)
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}

	phases := make([]RawPhase, len(windows))
	for i, q := range queries {
		phase := &phases[q.phase]
		if phase.SubSamples == 0 {
			phase.Index = q.phase
			phase.Side = LegSideForPhase(q.phase)
			phase.Sample = samples[i]
		}
		phase.SubSamples++
		phase.Contacts = append(phase.Contacts, contacts[i]...)
	}
	return phases, nil
}

// segmentStreaming resolves one configuration at a time, in path order.
func (s *Segmenter) segmentStreaming(ctx context.Context) ([]RawPhase, error) {
	var phases []RawPhase
	it := s.sampler.Iterator(s.step)
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i, sample := it.Index(), it.Sample()
		contacts, err := s.contacts.Query(sample.Config, LegSideForPhase(i))
		if err != nil {
			return nil, errors.Wrapf(err, "phase %d at %f", i, sample.Param)
		}
		phases = append(phases, RawPhase{
			Index:      i,
			Side:       LegSideForPhase(i),
			Sample:     sample,
			SubSamples: 1,
			Contacts:   contacts,
		})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return phases, nil
}
