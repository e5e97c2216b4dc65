package surfaceplan

import (
	"github.com/golang/geo/r3"

	"github.com/legplan/contactplan/spatialmath"
)

// Decision records what the selector did with a contact.
type Decision int

const (
	// KeptIntersection means the intersection polygon itself became a candidate.
	KeptIntersection Decision = iota
	// SubstitutedSurface means the full catalog surface became a candidate.
	SubstitutedSurface
	// Duplicate means the resulting candidate was already present in the phase.
	Duplicate
)

func (d Decision) String() string {
	switch d {
	case KeptIntersection:
		return "kept_intersection"
	case SubstitutedSurface:
		return "substituted_surface"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// CandidateEvent describes the selection of one non-empty contact.
type CandidateEvent struct {
	Phase        int
	Side         LegSide
	Name         string
	Intersection []r3.Vector
	Area         float64
	Candidate    []r3.Vector
	Decision     Decision
}

// CandidateObserver is notified once for every non-empty contact the selector considers.
type CandidateObserver interface {
	ObserveCandidate(event CandidateEvent)
}

// CandidateObserverFunc adapts a function to a CandidateObserver.
type CandidateObserverFunc func(event CandidateEvent)

// ObserveCandidate calls f.
func (f CandidateObserverFunc) ObserveCandidate(event CandidateEvent) {
	f(event)
}

// DedupMode selects when duplicate candidates are removed from a phase.
type DedupMode int

const (
	// DedupAfter builds the whole phase then removes duplicates with RemoveDuplicates.
	DedupAfter DedupMode = iota
	// DedupIncremental skips a candidate already present when it is inserted.
	DedupIncremental
)

// Selector turns the raw contacts of a phase into its candidate surfaces.
type Selector struct {
	catalog         *Catalog
	useIntersection bool
	maxSurfaceArea  float64
	observer        CandidateObserver
}

// NewSelector returns a selector substituting from `catalog`. When `useIntersection` is set, an
// intersection polygon whose area exceeds `maxSurfaceArea` is kept as is. `observer` may be nil.
func NewSelector(catalog *Catalog, useIntersection bool, maxSurfaceArea float64, observer CandidateObserver) *Selector {
	return &Selector{
		catalog:         catalog,
		useIntersection: useIntersection,
		maxSurfaceArea:  maxSurfaceArea,
		observer:        observer,
	}
}

// Select returns the candidate polygons of a phase, free of duplicates, in the order their contacts
// were found. Contacts with empty geometry contribute nothing. It fails with ErrCatalogMiss if a
// substituted surface is missing from the catalog.
func (s *Selector) Select(phase RawPhase, mode DedupMode) ([][]r3.Vector, error) {
	candidates := make([][]r3.Vector, 0, len(phase.Contacts))
	events := make([]CandidateEvent, 0, len(phase.Contacts))
	for _, contact := range phase.Contacts {
		if len(contact.Geometry) == 0 {
			continue
		}
		event := CandidateEvent{
			Phase:        phase.Index,
			Side:         phase.Side,
			Name:         contact.Name,
			Intersection: contact.Geometry,
			Area:         spatialmath.Area(contact.Geometry),
		}
		if s.useIntersection && event.Area > s.maxSurfaceArea {
			event.Candidate = contact.Geometry
			event.Decision = KeptIntersection
		} else {
			surface, err := s.catalog.Lookup(contact.Name)
			if err != nil {
				return nil, err
			}
			event.Candidate = surface.Points
			event.Decision = SubstitutedSurface
		}
		if mode == DedupIncremental && containsPolygon(candidates, event.Candidate) {
			event.Decision = Duplicate
		} else {
			candidates = append(candidates, event.Candidate)
		}
		events = append(events, event)
	}

	if mode == DedupAfter {
		for i := range events {
			for _, earlier := range events[:i] {
				if earlier.Decision != Duplicate && spatialmath.PointsEqual(earlier.Candidate, events[i].Candidate) {
					events[i].Decision = Duplicate
					break
				}
			}
		}
		candidates = RemoveDuplicates(candidates)
	}
	if s.observer != nil {
		for _, event := range events {
			s.observer.ObserveCandidate(event)
		}
	}
	return candidates, nil
}

// RemoveDuplicates returns the polygons with every repeat of an earlier point sequence removed.
func RemoveDuplicates(polygons [][]r3.Vector) [][]r3.Vector {
	out := make([][]r3.Vector, 0, len(polygons))
	for _, p := range polygons {
		if !containsPolygon(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func containsPolygon(polygons [][]r3.Vector, p []r3.Vector) bool {
	for _, q := range polygons {
		if spatialmath.PointsEqual(q, p) {
			return true
		}
	}
	return false
}
