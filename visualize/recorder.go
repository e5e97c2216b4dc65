// Package visualize renders the candidate surfaces chosen while planning.
package visualize

import (
	"image/color"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/legplan/contactplan/spatialmath"
	"github.com/legplan/contactplan/surfaceplan"
)

var (
	intersectionColor = color.RGBA{R: 0, G: 0, B: 255, A: 96}
	substitutedColor  = color.RGBA{R: 0, G: 160, B: 0, A: 64}
)

// Recorder is a surfaceplan.CandidateObserver remembering every decision so they can be drawn
// top down.
type Recorder struct {
	mu      sync.Mutex
	events  []surfaceplan.CandidateEvent
	catalog map[string][]r3.Vector
	names   []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{catalog: map[string][]r3.Vector{}}
}

// ObserveCandidate records the event.
func (r *Recorder) ObserveCandidate(event surfaceplan.CandidateEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// AddCatalog draws every catalog surface as an outline behind the candidates.
func (r *Recorder) AddCatalog(catalog *surfaceplan.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range catalog.Names() {
		s, err := catalog.Lookup(name)
		if err != nil {
			return err
		}
		if _, ok := r.catalog[name]; !ok {
			r.names = append(r.names, name)
		}
		r.catalog[name] = s.Points
	}
	return nil
}

// Counts returns the number of events per decision.
func (r *Recorder) Counts() map[surfaceplan.Decision]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[surfaceplan.Decision]int{}
	for _, e := range r.events {
		counts[e.Decision]++
	}
	return counts
}

func toXYs(points []r3.Vector) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for _, p := range points {
		xys = append(xys, plotter.XY{X: p.X, Y: p.Y})
	}
	return xys
}

// Plot draws the projection onto the ground plane of the catalog outlines, the intersection
// polygons kept and the catalog surfaces substituted. Duplicates are not drawn.
func (r *Recorder) Plot(title string) (*plot.Plot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	labels := plotter.XYLabels{}
	palette := colorful.FastHappyPalette(len(r.names))
	for i, name := range r.names {
		outline, err := plotter.NewPolygon(toXYs(r.catalog[name]))
		if err != nil {
			return nil, errors.Wrapf(err, "drawing surface %q", name)
		}
		outline.LineStyle.Color = palette[i]
		outline.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(outline)

		c := spatialmath.Centroid(r.catalog[name])
		labels.XYs = append(labels.XYs, plotter.XY{X: c.X, Y: c.Y})
		labels.Labels = append(labels.Labels, name)
	}
	if len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}

	var keptLegend, substitutedLegend bool
	for _, e := range r.events {
		if e.Decision == surfaceplan.Duplicate || len(e.Candidate) < 3 {
			continue
		}
		poly, err := plotter.NewPolygon(toXYs(e.Candidate))
		if err != nil {
			return nil, errors.Wrapf(err, "drawing candidate of phase %d", e.Phase)
		}
		switch e.Decision {
		case surfaceplan.KeptIntersection:
			poly.Color = intersectionColor
			if !keptLegend {
				p.Legend.Add("kept intersection", poly)
				keptLegend = true
			}
		default:
			poly.Color = substitutedColor
			if !substitutedLegend {
				p.Legend.Add("substituted surface", poly)
				substitutedLegend = true
			}
		}
		p.Add(poly)
	}
	return p, nil
}

// Save writes the plot to `file`; the format follows the file extension (png, svg, pdf, ...).
func (r *Recorder) Save(file, title string) error {
	p, err := r.Plot(title)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return errors.Wrapf(err, "saving plot to %q", file)
	}
	return nil
}
