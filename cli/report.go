package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/legplan/contactplan/spatialmath"
	"github.com/legplan/contactplan/surfaceplan"
	"github.com/legplan/contactplan/utils"
)

const histogramWidth = 40

// phaseTable returns a table with one row per phase: the moving leg, the root yaw and the candidate
// surfaces.
func phaseTable(seq *surfaceplan.Sequence) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Leg", "Yaw", "Candidates", "Area"})
	for i := 0; i < seq.Len(); i++ {
		rot := seq.Rotations[i]
		var area float64
		for _, points := range seq.PhasePoints(i) {
			area += spatialmath.Area(points)
		}
		t.AppendRow(table.Row{
			i,
			surfaceplan.LegSideForPhase(i),
			fmt.Sprintf("%.1f", utils.ModAngDeg(utils.RadToDeg(math.Atan2(rot.At(1, 0), rot.At(0, 0))))),
			len(seq.Surfaces[i]),
			fmt.Sprintf("%.3f", area),
		})
	}
	return t.Render()
}

// candidateStats summarizes the number of candidates per phase.
func candidateStats(counts []int) (mean, maximum float64, err error) {
	if len(counts) == 0 {
		return 0, 0, nil
	}
	data := stats.LoadRawData(counts)
	if mean, err = stats.Mean(data); err != nil {
		return 0, 0, err
	}
	if maximum, err = stats.Max(data); err != nil {
		return 0, 0, err
	}
	return mean, maximum, nil
}

func writeReport(w io.Writer, results []pathSequence) error {
	for _, r := range results {
		if r.PathID >= 0 {
			fmt.Fprintf(w, "path %d\n", r.PathID)
		}
		fmt.Fprintln(w, phaseTable(r.Sequence))

		counts := r.Sequence.CandidateCounts()
		mean, maximum, err := candidateStats(counts)
		if err != nil {
			return errors.Wrap(err, "computing candidate statistics")
		}
		fmt.Fprintf(w, "phases: %d, candidates per phase: mean %.2f, max %.0f\n", len(counts), mean, maximum)
		if len(counts) > 1 {
			samples := make([]float64, 0, len(counts))
			for _, c := range counts {
				samples = append(samples, float64(c))
			}
			bins := int(maximum) + 1
			if err := histogram.Fprint(w, histogram.Hist(bins, samples), histogram.Linear(histogramWidth)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCatalog(w io.Writer, catalog *surfaceplan.Catalog) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Vertices", "Area", "Normal"})
	for _, name := range catalog.Names() {
		s, err := catalog.Lookup(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{
			name,
			len(s.Points),
			fmt.Sprintf("%.3f", spatialmath.Area(s.Points)),
			fmt.Sprintf("X:%.2f, Y:%.2f, Z:%.2f", s.Normal.X, s.Normal.Y, s.Normal.Z),
		})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d surfaces", catalog.Len())})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
