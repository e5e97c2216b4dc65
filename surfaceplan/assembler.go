package surfaceplan

import (
	"encoding/json"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/legplan/contactplan/spatialmath"
)

// Sequence is the result of planning: one rotation and one list of candidate surfaces per phase.
// Each surface is a 3xN matrix with one column per vertex.
type Sequence struct {
	Rotations []*spatialmath.RotationMatrix
	Surfaces  [][]*mat.Dense
}

// Len returns the number of phases.
func (s *Sequence) Len() int {
	return len(s.Rotations)
}

// PhasePoints returns the candidate surfaces of phase `i` as point lists.
func (s *Sequence) PhasePoints(i int) [][]r3.Vector {
	out := make([][]r3.Vector, 0, len(s.Surfaces[i]))
	for _, m := range s.Surfaces[i] {
		out = append(out, PointsFromMatrix(m))
	}
	return out
}

// CandidateCounts returns the number of candidate surfaces of each phase.
func (s *Sequence) CandidateCounts() []int {
	counts := make([]int, 0, len(s.Surfaces))
	for _, phase := range s.Surfaces {
		counts = append(counts, len(phase))
	}
	return counts
}

const orthonormalTolerance = 1e-9

type sequenceJSON struct {
	Rotations []*spatialmath.RotationMatrix `json:"rotations"`
	Surfaces  [][][][]float64               `json:"surfaces"`
}

// MarshalJSON encodes every surface matrix as its three coordinate rows.
func (s *Sequence) MarshalJSON() ([]byte, error) {
	out := sequenceJSON{Rotations: s.Rotations, Surfaces: make([][][][]float64, 0, len(s.Surfaces))}
	for _, phase := range s.Surfaces {
		surfaces := make([][][]float64, 0, len(phase))
		for _, m := range phase {
			rows := make([][]float64, 3)
			for r := range rows {
				rows[r] = mat.Row(nil, r, m)
			}
			surfaces = append(surfaces, rows)
		}
		out.Surfaces = append(out.Surfaces, surfaces)
	}
	return json.Marshal(out)
}

// Assemble pairs rotations with the candidate polygons of each phase. Empty polygons are dropped.
// A phase without any candidate inherits the surfaces of the phase before it so that every phase
// offers somewhere to step. Inherited surfaces are copies.
func Assemble(rotations []*spatialmath.RotationMatrix, phases [][][]r3.Vector) (*Sequence, error) {
	if len(rotations) != len(phases) {
		return nil, errors.Wrapf(ErrContractViolation, "%d rotations for %d phases", len(rotations), len(phases))
	}
	for i, rot := range rotations {
		if rot == nil || !rot.IsOrthonormal(orthonormalTolerance) {
			return nil, errors.Wrapf(ErrContractViolation, "rotation %d is not orthonormal", i)
		}
	}
	seq := &Sequence{Rotations: rotations, Surfaces: make([][]*mat.Dense, 0, len(phases))}
	previous := []*mat.Dense{}
	for _, candidates := range phases {
		if len(candidates) == 0 {
			inherited := make([]*mat.Dense, 0, len(previous))
			for _, m := range previous {
				inherited = append(inherited, mat.DenseCopyOf(m))
			}
			seq.Surfaces = append(seq.Surfaces, inherited)
			continue
		}
		current := make([]*mat.Dense, 0, len(candidates))
		for _, points := range candidates {
			if len(points) == 0 {
				continue
			}
			current = append(current, SurfaceMatrix(points))
		}
		seq.Surfaces = append(seq.Surfaces, current)
		previous = current
	}
	return seq, nil
}
