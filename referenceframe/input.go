// Package referenceframe defines the configuration vectors produced by a path engine and the poses
// they describe.
package referenceframe

import (
	"gonum.org/v1/gonum/floats"
)

// Input wraps one component of a configuration vector, e.g. a root position coordinate, a
// quaternion component or a joint angle.
//   - revolute inputs should be in radians.
//   - prismatic inputs should be in meters.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, f := range inputs {
		floats[i] = f.Value
	}
	return floats
}

// InterpolateInputs returns the linear interpolation `by` of the way from `from` to `to`. Both must
// have the same length.
func InterpolateInputs(from, to []Input, by float64) ([]Input, error) {
	if len(from) != len(to) {
		return nil, NewIncorrectDoFError(len(to), len(from))
	}
	start, end := InputsToFloats(from), InputsToFloats(to)
	// start + (end - start) * by
	floats.Sub(end, start)
	floats.AddScaled(start, by, end)
	return FloatsToInputs(start), nil
}

// InputsL2Distance returns the euclidean distance between two input vectors of equal length.
func InputsL2Distance(from, to []Input) float64 {
	return floats.Distance(InputsToFloats(from), InputsToFloats(to), 2)
}
