package referenceframe

import "github.com/pkg/errors"

// NewIncorrectDoFError returns an error indicating that the number of inputs does not match the
// number of degrees of freedom expected.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// NewTooFewDoFError returns an error indicating that a configuration is shorter than the root pose
// it must encode.
func NewTooFewDoFError(actual, minimum int) error {
	return errors.Errorf("configuration has %d components, need at least %d", actual, minimum)
}
