package referenceframe

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/legplan/contactplan/spatialmath"
)

// Configuration layout: the root position (x, y, z), followed by the root orientation as a
// quaternion stored (x, y, z, w), followed by any joint values.
const (
	// RootPositionDoF is the number of leading position components.
	RootPositionDoF = 3
	// RootDoF is the number of components encoding the root pose.
	RootDoF = 7
)

// Configuration is a full state vector of the robot at one point along a path.
type Configuration []Input

// NewConfiguration wraps raw floats as a Configuration.
func NewConfiguration(values ...float64) Configuration {
	return Configuration(FloatsToInputs(values))
}

// Floats returns the raw component values.
func (c Configuration) Floats() []float64 {
	return InputsToFloats(c)
}

// Validate returns an error if the configuration is too short to encode a root pose.
func (c Configuration) Validate() error {
	if len(c) < RootDoF {
		return NewTooFewDoFError(len(c), RootDoF)
	}
	return nil
}

// Joints returns the components following the root pose.
func (c Configuration) Joints() []Input {
	if len(c) <= RootDoF {
		return nil
	}
	return c[RootDoF:]
}

func (c Configuration) String() string {
	return fmt.Sprintf("%v", c.Floats())
}

// PoseFromConfiguration decodes the root pose of a configuration.
func PoseFromConfiguration(c Configuration) (spatialmath.Pose, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return spatialmath.NewPose(
		r3.Vector{X: c[0].Value, Y: c[1].Value, Z: c[2].Value},
		spatialmath.QuatFromXYZW(c[3].Value, c[4].Value, c[5].Value, c[6].Value),
	), nil
}

// ConfigurationFromPose encodes a root pose followed by the given joint values.
func ConfigurationFromPose(p spatialmath.Pose, joints ...Input) Configuration {
	pt := p.Point()
	q := spatialmath.QuatToXYZW(p.Orientation())
	c := make(Configuration, 0, RootDoF+len(joints))
	c = append(c, Input{pt.X}, Input{pt.Y}, Input{pt.Z}, Input{q[0]}, Input{q[1]}, Input{q[2]}, Input{q[3]})
	return append(c, joints...)
}

// InterpolateConfigurations interpolates the root position and joints linearly and the root
// orientation spherically.
func InterpolateConfigurations(from, to Configuration, by float64) (Configuration, error) {
	if len(from) != len(to) {
		return nil, NewIncorrectDoFError(len(to), len(from))
	}
	p1, err := PoseFromConfiguration(from)
	if err != nil {
		return nil, err
	}
	p2, err := PoseFromConfiguration(to)
	if err != nil {
		return nil, err
	}
	joints, err := InterpolateInputs(from.Joints(), to.Joints(), by)
	if err != nil {
		return nil, err
	}
	return ConfigurationFromPose(spatialmath.Interpolate(p1, p2, by), joints...), nil
}
