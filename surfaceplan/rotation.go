package surfaceplan

import (
	"github.com/pkg/errors"

	"github.com/legplan/contactplan/referenceframe"
	"github.com/legplan/contactplan/spatialmath"
)

// RotationFromConfiguration returns the root orientation of a configuration as a rotation matrix.
func RotationFromConfiguration(cfg referenceframe.Configuration) (*spatialmath.RotationMatrix, error) {
	pose, err := referenceframe.PoseFromConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return pose.RotationMatrix(), nil
}

// RotationsFromConfigurations returns one rotation per configuration, in order.
func RotationsFromConfigurations(configs []referenceframe.Configuration) ([]*spatialmath.RotationMatrix, error) {
	rotations := make([]*spatialmath.RotationMatrix, 0, len(configs))
	for i, cfg := range configs {
		rm, err := RotationFromConfiguration(cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "configuration %d", i)
		}
		rotations = append(rotations, rm)
	}
	return rotations, nil
}
