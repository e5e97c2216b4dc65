package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/legplan/contactplan/referenceframe"
	"github.com/legplan/contactplan/spatialmath"
	"github.com/legplan/contactplan/surfaceplan"
	"github.com/legplan/contactplan/utils"
)

// Config describes a scene: the guide paths, the obstacles and the reachable volume of each leg.
type Config struct {
	Paths            []PathConfig     `json:"paths"`
	Obstacles        []ObstacleConfig `json:"obstacles"`
	ReachableVolumes VolumesConfig    `json:"reachable_volumes"`
	InitialConfig    []float64        `json:"initial_config,omitempty"`
	// ContactAffordance selects the obstacles a reachable volume can collide with; Support when empty.
	ContactAffordance string                 `json:"contact_affordance,omitempty"`
	Planner           map[string]interface{} `json:"planner,omitempty"`

	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// PathConfig is a piecewise path through its waypoint configurations.
type PathConfig struct {
	Name      string      `json:"name,omitempty"`
	Waypoints [][]float64 `json:"waypoints"`
}

// ObstacleConfig is a named convex planar polygon.
type ObstacleConfig struct {
	Name   string       `json:"name"`
	Points [][3]float64 `json:"points"`
	// Affordances lists the categories the obstacle offers; Support when empty.
	Affordances []string `json:"affordances,omitempty"`
}

// VolumesConfig holds the reachable volume of each leg.
type VolumesConfig struct {
	Left  BoxConfig `json:"left"`
	Right BoxConfig `json:"right"`
}

// BoxConfig is an oriented box expressed in the robot root frame.
type BoxConfig struct {
	Center [3]float64 `json:"center"`
	// Orientation is a quaternion stored (x, y, z, w); no rotation when empty.
	Orientation []float64  `json:"orientation,omitempty"`
	HalfSize    [3]float64 `json:"half_size"`
}

func (o *ObstacleConfig) points() []r3.Vector {
	pts := make([]r3.Vector, 0, len(o.Points))
	for _, p := range o.Points {
		pts = append(pts, r3.Vector{X: p[0], Y: p[1], Z: p[2]})
	}
	return pts
}

func (o *ObstacleConfig) affordances() []string {
	if len(o.Affordances) == 0 {
		return []string{surfaceplan.DefaultAffordance}
	}
	return o.Affordances
}

func (c *Config) contactAffordance() string {
	if c.ContactAffordance == "" {
		return surfaceplan.DefaultAffordance
	}
	return c.ContactAffordance
}

// Box returns the box in the root frame.
func (b *BoxConfig) Box() (*spatialmath.Box, error) {
	orientation := spatialmath.QuatFromXYZW(0, 0, 0, 1)
	if len(b.Orientation) > 0 {
		if len(b.Orientation) != 4 {
			return nil, errors.Errorf("orientation needs 4 components (x, y, z, w), got %d", len(b.Orientation))
		}
		orientation = spatialmath.QuatFromXYZW(b.Orientation[0], b.Orientation[1], b.Orientation[2], b.Orientation[3])
	}
	center := r3.Vector{X: b.Center[0], Y: b.Center[1], Z: b.Center[2]}
	return spatialmath.NewBox(spatialmath.NewPose(center, orientation),
		r3.Vector{X: b.HalfSize[0], Y: b.HalfSize[1], Z: b.HalfSize[2]})
}

// Validate returns every problem with the path.
func (p *PathConfig) Validate(path string) error {
	if len(p.Waypoints) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "waypoints")
	}
	var err error
	for i, wp := range p.Waypoints {
		if len(wp) < referenceframe.RootDoF {
			err = multierr.Append(err, utils.NewConfigValidationError(path,
				errors.Errorf("waypoint %d has %d components, need at least %d", i, len(wp), referenceframe.RootDoF)))
			continue
		}
		if len(wp) != len(p.Waypoints[0]) {
			err = multierr.Append(err, utils.NewConfigValidationError(path,
				errors.Errorf("waypoint %d has %d components but waypoint 0 has %d", i, len(wp), len(p.Waypoints[0]))))
		}
	}
	return err
}

// Validate returns every problem with the obstacle.
func (o *ObstacleConfig) Validate(path string) error {
	if o.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if len(o.Points) < 3 {
		return utils.NewConfigValidationError(path, errors.Errorf("polygon needs at least 3 points, got %d", len(o.Points)))
	}
	if spatialmath.PolygonNormal(o.points()) == (r3.Vector{}) {
		return utils.NewConfigValidationError(path, errors.New("polygon is degenerate"))
	}
	return nil
}

// Validate returns an error if the box is malformed.
func (b *BoxConfig) Validate(path string) error {
	if _, err := b.Box(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Validate returns every problem with the scene, combined.
func (c *Config) Validate(path string) error {
	var err error
	if len(c.Paths) == 0 {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "paths"))
	}
	for i := range c.Paths {
		err = multierr.Append(err, c.Paths[i].Validate(joinPath(path, "paths", i)))
	}
	seen := map[string]struct{}{}
	for i := range c.Obstacles {
		o := &c.Obstacles[i]
		err = multierr.Append(err, o.Validate(joinPath(path, "obstacles", i)))
		if _, ok := seen[o.Name]; ok && o.Name != "" {
			err = multierr.Append(err, utils.NewConfigValidationError(joinPath(path, "obstacles", i),
				errors.Errorf("duplicate obstacle name %q", o.Name)))
		}
		seen[o.Name] = struct{}{}
	}
	err = multierr.Append(err, c.ReachableVolumes.Left.Validate(path+".reachable_volumes.left"))
	err = multierr.Append(err, c.ReachableVolumes.Right.Validate(path+".reachable_volumes.right"))
	if c.InitialConfig != nil && len(c.InitialConfig) < referenceframe.RootDoF {
		err = multierr.Append(err, utils.NewConfigValidationError(path+".initial_config",
			referenceframe.NewTooFewDoFError(len(c.InitialConfig), referenceframe.RootDoF)))
	}
	if opts, optsErr := c.PlannerOptions(); optsErr != nil {
		err = multierr.Append(err, utils.NewConfigValidationError(path+".planner", optsErr))
	} else if opts.Affordance != c.contactAffordance() {
		err = multierr.Append(err, utils.NewConfigValidationError(path+".planner.affordance",
			errors.Errorf("planner affordance %q differs from contact_affordance %q", opts.Affordance, c.contactAffordance())))
	}
	return err
}

// PlannerOptions decodes the planner block over the default options. Without an affordance in the
// planner block, the planner uses the contact affordance.
func (c *Config) PlannerOptions() (surfaceplan.Options, error) {
	opts, err := surfaceplan.OptionsFromAttributes(c.Planner)
	if err != nil {
		return opts, err
	}
	if _, ok := c.Planner["affordance"]; !ok {
		opts.Affordance = c.contactAffordance()
	}
	return opts, nil
}

func joinPath(path, field string, i int) string {
	return fmt.Sprintf("%s.%s.%d", path, field, i)
}

// Read reads a scene from a JSON file, substituting environment variables first.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader decodes a scene and validates it. `originalPath` names the source in errors.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode scene from %q", originalPath)
	}
	if err := cfg.Validate("scene"); err != nil {
		return nil, err
	}
	return &cfg, nil
}
