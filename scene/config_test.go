package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"

	"github.com/legplan/contactplan/surfaceplan"
)

func TestRead(t *testing.T) {
	cfg, err := Read(filepath.Join("testdata", "stairs.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, filepath.Join("testdata", "stairs.json"))
	test.That(t, cfg.Paths, test.ShouldHaveLength, 2)
	test.That(t, cfg.Paths[1].Name, test.ShouldEqual, "climb")
	test.That(t, cfg.Obstacles, test.ShouldHaveLength, 4)
	test.That(t, cfg.ReachableVolumes.Left.HalfSize, test.ShouldResemble, [3]float64{0.4, 0.12, 0.15})

	opts, err := cfg.PlannerOptions()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.Step, test.ShouldEqual, 1.)
	test.That(t, opts.MaxSurfaceArea, test.ShouldEqual, 0.1)
	test.That(t, opts.Policy, test.ShouldEqual, surfaceplan.PerSample)

	_, err = Read(filepath.Join("testdata", "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadSubstitutesEnvironment(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "stairs.json"))
	test.That(t, err, test.ShouldBeNil)
	templated := strings.Replace(string(data), `"name": "floor"`, `"name": "${FLOOR_NAME}"`, 1)
	file := filepath.Join(t.TempDir(), "scene.json")
	test.That(t, os.WriteFile(file, []byte(templated), 0o600), test.ShouldBeNil)

	t.Setenv("FLOOR_NAME", "ground")
	cfg, err := Read(file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Obstacles[0].Name, test.ShouldEqual, "ground")
}

func TestFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := FromReader("inline", strings.NewReader(`{"paths": [], "pathz": []}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "inline")
}

func validConfig() *Config {
	return &Config{
		Paths: []PathConfig{{Waypoints: [][]float64{{0, 0, 1, 0, 0, 0, 1}, {1, 0, 1, 0, 0, 0, 1}}}},
		Obstacles: []ObstacleConfig{
			{Name: "floor", Points: [][3]float64{{-1, -1, 0}, {2, -1, 0}, {2, 1, 0}, {-1, 1, 0}}},
		},
		ReachableVolumes: VolumesConfig{
			Left:  BoxConfig{Center: [3]float64{0, 0.1, -1}, HalfSize: [3]float64{0.3, 0.1, 0.1}},
			Right: BoxConfig{Center: [3]float64{0, -0.1, -1}, HalfSize: [3]float64{0.3, 0.1, 0.1}},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	test.That(t, validConfig().Validate("scene"), test.ShouldBeNil)

	for _, tc := range []struct {
		name     string
		mutate   func(*Config)
		expected string
	}{
		{"no paths", func(c *Config) { c.Paths = nil }, `"paths" is required`},
		{"empty path", func(c *Config) { c.Paths[0].Waypoints = nil }, `"waypoints" is required`},
		{"short waypoint", func(c *Config) { c.Paths[0].Waypoints[1] = []float64{1, 0, 1} }, "need at least 7"},
		{"ragged waypoints", func(c *Config) { c.Paths[0].Waypoints[1] = append(c.Paths[0].Waypoints[1], 0.5) }, "waypoint 0 has 7"},
		{"unnamed obstacle", func(c *Config) { c.Obstacles[0].Name = "" }, `"name" is required`},
		{"two point obstacle", func(c *Config) { c.Obstacles[0].Points = c.Obstacles[0].Points[:2] }, "at least 3 points"},
		{"collinear obstacle", func(c *Config) {
			c.Obstacles[0].Points = [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
		}, "degenerate"},
		{"duplicate obstacle", func(c *Config) { c.Obstacles = append(c.Obstacles, c.Obstacles[0]) }, `duplicate obstacle name "floor"`},
		{"flat box", func(c *Config) { c.ReachableVolumes.Right.HalfSize[2] = 0 }, "reachable_volumes.right"},
		{"bad box orientation", func(c *Config) { c.ReachableVolumes.Left.Orientation = []float64{0, 0, 1} }, "4 components"},
		{"short initial config", func(c *Config) { c.InitialConfig = []float64{0, 0} }, "initial_config"},
		{"bad planner block", func(c *Config) { c.Planner = map[string]interface{}{"policy": "hop"} }, "scene.planner"},
		{"planner affordance without contacts", func(c *Config) {
			c.Planner = map[string]interface{}{"affordance": "Lean"}
		}, `differs from contact_affordance "Support"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate("scene")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.expected)
		})
	}

	t.Run("every problem is reported", func(t *testing.T) {
		cfg := validConfig()
		cfg.Obstacles[0].Name = ""
		cfg.ReachableVolumes.Left.HalfSize[0] = -1
		cfg.InitialConfig = []float64{0}
		test.That(t, multierr.Errors(cfg.Validate("scene")), test.ShouldHaveLength, 3)
	})
}

func TestPlannerAffordanceFollowsContacts(t *testing.T) {
	cfg := validConfig()
	opts, err := cfg.PlannerOptions()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.Affordance, test.ShouldEqual, surfaceplan.DefaultAffordance)

	cfg.ContactAffordance = "Lean"
	test.That(t, cfg.Validate("scene"), test.ShouldBeNil)
	opts, err = cfg.PlannerOptions()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.Affordance, test.ShouldEqual, "Lean")

	cfg.Planner = map[string]interface{}{"affordance": "Lean"}
	test.That(t, cfg.Validate("scene"), test.ShouldBeNil)
}
