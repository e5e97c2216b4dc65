package cli

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/legplan/contactplan/logging"
	"github.com/legplan/contactplan/scene"
	"github.com/legplan/contactplan/surfaceplan"
	"github.com/legplan/contactplan/visualize"
)

// pathSequence is the sequence planned on one path.
type pathSequence struct {
	PathID   int                   `json:"path_id"`
	Sequence *surfaceplan.Sequence `json:"sequence"`
}

func sceneArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.Errorf("expected exactly one scene file, got %d arguments", c.NArg())
	}
	return c.Args().First(), nil
}

func loadScene(file string, logger logging.Logger) (*scene.Scene, *scene.Config, error) {
	cfg, err := scene.Read(file)
	if err != nil {
		return nil, nil, err
	}
	sc, err := scene.New(cfg, logger.Sublogger("scene"))
	if err != nil {
		return nil, nil, err
	}
	return sc, cfg, nil
}

// checkAffordance fails when no obstacle of the scene offers `category`.
func checkAffordance(sc *scene.Scene, category string) error {
	offered := sc.Affordances()
	for _, a := range offered {
		if a == category {
			return nil
		}
	}
	return errors.Errorf("no obstacle offers affordance %q, the scene offers %s", category, strings.Join(offered, ", "))
}

// affordanceFlag returns the --affordance flag, defaulting to the contact affordance of the scene.
func affordanceFlag(c *cli.Context, sc *scene.Scene) (string, error) {
	affordance := sc.ContactAffordance()
	if c.IsSet(planFlagAffordance) {
		affordance = c.String(planFlagAffordance)
	}
	return affordance, checkAffordance(sc, affordance)
}

// optionsFromFlags overrides the options of the scene file with the flags that were set.
func optionsFromFlags(c *cli.Context, opts surfaceplan.Options) (surfaceplan.Options, error) {
	if c.IsSet(planFlagStep) {
		opts.Step = c.Float64(planFlagStep)
	}
	if c.IsSet(planFlagWindow) {
		opts.WindowSize = c.Float64(planFlagWindow)
	}
	if c.IsSet(planFlagMaxArea) {
		opts.MaxSurfaceArea = c.Float64(planFlagMaxArea)
	}
	if c.IsSet(planFlagIntersection) {
		opts.UseIntersection = c.Bool(planFlagIntersection)
	}
	if c.IsSet(planFlagPolicy) {
		policy, err := surfaceplan.PolicyFromString(c.String(planFlagPolicy))
		if err != nil {
			return opts, err
		}
		opts.Policy = policy
	}
	if c.IsSet(planFlagPathID) {
		pathID := c.Int(planFlagPathID)
		opts.PathID = &pathID
	}
	if c.IsSet(planFlagParallel) {
		opts.Parallelism = c.Int(planFlagParallel)
	}
	if c.IsSet(planFlagAffordance) {
		opts.Affordance = c.String(planFlagAffordance)
	}
	return opts, opts.Validate("flags")
}

// planPaths plans either the selected path or, with allPaths, every path of the scene concurrently.
// Results are in path order.
func planPaths(
	ctx context.Context,
	planner *surfaceplan.Planner,
	sc *scene.Scene,
	opts surfaceplan.Options,
	allPaths bool,
) ([]pathSequence, error) {
	if !allPaths {
		pathID := sc.NumberPaths() - 1
		if opts.PathID != nil {
			pathID = *opts.PathID
		}
		seq, err := planner.Plan(ctx, opts)
		if err != nil {
			return nil, err
		}
		return []pathSequence{{PathID: pathID, Sequence: seq}}, nil
	}

	results := make([]pathSequence, sc.NumberPaths())
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		pathOpts := opts
		pathID := i
		pathOpts.PathID = &pathID
		g.Go(func() error {
			seq, err := planner.Plan(gctx, pathOpts)
			if err != nil {
				return errors.Wrapf(err, "path %d", pathID)
			}
			results[pathID] = pathSequence{PathID: pathID, Sequence: seq}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeJSON(file string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(file, data, 0o644), "writing %q", file)
}

// runPlan plans the scene file once and writes the report and the requested outputs.
func runPlan(c *cli.Context, file string) error {
	logger := loggerFrom(c)
	sc, cfg, err := loadScene(file, logger)
	if err != nil {
		return err
	}
	opts, err := cfg.PlannerOptions()
	if err != nil {
		return err
	}
	if opts, err = optionsFromFlags(c, opts); err != nil {
		return err
	}
	if err := checkAffordance(sc, opts.Affordance); err != nil {
		return err
	}
	// Every collision must name a surface of the catalog.
	sc = sc.WithContactAffordance(opts.Affordance)

	var plannerOpts []surfaceplan.PlannerOption
	var recorder *visualize.Recorder
	if c.Path(planFlagPlot) != "" {
		recorder = visualize.NewRecorder()
		plannerOpts = append(plannerOpts, surfaceplan.WithObserver(recorder))
	}
	planner := surfaceplan.NewPlanner(sc, sc, sc, logger.Sublogger("planner"), plannerOpts...)

	runID := uuid.NewString()
	ctx := c.Context
	if c.Bool(planFlagDebugRun) {
		ctx = logging.EnableDebugMode(ctx, runID)
	}
	logger.CDebugw(ctx, "planning scene", "run", runID, "scene", file, "all_paths", c.Bool(planFlagAllPaths))
	results, err := planPaths(ctx, planner, sc, opts, c.Bool(planFlagAllPaths))
	if err != nil {
		return errors.Wrapf(err, "run %s", runID)
	}
	if err := writeReport(c.App.Writer, results); err != nil {
		return err
	}

	if out := c.Path(planFlagOutput); out != "" {
		var v interface{} = results
		if len(results) == 1 {
			v = results[0].Sequence
		}
		if err := writeJSON(out, v); err != nil {
			return err
		}
	}
	if recorder != nil {
		catalog, err := planner.Catalog(opts.Affordance)
		if err != nil {
			return err
		}
		if err := recorder.AddCatalog(catalog); err != nil {
			return err
		}
		if err := recorder.Save(c.Path(planFlagPlot), file); err != nil {
			return err
		}
		counts := recorder.Counts()
		logger.Infow("saved candidate plot", "file", c.Path(planFlagPlot),
			"kept", counts[surfaceplan.KeptIntersection],
			"substituted", counts[surfaceplan.SubstitutedSurface],
			"duplicates", counts[surfaceplan.Duplicate])
	}
	return nil
}

// PlanAction segments a path of the scene into phases and prints their candidate surfaces.
func PlanAction(c *cli.Context) error {
	file, err := sceneArg(c)
	if err != nil {
		return err
	}
	return runPlan(c, file)
}

// AllSurfacesAction offers every catalog surface in each of --phases phases.
func AllSurfacesAction(c *cli.Context) error {
	file, err := sceneArg(c)
	if err != nil {
		return err
	}
	logger := loggerFrom(c)
	sc, _, err := loadScene(file, logger)
	if err != nil {
		return err
	}
	affordance, err := affordanceFlag(c, sc)
	if err != nil {
		return err
	}

	planner := surfaceplan.NewPlanner(sc, sc, sc, logger.Sublogger("planner"))
	seq, err := planner.AllSurfaces(c.Context, c.Int(allFlagPhases), affordance)
	if err != nil {
		return err
	}
	if err := writeReport(c.App.Writer, []pathSequence{{PathID: -1, Sequence: seq}}); err != nil {
		return err
	}
	if out := c.Path(planFlagOutput); out != "" {
		return writeJSON(out, seq)
	}
	return nil
}

// CatalogAction prints the surfaces of an affordance category.
func CatalogAction(c *cli.Context) error {
	file, err := sceneArg(c)
	if err != nil {
		return err
	}
	sc, _, err := loadScene(file, loggerFrom(c))
	if err != nil {
		return err
	}
	affordance, err := affordanceFlag(c, sc)
	if err != nil {
		return err
	}
	catalog, err := surfaceplan.NewCatalog(sc, nil, affordance)
	if err != nil {
		return err
	}
	return writeCatalog(c.App.Writer, catalog)
}
