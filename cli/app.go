// Package cli contains the contactplan command line tool.
package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/legplan/contactplan/logging"
)

const (
	debugFlag      = "debug"
	logFileFlag    = "log-file"
	logPatternFlag = "log-pattern"

	planFlagStep         = "step"
	planFlagWindow       = "window"
	planFlagMaxArea      = "max-area"
	planFlagIntersection = "intersection"
	planFlagPolicy       = "policy"
	planFlagPathID       = "path-id"
	planFlagAllPaths     = "all-paths"
	planFlagParallel     = "parallel"
	planFlagAffordance   = "affordance"
	planFlagOutput       = "output"
	planFlagPlot         = "plot"
	planFlagDebugRun     = "debug-run"

	allFlagPhases = "phases"

	metadataGlobals = "globals"
)

var planFlags = []cli.Flag{
	&cli.Float64Flag{
		Name:  planFlagStep,
		Usage: "distance along the path covered by one phase",
	},
	&cli.Float64Flag{
		Name:  planFlagWindow,
		Usage: "distance between the samples of a windowed phase",
	},
	&cli.Float64Flag{
		Name:  planFlagMaxArea,
		Usage: "area an intersection must exceed to be kept instead of the whole surface",
	},
	&cli.BoolFlag{
		Name:  planFlagIntersection,
		Usage: "keep large enough intersections instead of whole surfaces",
	},
	&cli.StringFlag{
		Name:  planFlagPolicy,
		Usage: "segmentation policy, per-sample or windowed",
	},
	&cli.IntFlag{
		Name:  planFlagPathID,
		Usage: "path to plan on, the last one when unset",
	},
	&cli.BoolFlag{
		Name:  planFlagAllPaths,
		Usage: "plan every path of the scene",
	},
	&cli.IntFlag{
		Name:  planFlagParallel,
		Usage: "number of concurrent queries, 1 queries in path order",
	},
	&cli.StringFlag{
		Name:  planFlagAffordance,
		Usage: "affordance category of the candidate surfaces",
	},
	&cli.PathFlag{
		Name:  planFlagOutput,
		Usage: "write the planned sequence as JSON to `FILE`",
	},
	&cli.PathFlag{
		Name:  planFlagPlot,
		Usage: "render the candidate surfaces to `FILE` (png, svg or pdf)",
	},
	&cli.BoolFlag{
		Name:  planFlagDebugRun,
		Usage: "log the debug lines of the planner for this run, whatever the log level",
	},
}

var app = &cli.App{
	Name:            "contactplan",
	Usage:           "plan the contact surfaces of a legged robot along a guide path",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.PathFlag{
			Name:  logFileFlag,
			Usage: "also write logs to the size-rotated `FILE`",
		},
		&cli.StringSliceFlag{
			Name:  logPatternFlag,
			Usage: "set the level of matching loggers, e.g. contactplan.planner=debug",
		},
	},
	Before: setupGlobals,
	After:  closeGlobals,
	Commands: []*cli.Command{
		{
			Name:      "plan",
			Usage:     "split a path of the scene into phases and select their contact surfaces",
			ArgsUsage: "<scene.json>",
			Flags:     planFlags,
			Action:    PlanAction,
		},
		{
			Name:      "all",
			Usage:     "offer every catalog surface in each phase",
			ArgsUsage: "<scene.json>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     allFlagPhases,
					Usage:    "number of phases",
					Required: true,
				},
				&cli.StringFlag{
					Name:  planFlagAffordance,
					Usage: "affordance category of the candidate surfaces",
				},
				&cli.PathFlag{
					Name:  planFlagOutput,
					Usage: "write the sequence as JSON to `FILE`",
				},
			},
			Action: AllSurfacesAction,
		},
		{
			Name:      "catalog",
			Usage:     "print the surfaces of an affordance category",
			ArgsUsage: "<scene.json>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  planFlagAffordance,
					Usage: "affordance category to list",
				},
			},
			Action: CatalogAction,
		},
		{
			Name:      "watch",
			Usage:     "plan again every time the scene file changes",
			ArgsUsage: "<scene.json>",
			Flags:     planFlags,
			Action:    WatchAction,
		},
		{
			Name:   "schema",
			Usage:  "print the JSON schema of scene files",
			Action: SchemaAction,
		},
	},
}

// NewApp returns the contactplan app writing its reports to `out` and its logs to `errOut`.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

type globals struct {
	logger logging.Logger
	closer io.Closer
}

func setupGlobals(c *cli.Context) error {
	delete(c.App.Metadata, metadataGlobals)
	logger := logging.NewBlankLogger("contactplan")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	// The level is process wide, so it is set on every run.
	if c.Bool(debugFlag) {
		logging.GlobalLogLevel.SetLevel(zap.DebugLevel)
	} else {
		logging.GlobalLogLevel.SetLevel(zap.InfoLevel)
		logger.SetLevel(logging.INFO)
	}
	logging.ReplaceGlobal(logger)

	g := &globals{logger: logger}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[metadataGlobals] = g
	if file := c.Path(logFileFlag); file != "" {
		appender, closer := logging.NewFileAppender(file)
		logger.AddAppender(appender)
		g.closer = closer
	}

	patterns := make([]logging.LoggerPatternConfig, 0, len(c.StringSlice(logPatternFlag)))
	for _, raw := range c.StringSlice(logPatternFlag) {
		p, err := logging.ParseLoggerPatternConfig(raw)
		if err != nil {
			return errors.Wrapf(err, "parsing --%s", logPatternFlag)
		}
		patterns = append(patterns, p)
	}
	if err := logging.UpdateLoggerConfig(patterns); err != nil {
		return err
	}
	// Registered after the patterns are in place so that they apply to the root logger too.
	logging.RegisterLogger("contactplan", logger)
	return nil
}

func closeGlobals(c *cli.Context) error {
	g, ok := c.App.Metadata[metadataGlobals].(*globals)
	if !ok {
		return nil
	}
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

func loggerFrom(c *cli.Context) logging.Logger {
	if g, ok := c.App.Metadata[metadataGlobals].(*globals); ok {
		return g.logger
	}
	return logging.Global()
}
