package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/lidarforest/processing/internal/archive"
	"github.com/lidarforest/processing/internal/broker/sqlbroker"
	"github.com/lidarforest/processing/internal/config"
	"github.com/lidarforest/processing/internal/jobs"
	"github.com/lidarforest/processing/internal/quicklook"
	"github.com/lidarforest/processing/internal/raster"
	"github.com/lidarforest/processing/internal/worker"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree; factored out of main so tests can
// drive it directly without exec'ing a binary.
func newApp() *cli.App {
	return &cli.App{
		Name:  "lidarforest",
		Usage: "validate, classify, normalize, and detect trees in LAS/LAZ point clouds",
		Commands: []*cli.Command{
			oneShotCommand("validate", jobs.TypeValidate, []cli.Flag{
				&cli.StringFlag{Name: "file", Required: true, Usage: "path to a .las/.laz file"},
				&cli.BoolFlag{Name: "require-crs", Usage: "fail validation if the file carries no CRS"},
				&cli.BoolFlag{Name: "check-point-density", Usage: "also flag unusually sparse point density"},
			}, func(c *cli.Context) (interface{}, error) {
				return jobs.ValidateParams{
					FilePath:          c.String("file"),
					RequireCRS:        c.Bool("require-crs"),
					CheckPointDensity: c.Bool("check-point-density"),
				}, nil
			}),
			oneShotCommand("extract-metadata", jobs.TypeExtractMetadata, []cli.Flag{
				&cli.StringFlag{Name: "file", Required: true, Usage: "path to a .las/.laz file"},
			}, func(c *cli.Context) (interface{}, error) {
				return jobs.ExtractMetadataParams{
					FilePath:                    c.String("file"),
					IncludeClassificationCounts: true,
					IncludeReturnStatistics:     true,
					CalculateDensity:            true,
				}, nil
			}),
			oneShotCommand("classify-ground", jobs.TypeClassifyGround, []cli.Flag{
				&cli.StringFlag{Name: "file", Required: true, Usage: "path to a .las/.laz file"},
				&cli.StringFlag{Name: "output", Usage: "path to write the classified LAS file"},
			}, func(c *cli.Context) (interface{}, error) {
				return jobs.ClassifyGroundParams{FilePath: c.String("file"), OutputPath: c.String("output")}, nil
			}),
			oneShotCommand("normalize-height", jobs.TypeNormalizeHeight, []cli.Flag{
				&cli.StringFlag{Name: "file", Required: true, Usage: "path to a classified .las/.laz file"},
				&cli.StringFlag{Name: "output", Usage: "base path for the written DEM/DSM/CHM rasters"},
				&cli.StringFlag{Name: "method", Value: "idw", Usage: "interpolation method: idw or tin"},
			}, func(c *cli.Context) (interface{}, error) {
				return jobs.NormalizeHeightParams{
					FilePath:   c.String("file"),
					OutputPath: c.String("output"),
					Params:     jobs.NormalizeParams{Method: c.String("method")},
				}, nil
			}),
			oneShotCommand("detect-trees", jobs.TypeDetectTrees, []cli.Flag{
				&cli.StringFlag{Name: "chm", Required: true, Usage: "path to a persisted CHM raster (JSON)"},
				&cli.StringFlag{Name: "output", Usage: "path to write the detected trees as GeoJSON"},
			}, func(c *cli.Context) (interface{}, error) {
				return jobs.DetectTreesParams{FilePath: c.String("chm"), OutputPath: c.String("output")}, nil
			}),
			oneShotCommand("full-pipeline", jobs.TypeFullPipeline, []cli.Flag{
				&cli.StringFlag{Name: "file", Required: true, Usage: "path to a .las/.laz file"},
				&cli.StringFlag{Name: "output-dir", Usage: "directory to write every stage's output into"},
			}, func(c *cli.Context) (interface{}, error) {
				return jobs.FullPipelineParams{FilePath: c.String("file"), OutputDir: c.String("output-dir")}, nil
			}),
			workerCommand(),
			quicklookCommand(),
		},
	}
}

// oneShotCommand builds a CLI command that runs exactly one job type
// synchronously against a throwaway Worker (no broker involved) and
// prints its JobResult as JSON to stdout.
func oneShotCommand(name string, jobType jobs.Type, flags []cli.Flag, buildParams func(*cli.Context) (interface{}, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Flags: flags,
		Action: func(c *cli.Context) error {
			settings, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			params, err := buildParams(c)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(params)
			if err != nil {
				return fmt.Errorf("marshaling params: %w", err)
			}

			job := jobs.Job{ID: jobs.NewID(), Type: jobType, Params: raw}
			w := worker.New(nil, settings, nil)
			result := w.Execute(c.Context, job)

			return printResult(result)
		},
	}
}

// workerCommand runs the job dispatcher loop against a broker and, if
// configured, a Postgres archive, until it receives SIGINT/SIGTERM.
func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "run the job dispatcher loop against the broker queue",
		Action: func(c *cli.Context) error {
			settings, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			b, err := sqlbroker.Open(settings.BrokerDSN)
			if err != nil {
				return fmt.Errorf("opening broker: %w", err)
			}
			defer b.Close()

			var arc *archive.Archive
			if settings.ArchiveEnabled {
				arc, err = archive.Open(c.Context, settings.ArchiveConfig())
				if err != nil {
					return fmt.Errorf("opening archive: %w", err)
				}
				defer arc.Close()
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Printf("worker: listening on queue %q (broker %s)", settings.QueueName, settings.BrokerDSN)
			w := worker.New(b, settings, arc)
			return w.Run(ctx)
		},
	}
}

// quicklookCommand renders a persisted raster (DEM/DSM/CHM) to a PNG
// heatmap for operator debugging.
func quicklookCommand() *cli.Command {
	return &cli.Command{
		Name:  "quicklook",
		Usage: "render a persisted raster to a PNG heatmap",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "raster", Required: true, Usage: "path to a persisted raster (JSON)"},
			&cli.StringFlag{Name: "output", Required: true, Usage: "path to write the PNG"},
			&cli.StringFlag{Name: "title", Value: "raster", Usage: "plot title"},
		},
		Action: func(c *cli.Context) error {
			r, err := raster.ReadJSON(c.String("raster"))
			if err != nil {
				return err
			}
			return quicklook.RenderPNG(r, c.String("title"), c.String("output"))
		},
	}
}

func printResult(result jobs.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Println(string(data))
	if result.Status == jobs.StatusFailed {
		return cli.Exit("", 1)
	}
	return nil
}
