// Command mlpipeline runs the training pipeline: ingestion, validation,
// transformation and model training.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/internal/env"
	"github.com/askiada/go-mlpipeline/internal/logging"
	"github.com/askiada/go-mlpipeline/internal/objectstore"
	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/ingestion"
	"github.com/askiada/go-mlpipeline/pkg/pipeline"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/drawer"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/measure"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
	"github.com/askiada/go-mlpipeline/pkg/stage"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("invalid usage")

type options struct {
	paths   config.Paths
	logDir  string
	stages  []string
	graph   string
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	logger := slog.New(slog.NewTextHandler(stdout, nil))

	if err != nil {
		logger.Error("invalid arguments", "error", err)

		return exitUsage
	}

	selected, err := stage.Select(stage.All(stage.Deps{Paths: opts.paths, Fetcher: newFetcher()}), opts.stages)
	if err != nil {
		logger.Error("invalid arguments", "error", err)

		return exitUsage
	}

	logs, err := logging.NewFiles(opts.logDir, stdout)
	if err != nil {
		logger.Error("unable to prepare logs", "error", err)

		return exitFailure
	}

	if opts.verbose {
		logs.Level = slog.LevelDebug
	}

	msr := measure.NewDefaultMeasure()
	pipeOpts := []model.PipelineOption{measure.PipelineMeasure(msr)}

	if opts.graph != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(opts.graph), msr))
	}

	pipe, err := pipeline.New(logs, pipeOpts...)
	if err != nil {
		logger.Error("unable to create pipeline", "error", err)

		return exitFailure
	}

	logger = logger.With("run_id", pipe.RunID())

	err = stage.Register(pipe, selected)
	if err != nil {
		logger.Error("unable to register stages", "error", err)

		return exitFailure
	}

	err = pipe.Run(ctx)

	for _, name := range pipe.Stages() {
		if mt := msr.GetMetric(name); mt != nil && (mt.Duration() > 0 || mt.Err() != nil) {
			logger.Info("stage summary", "stage", name, "elapsed", measure.Round(mt.Duration()).String(), "failed", mt.Err() != nil)
		}
	}

	if err != nil {
		logger.Error("pipeline failed", "error", err)

		return exitFailure
	}

	logger.Info("pipeline completed", "stages", len(selected))

	return exitOK
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	defaults := config.DefaultPaths()
	opts := options{}

	fs := flag.NewFlagSet("mlpipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.paths.Config, "config", env.String("MLPIPELINE_CONFIG", defaults.Config), "path to config.yaml")
	fs.StringVar(&opts.paths.Params, "params", env.String("MLPIPELINE_PARAMS", defaults.Params), "path to params.yaml")
	fs.StringVar(&opts.paths.Schema, "schema", env.String("MLPIPELINE_SCHEMA", defaults.Schema), "path to schema.yaml")
	fs.StringVar(&opts.logDir, "logs", env.String("MLPIPELINE_LOG_DIR", "logs"), "directory of the stage log files")
	fs.StringVar(&opts.graph, "graph", "", "write the stage graph as DOT to this file")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")

	stages := fs.String("stages", "", "comma separated stages to run: "+strings.Join(stage.Keys(stage.All(stage.Deps{})), ","))

	err := fs.Parse(args)
	if err != nil {
		return options{}, err
	}

	if fs.NArg() > 0 {
		return options{}, errors.Wrapf(errUsage, "unexpected arguments %v", fs.Args())
	}

	if *stages != "" {
		opts.stages = strings.Split(*stages, ",")
	}

	return opts, nil
}

// newFetcher serves http and https sources, and s3 sources through the
// object store described by the MLPIPELINE_S3_* variables. The object store
// is only configured when an s3 source is fetched.
func newFetcher() ingestion.Fetcher {
	httpFetcher := ingestion.NewHTTPFetcher(&http.Client{})

	return ingestion.SchemeFetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
		"s3":    ingestion.NewLazyObjectStoreFetcher(openObjectStore),
	}
}

func openObjectStore() (objectstore.Store, error) {
	cfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	store, err := objectstore.NewMinioStore(cfg)
	if err != nil {
		return nil, err
	}

	return store, nil
}
