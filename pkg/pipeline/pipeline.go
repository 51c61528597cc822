package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

// StageFunc runs a stage. logger is dedicated to the stage.
type StageFunc func(ctx context.Context, logger *slog.Logger) error

// StageLogs opens the log destination of a stage.
type StageLogs interface {
	Open(fileName string) (*slog.Logger, io.Closer, error)
}

type stage struct {
	info *model.StageInfo
	fn   StageFunc
}

// Pipeline is a sequence of stages.
type Pipeline struct {
	logs      StageLogs
	opts      []model.PipelineOption
	stages    []*stage
	runID     string
	startTime time.Time
}

// New creates a new pipeline. When logs is nil stage logs are discarded.
func New(logs StageLogs, opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		logs:      logs,
		opts:      opts,
		runID:     uuid.NewString(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// RunID identifies this run in every stage log.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Stages returns the registered stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for _, st := range p.stages {
		names = append(names, st.info.Name)
	}

	return names
}

// AddStage appends a stage. logFile is passed to StageLogs when the stage starts.
func AddStage(p *Pipeline, name, logFile string, fn StageFunc) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if fn == nil {
		return ErrStageFnMustBeSet
	}

	parent := model.StartStage

	for _, st := range p.stages {
		if st.info.Name == name {
			return errors.Wrap(ErrDuplicateStage, name)
		}

		parent = st.info
	}

	info := &model.StageInfo{Name: name, LogFile: logFile, Index: len(p.stages)}

	for _, opt := range p.opts {
		err := opt.PrepareStage(parent, info)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare stage function")
		}
	}

	p.stages = append(p.stages, &stage{info: info, fn: fn})

	return nil
}

// Run executes the stages in order and stops on the first error. The options
// are finished in both cases, so a failed run is still measured and drawn.
func (p *Pipeline) Run(ctx context.Context) error {
	var runErr error

	for _, st := range p.stages {
		runErr = p.runStage(ctx, st)
		if runErr != nil {
			break
		}
	}

	err := p.finishRun()
	if runErr != nil {
		return runErr
	}

	return err
}

func (p *Pipeline) runStage(ctx context.Context, st *stage) error {
	name := st.info.Name

	err := ctx.Err()
	if err != nil {
		return errors.Wrap(err, name)
	}

	logger, closer, err := p.openLogs(st.info)
	if err != nil {
		return errors.Wrapf(err, "%s: unable to open stage logs", name)
	}
	defer closer.Close()

	logger = logger.With("run_id", p.runID)
	logger.Info(fmt.Sprintf(">>>>> %s started <<<<<", name))

	start := time.Now()
	runErr := st.fn(ctx, logger)
	elapsed := time.Since(start)

	for _, opt := range p.opts {
		err := opt.AfterStage(st.info, elapsed, runErr)
		if err != nil {
			return errors.Wrap(err, "unable to run after stage function")
		}
	}

	if runErr != nil {
		logger.Error(fmt.Sprintf("Error in %s", name), "error", runErr)

		return errors.Wrap(runErr, name)
	}

	logger.Info(fmt.Sprintf(">>>>> %s completed <<<<<", name), "elapsed", elapsed.String())

	return nil
}

func (p *Pipeline) openLogs(info *model.StageInfo) (*slog.Logger, io.Closer, error) {
	if p.logs == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}

	return p.logs.Open(info.LogFile)
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
