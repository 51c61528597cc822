package training

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/internal/dataset"
	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

// Result is what a training run produced.
type Result struct {
	Model   *Model
	Metrics Metrics
}

// ModelTrainer fits and scores the model described by its config.
type ModelTrainer struct {
	cfg    config.ModelTrainerConfig
	logger *slog.Logger
}

// New creates a ModelTrainer logging to logger.
func New(cfg config.ModelTrainerConfig, logger *slog.Logger) *ModelTrainer {
	return &ModelTrainer{cfg: cfg, logger: logger}
}

// Train fits the model on the training split, scores it on the test split
// and writes both artifacts.
func (t *ModelTrainer) Train(ctx context.Context) (Result, error) {
	res, err := t.train(ctx)
	if err != nil {
		t.logger.Error("error during model training", "error", err)

		return Result{}, err
	}

	return res, nil
}

func (t *ModelTrainer) train(ctx context.Context) (Result, error) {
	train, err := t.load(ctx, t.cfg.TrainDataPath)
	if err != nil {
		return Result{}, err
	}

	test, err := t.load(ctx, t.cfg.TestDataPath)
	if err != nil {
		return Result{}, err
	}

	if !slices.Equal(train.Header, test.Header) {
		return Result{}, model.Wrapf(model.ErrSchemaMismatch, nil,
			"train columns %v differ from test columns %v", train.Header, test.Header)
	}

	features, xTrain, yTrain, err := train.Numeric(t.cfg.TargetColumn)
	if err != nil {
		return Result{}, errors.Wrap(err, t.cfg.TrainDataPath)
	}

	_, xTest, yTest, err := test.Numeric(t.cfg.TargetColumn)
	if err != nil {
		return Result{}, errors.Wrap(err, t.cfg.TestDataPath)
	}

	net := &ElasticNet{
		Alpha:   t.cfg.Alpha,
		L1Ratio: t.cfg.L1Ratio,
		MaxIter: t.cfg.MaxIter,
		Tol:     t.cfg.Tol,
	}

	err = net.Fit(ctx, xTrain, yTrain)
	if err != nil {
		return Result{}, err
	}

	if !net.Converged {
		t.logger.Warn("objective did not converge, consider increasing max_iter",
			"max_iter", t.cfg.MaxIter, "tol", t.cfg.Tol)
	}

	fitted := &Model{
		Target:    t.cfg.TargetColumn,
		Features:  features,
		Coef:      net.Coef,
		Intercept: net.Intercept,
		Alpha:     net.Alpha,
		L1Ratio:   net.L1Ratio,
		NIter:     net.NIter,
		Converged: net.Converged,
	}
	metrics := Evaluate(yTest, fitted.Predict(xTest))

	t.logger.Info("model trained",
		"features", len(features), "train_rows", len(yTrain), "test_rows", len(yTest), "n_iter", net.NIter)
	t.logger.Info("model evaluated", "rmse", metrics.RMSE, "mae", metrics.MAE, "r2", metrics.R2)

	err = writeJSON(t.cfg.ModelPath, fitted)
	if err != nil {
		return Result{}, err
	}

	err = writeJSON(t.cfg.MetricsPath, metrics)
	if err != nil {
		return Result{}, err
	}

	t.logger.Info("artifacts saved", "model", t.cfg.ModelPath, "metrics", t.cfg.MetricsPath)

	return Result{Model: fitted, Metrics: metrics}, nil
}

func (t *ModelTrainer) load(ctx context.Context, path string) (*dataset.Table, error) {
	table, err := dataset.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	if len(table.Rows) == 0 {
		return nil, model.Wrapf(model.ErrIO, nil, "%s has no rows", path)
	}

	return table, nil
}
