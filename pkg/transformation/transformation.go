// Package transformation splits the validated dataset into train and test
// files. It refuses to run unless the validation status file says True.
package transformation

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/askiada/go-mlpipeline/internal/dataset"
	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
	"github.com/askiada/go-mlpipeline/pkg/validation"
)

const (
	TrainFileName = "train.csv"
	TestFileName  = "test.csv"
)

// Split describes the files written by TrainTestSplit.
type Split struct {
	TrainPath string
	TestPath  string
	TrainRows int
	TestRows  int
}

// DataTransformation turns the validated dataset into train and test splits.
type DataTransformation struct {
	cfg    config.DataTransformationConfig
	logger *slog.Logger
}

// New creates a DataTransformation logging to logger.
func New(cfg config.DataTransformationConfig, logger *slog.Logger) *DataTransformation {
	return &DataTransformation{cfg: cfg, logger: logger}
}

// TrainTestSplit shuffles the rows with the configured seed and writes
// ceil(n * test_size) of them to test.csv, the rest to train.csv.
func (d *DataTransformation) TrainTestSplit(ctx context.Context) (Split, error) {
	err := validation.RequireValid(d.cfg.StatusFile)
	if err != nil {
		d.logger.Error("refusing to split data", "error", err)

		return Split{}, err
	}

	table, err := dataset.Read(ctx, d.cfg.DataPath)
	if err != nil {
		d.logger.Error("error during data transformation", "error", err)

		return Split{}, err
	}

	trainIdx, testIdx, err := splitIndices(len(table.Rows), d.cfg.TestSize, d.cfg.RandomState)
	if err != nil {
		d.logger.Error("error during data transformation", "error", err)

		return Split{}, err
	}

	split := Split{
		TrainPath: filepath.Join(d.cfg.RootDir, TrainFileName),
		TestPath:  filepath.Join(d.cfg.RootDir, TestFileName),
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}

	for path, indices := range map[string][]int{split.TrainPath: trainIdx, split.TestPath: testIdx} {
		err = dataset.Write(path, table.Subset(indices))
		if err != nil {
			d.logger.Error("error during data transformation", "error", err)

			return Split{}, err
		}
	}

	d.logger.Info("split data into training and test sets",
		"train_rows", split.TrainRows, "test_rows", split.TestRows, "columns", len(table.Header))

	return split, nil
}

func splitIndices(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, model.Wrapf(model.ErrConfig, nil, "test_size must be in (0, 1), got %v", testSize)
	}

	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		return nil, nil, model.Wrapf(model.ErrConfig, nil,
			"test_size %v with %d rows leaves the training set empty", testSize, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split, not security sensitive

	return perm[nTest:], perm[:nTest], nil
}
