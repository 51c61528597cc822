// Package stage wires the configuration manager to each pipeline component.
// Every stage builds its own configuration when it starts, so a stage only
// fails on the sections it actually needs.
package stage

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/ingestion"
	"github.com/askiada/go-mlpipeline/pkg/pipeline"
	"github.com/askiada/go-mlpipeline/pkg/transformation"
	"github.com/askiada/go-mlpipeline/pkg/training"
	"github.com/askiada/go-mlpipeline/pkg/validation"
)

// ErrUnknownStage is returned by Select for a key no stage answers to.
var ErrUnknownStage = errors.New("unknown stage")

// Stage is a named step of the training pipeline.
type Stage struct {
	// Key selects the stage on the command line.
	Key     string
	Name    string
	LogFile string
	Run     pipeline.StageFunc
}

// Deps are shared by every stage.
type Deps struct {
	Paths config.Paths
	// Fetcher downloads the source archive. Plain HTTP when nil.
	Fetcher ingestion.Fetcher
}

func (d Deps) manager(logger *slog.Logger) (*config.Manager, error) {
	return config.NewManager(d.Paths, logger)
}

// DataIngestion downloads and extracts the dataset.
func DataIngestion(deps Deps) Stage {
	return Stage{
		Key:     "ingestion",
		Name:    "Data Ingestion Stage",
		LogFile: "stage1_ingestion.log",
		Run: func(ctx context.Context, logger *slog.Logger) error {
			manager, err := deps.manager(logger)
			if err != nil {
				return err
			}

			cfg, err := manager.DataIngestionConfig()
			if err != nil {
				return err
			}

			fetcher := deps.Fetcher
			if fetcher == nil {
				fetcher = ingestion.NewHTTPFetcher(http.DefaultClient)
			}

			ing := ingestion.New(cfg, fetcher, logger)

			err = ing.DownloadFile(ctx)
			if err != nil {
				return err
			}

			return ing.ExtractZipFile(ctx)
		},
	}
}

// DataValidation records the outcome in the status file. A schema mismatch
// does not fail this stage; the transformation stage refuses to run on it.
func DataValidation(deps Deps) Stage {
	return Stage{
		Key:     "validation",
		Name:    "Data Validation Stage",
		LogFile: "stage2_data_validation.log",
		Run: func(ctx context.Context, logger *slog.Logger) error {
			manager, err := deps.manager(logger)
			if err != nil {
				return err
			}

			cfg, err := manager.DataValidationConfig()
			if err != nil {
				return err
			}

			_, err = validation.New(cfg, logger).ValidateData(ctx)

			return err
		},
	}
}

// DataTransformation writes the train and test splits.
func DataTransformation(deps Deps) Stage {
	return Stage{
		Key:     "transformation",
		Name:    "Data Transformation Stage",
		LogFile: "stage3_data_transformation.log",
		Run: func(ctx context.Context, logger *slog.Logger) error {
			manager, err := deps.manager(logger)
			if err != nil {
				return err
			}

			cfg, err := manager.DataTransformationConfig()
			if err != nil {
				return err
			}

			_, err = transformation.New(cfg, logger).TrainTestSplit(ctx)

			return err
		},
	}
}

// ModelTrainer fits the model and writes it with its metrics.
func ModelTrainer(deps Deps) Stage {
	return Stage{
		Key:     "training",
		Name:    "Model Trainer stage",
		LogFile: "stage4_model_training.log",
		Run: func(ctx context.Context, logger *slog.Logger) error {
			manager, err := deps.manager(logger)
			if err != nil {
				return err
			}

			cfg, err := manager.ModelTrainerConfig()
			if err != nil {
				return err
			}

			_, err = training.New(cfg, logger).Train(ctx)

			return err
		},
	}
}

// All returns the stages in run order.
func All(deps Deps) []Stage {
	return []Stage{
		DataIngestion(deps),
		DataValidation(deps),
		DataTransformation(deps),
		ModelTrainer(deps),
	}
}

// Keys lists the keys of stages.
func Keys(stages []Stage) []string {
	keys := make([]string, len(stages))
	for i, st := range stages {
		keys[i] = st.Key
	}

	return keys
}

// Select keeps the stages named by keys, in run order. No keys keeps them all.
func Select(stages []Stage, keys []string) ([]Stage, error) {
	if len(keys) == 0 {
		return stages, nil
	}

	wanted := make(map[string]bool, len(keys))

	for _, key := range keys {
		key = strings.TrimSpace(key)

		found := false

		for _, st := range stages {
			if st.Key == key {
				found = true

				break
			}
		}

		if !found {
			return nil, errors.Wrapf(ErrUnknownStage, "%q, expected one of %s", key, strings.Join(Keys(stages), ", "))
		}

		wanted[key] = true
	}

	out := make([]Stage, 0, len(wanted))

	for _, st := range stages {
		if wanted[st.Key] {
			out = append(out, st)
		}
	}

	return out, nil
}

// Register adds stages to pipe in order.
func Register(pipe *pipeline.Pipeline, stages []Stage) error {
	for _, st := range stages {
		err := pipeline.AddStage(pipe, st.Name, st.LogFile, st.Run)
		if err != nil {
			return errors.Wrapf(err, "unable to add %s", st.Name)
		}
	}

	return nil
}
