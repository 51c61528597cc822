package config

import (
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

const defaultMetricFileName = "metrics.json"

// Paths locates the three YAML documents.
type Paths struct {
	Config string
	Params string
	Schema string
}

// DefaultPaths are relative to the project root.
func DefaultPaths() Paths {
	return Paths{
		Config: filepath.Join("config", "config.yaml"),
		Params: "params.yaml",
		Schema: "schema.yaml",
	}
}

// Manager holds the loaded documents and builds the stage configurations.
type Manager struct {
	logger *slog.Logger
	config File
	params Params
	schema Schema
}

// NewManager loads config, params and schema, then creates artifacts_root.
func NewManager(paths Paths, logger *slog.Logger) (*Manager, error) {
	mgr := &Manager{logger: logger}

	err := loadYAML(logger, paths.Config, &mgr.config)
	if err != nil {
		return nil, err
	}

	err = loadYAML(logger, paths.Params, &mgr.params)
	if err != nil {
		return nil, err
	}

	err = loadYAML(logger, paths.Schema, &mgr.schema)
	if err != nil {
		return nil, err
	}

	err = createDirectories(logger, mgr.config.ArtifactsRoot)
	if err != nil {
		return nil, err
	}

	return mgr, nil
}

// DataIngestionConfig returns the data_ingestion section and creates its root_dir.
func (m *Manager) DataIngestionConfig() (DataIngestionConfig, error) {
	section := m.config.DataIngestion

	err := section.Validate()
	if err != nil {
		return DataIngestionConfig{}, model.Wrap(model.ErrConfig, err, "data ingestion config")
	}

	err = createDirectories(m.logger, section.RootDir)
	if err != nil {
		return DataIngestionConfig{}, err
	}

	return DataIngestionConfig{
		RootDir:            section.RootDir,
		SourceURL:          section.SourceURL,
		LocalDataFile:      section.LocalDataFile,
		UnzipDir:           section.UnzipDir,
		ExtractConcurrency: section.ExtractConcurrency,
	}, nil
}

// DataValidationConfig returns the data_validation section with the schema
// columns, and creates its root_dir.
func (m *Manager) DataValidationConfig() (DataValidationConfig, error) {
	section := m.config.DataValidation

	err := section.Validate()
	if err != nil {
		return DataValidationConfig{}, model.Wrap(model.ErrConfig, err, "data validation config")
	}

	err = createDirectories(m.logger, section.RootDir)
	if err != nil {
		return DataValidationConfig{}, err
	}

	return DataValidationConfig{
		RootDir:      section.RootDir,
		StatusFile:   section.StatusFile,
		UnzipDataDir: section.UnzipDataDir,
		Schema:       slices.Clone(m.schema.Columns),
	}, nil
}

// DataTransformationConfig returns the data_transformation section with the
// split params. It fails when the section is missing.
func (m *Manager) DataTransformationConfig() (DataTransformationConfig, error) {
	section := m.config.DataTransformation
	if section == nil {
		return DataTransformationConfig{}, model.Wrap(model.ErrConfig, nil, "data_transformation is required")
	}

	err := section.Validate()
	if err != nil {
		return DataTransformationConfig{}, model.Wrap(model.ErrConfig, err, "data transformation config")
	}

	err = createDirectories(m.logger, section.RootDir)
	if err != nil {
		return DataTransformationConfig{}, err
	}

	return DataTransformationConfig{
		RootDir:     section.RootDir,
		DataPath:    section.DataPath,
		StatusFile:  m.config.DataValidation.StatusFile,
		TestSize:    m.params.TrainTestSplit.testSize(),
		RandomState: m.params.TrainTestSplit.randomState(),
	}, nil
}

// ModelTrainerConfig returns the model_trainer section with the ElasticNet
// params and the schema target column. It fails when any of them is missing.
func (m *Manager) ModelTrainerConfig() (ModelTrainerConfig, error) {
	section := m.config.ModelTrainer
	if section == nil {
		return ModelTrainerConfig{}, model.Wrap(model.ErrConfig, nil, "model_trainer is required")
	}

	err := section.Validate()
	if err != nil {
		return ModelTrainerConfig{}, model.Wrap(model.ErrConfig, err, "model trainer config")
	}

	params := m.params.ElasticNet
	if params == nil {
		return ModelTrainerConfig{}, model.Wrap(model.ErrConfig, nil, "ElasticNet params are required")
	}

	if m.schema.TargetColumn == nil {
		return ModelTrainerConfig{}, model.Wrap(model.ErrConfig, nil, "TARGET_COLUMN is required")
	}

	err = createDirectories(m.logger, section.RootDir)
	if err != nil {
		return ModelTrainerConfig{}, err
	}

	metricFileName := section.MetricFileName
	if metricFileName == "" {
		metricFileName = defaultMetricFileName
	}

	maxIter := params.MaxIter
	if maxIter == 0 {
		maxIter = defaultMaxIter
	}

	tol := params.Tol
	if tol == 0 {
		tol = defaultTol
	}

	return ModelTrainerConfig{
		RootDir:       section.RootDir,
		TrainDataPath: section.TrainDataPath,
		TestDataPath:  section.TestDataPath,
		ModelPath:     filepath.Join(section.RootDir, section.ModelName),
		MetricsPath:   filepath.Join(section.RootDir, metricFileName),
		TargetColumn:  m.schema.TargetColumn.Name,
		Alpha:         params.Alpha,
		L1Ratio:       params.L1Ratio,
		MaxIter:       maxIter,
		Tol:           tol,
	}, nil
}
