package config_test

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

const configTemplate = `artifacts_root: {{root}}/artifacts

data_ingestion:
  root_dir: {{root}}/artifacts/data_ingestion
  source_URL: https://example.com/winequality-data.zip
  local_data_file: {{root}}/artifacts/data_ingestion/data.zip
  unzip_dir: {{root}}/artifacts/data_ingestion
  extract_concurrency: 2

data_validation:
  root_dir: {{root}}/artifacts/data_validation
  unzip_data_dir: {{root}}/artifacts/data_ingestion/winequality-red.csv
  STATUS_FILE: {{root}}/artifacts/data_validation/status.txt

data_transformation:
  root_dir: {{root}}/artifacts/data_transformation
  data_path: {{root}}/artifacts/data_ingestion/winequality-red.csv

model_trainer:
  root_dir: {{root}}/artifacts/model_trainer
  train_data_path: {{root}}/artifacts/data_transformation/train.csv
  test_data_path: {{root}}/artifacts/data_transformation/test.csv
  model_name: model.json
`

const paramsYAML = `ElasticNet:
  alpha: 0.2
  l1_ratio: 0.1
TrainTestSplit:
  test_size: 0.3
  random_state: 7
`

const schemaYAML = `COLUMNS:
  volatile acidity: float64
  alcohol: float64
  citric acid: float64
  quality: int64
TARGET_COLUMN:
  name: quality
`

type fixture struct {
	root  string
	paths config.Paths
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	fx := &fixture{
		root: root,
		paths: config.Paths{
			Config: filepath.Join(root, "config", "config.yaml"),
			Params: filepath.Join(root, "params.yaml"),
			Schema: filepath.Join(root, "schema.yaml"),
		},
	}
	fx.write(t, fx.paths.Config, strings.ReplaceAll(configTemplate, "{{root}}", root))
	fx.write(t, fx.paths.Params, paramsYAML)
	fx.write(t, fx.paths.Schema, schemaYAML)

	return fx
}

func (fx *fixture) write(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewManagerCreatesArtifactsRoot(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	_, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(fx.root, "artifacts"))
}

func TestDataIngestionConfig(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	mgr, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)

	got, err := mgr.DataIngestionConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DataIngestionConfig{
		RootDir:            filepath.Join(fx.root, "artifacts", "data_ingestion"),
		SourceURL:          "https://example.com/winequality-data.zip",
		LocalDataFile:      filepath.Join(fx.root, "artifacts", "data_ingestion", "data.zip"),
		UnzipDir:           filepath.Join(fx.root, "artifacts", "data_ingestion"),
		ExtractConcurrency: 2,
	}, got)
	assert.DirExists(t, got.RootDir)
}

func TestDataValidationConfigKeepsSchemaOrder(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	mgr, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)

	got, err := mgr.DataValidationConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fx.root, "artifacts", "data_validation", "status.txt"), got.StatusFile)
	assert.Equal(t, []string{"volatile acidity", "alcohol", "citric acid", "quality"}, got.Schema.Names())
	assert.Equal(t, []string{"float64", "float64", "float64", "int64"}, got.Schema.Dtypes())
	assert.DirExists(t, got.RootDir)

	got.Schema[0].Name = "changed"
	again, err := mgr.DataValidationConfig()
	require.NoError(t, err)
	assert.Equal(t, "volatile acidity", again.Schema[0].Name)
}

func TestDataTransformationConfig(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	mgr, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)

	got, err := mgr.DataTransformationConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DataTransformationConfig{
		RootDir:     filepath.Join(fx.root, "artifacts", "data_transformation"),
		DataPath:    filepath.Join(fx.root, "artifacts", "data_ingestion", "winequality-red.csv"),
		StatusFile:  filepath.Join(fx.root, "artifacts", "data_validation", "status.txt"),
		TestSize:    0.3,
		RandomState: 7,
	}, got)
}

func TestModelTrainerConfig(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	mgr, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)

	got, err := mgr.ModelTrainerConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fx.root, "artifacts", "model_trainer", "model.json"), got.ModelPath)
	assert.Equal(t, filepath.Join(fx.root, "artifacts", "model_trainer", "metrics.json"), got.MetricsPath)
	assert.Equal(t, "quality", got.TargetColumn)
	assert.InDelta(t, 0.2, got.Alpha, 1e-12)
	assert.InDelta(t, 0.1, got.L1Ratio, 1e-12)
	assert.Equal(t, 1000, got.MaxIter)
	assert.InDelta(t, 1e-4, got.Tol, 1e-12)
}

func TestOptionalSectionsMissing(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	content := strings.ReplaceAll(configTemplate, "{{root}}", fx.root)
	content = content[:strings.Index(content, "data_transformation:")]
	fx.write(t, fx.paths.Config, content)

	mgr, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)

	_, err = mgr.DataTransformationConfig()
	require.ErrorIs(t, err, model.ErrConfig)

	_, err = mgr.ModelTrainerConfig()
	require.ErrorIs(t, err, model.ErrConfig)

	_, err = mgr.DataIngestionConfig()
	assert.NoError(t, err)
}

func TestNewManagerErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		file    func(p config.Paths) string
		content string
		wantMsg string
	}{
		"empty config": {
			file:    func(p config.Paths) string { return p.Config },
			content: "",
			wantMsg: "is empty",
		},
		"comments only params": {
			file:    func(p config.Paths) string { return p.Params },
			content: "# nothing yet\n",
			wantMsg: "is empty",
		},
		"malformed schema": {
			file:    func(p config.Paths) string { return p.Schema },
			content: "COLUMNS: [a: b\n",
			wantMsg: "invalid yaml file",
		},
		"missing data_ingestion": {
			file:    func(p config.Paths) string { return p.Config },
			content: "artifacts_root: artifacts\ndata_validation:\n  root_dir: x\n",
			wantMsg: "data_ingestion is required",
		},
		"missing artifacts_root": {
			file:    func(p config.Paths) string { return p.Config },
			content: "data_ingestion: {}\ndata_validation: {}\n",
			wantMsg: "artifacts_root is required",
		},
		"unknown key": {
			file:    func(p config.Paths) string { return p.Params },
			content: "ElasticNet:\n  alpha: 0.1\n  l1_ratio: 0.5\n  beta: 3\n",
			wantMsg: "field beta not found",
		},
		"columns not a mapping": {
			file:    func(p config.Paths) string { return p.Schema },
			content: "COLUMNS:\n  - a\n  - b\n",
			wantMsg: "COLUMNS must be a mapping",
		},
		"missing COLUMNS": {
			file:    func(p config.Paths) string { return p.Schema },
			content: "TARGET_COLUMN:\n  name: quality\n",
			wantMsg: "COLUMNS must list at least one column",
		},
		"empty dtype": {
			file:    func(p config.Paths) string { return p.Schema },
			content: "COLUMNS:\n  a: int64\n  b:\n",
			wantMsg: `dtype of column "b" must be a string`,
		},
		"l1_ratio out of range": {
			file:    func(p config.Paths) string { return p.Params },
			content: "ElasticNet:\n  alpha: 0.1\n  l1_ratio: 1.5\n",
			wantMsg: "l1_ratio must be in [0, 1]",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fx := newFixture(t)
			fx.write(t, tc.file(fx.paths), tc.content)

			_, err := config.NewManager(fx.paths, discardLogger())
			require.ErrorIs(t, err, model.ErrConfig)
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestNewManagerMissingFile(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	require.NoError(t, os.Remove(fx.paths.Schema))

	_, err := config.NewManager(fx.paths, discardLogger())
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorContains(t, err, "not found")
}

func TestDataIngestionConfigMissingField(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	content := strings.ReplaceAll(configTemplate, "{{root}}", fx.root)
	content = strings.Replace(content, "  source_URL: https://example.com/winequality-data.zip\n", "", 1)
	fx.write(t, fx.paths.Config, content)

	mgr, err := config.NewManager(fx.paths, discardLogger())
	require.NoError(t, err)

	_, err = mgr.DataIngestionConfig()
	require.ErrorIs(t, err, model.ErrConfig)
	assert.ErrorContains(t, err, "data_ingestion.source_URL is required")
}
