package stage_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mlpipeline/internal/logging"
	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/ingestion"
	"github.com/askiada/go-mlpipeline/pkg/pipeline"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
	"github.com/askiada/go-mlpipeline/pkg/stage"
	"github.com/askiada/go-mlpipeline/pkg/training"
	"github.com/askiada/go-mlpipeline/pkg/validation"
)

const configTemplate = `artifacts_root: {{root}}/artifacts

data_ingestion:
  root_dir: {{root}}/artifacts/data_ingestion
  source_URL: {{url}}/winequality-data.zip
  local_data_file: {{root}}/artifacts/data_ingestion/data.zip
  unzip_dir: {{root}}/artifacts/data_ingestion

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
  alpha: 0.000001
  l1_ratio: 0.5
  max_iter: 10000
  tol: 0.0000000001
TrainTestSplit:
  test_size: 0.2
  random_state: 42
`

type fixture struct {
	root  string
	deps  stage.Deps
	logs  *logging.Files
	paths config.Paths
}

// wineZip holds winequality-red.csv where quality = 2*alcohol + 1.
func wineZip(t *testing.T) []byte {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("alcohol,pH,quality\n")

	for i := range 40 {
		alcohol := float64(i) + 0.5
		sb.WriteString(strconv.FormatFloat(alcohol, 'f', -1, 64) + "," +
			strconv.Itoa(3+i%2) + "," + strconv.Itoa(2*i+2) + "\n")
	}

	buf := &bytes.Buffer{}
	wrt := zip.NewWriter(buf)
	w, err := wrt.Create("winequality-red.csv")
	require.NoError(t, err)
	_, err = io.WriteString(w, sb.String())
	require.NoError(t, err)
	require.NoError(t, wrt.Close())

	return buf.Bytes()
}

func newFixture(t *testing.T, schema string) *fixture {
	t.Helper()

	payload := wineZip(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	paths := config.Paths{
		Config: filepath.Join(root, "config", "config.yaml"),
		Params: filepath.Join(root, "params.yaml"),
		Schema: filepath.Join(root, "schema.yaml"),
	}

	cfg := strings.NewReplacer("{{root}}", root, "{{url}}", srv.URL).Replace(configTemplate)

	for path, content := range map[string]string{paths.Config: cfg, paths.Params: paramsYAML, paths.Schema: schema} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	logs, err := logging.NewFiles(filepath.Join(root, "logs"), nil)
	require.NoError(t, err)

	return &fixture{
		root:  root,
		paths: paths,
		logs:  logs,
		deps:  stage.Deps{Paths: paths, Fetcher: ingestion.NewHTTPFetcher(srv.Client())},
	}
}

func (fx *fixture) run(t *testing.T, stages []stage.Stage) error {
	t.Helper()

	pipe, err := pipeline.New(fx.logs)
	require.NoError(t, err)
	require.NoError(t, stage.Register(pipe, stages))

	return pipe.Run(context.Background())
}

func (fx *fixture) artifact(parts ...string) string {
	return filepath.Join(append([]string{fx.root, "artifacts"}, parts...)...)
}

func (fx *fixture) log(t *testing.T, name string) string {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join(fx.logs.Dir, name))
	require.NoError(t, err)

	return string(raw)
}

const matchingSchema = `COLUMNS:
  alcohol: float64
  pH: int64
  quality: int64
TARGET_COLUMN:
  name: quality
`

func TestAllStages(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, matchingSchema)

	require.NoError(t, fx.run(t, stage.All(fx.deps)))

	ok, err := validation.ReadStatus(fx.artifact("data_validation", "status.txt"))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.FileExists(t, fx.artifact("data_transformation", "train.csv"))
	assert.FileExists(t, fx.artifact("data_transformation", "test.csv"))

	trained, err := training.LoadModel(fx.artifact("model_trainer", "model.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alcohol", "pH"}, trained.Features)
	assert.InDelta(t, 2, trained.Coef[0], 1e-3)

	metrics, err := training.LoadMetrics(fx.artifact("model_trainer", "metrics.json"))
	require.NoError(t, err)
	assert.InDelta(t, 1, metrics.R2, 1e-4)

	for file, name := range map[string]string{
		"stage1_ingestion.log":           "Data Ingestion Stage",
		"stage2_data_validation.log":     "Data Validation Stage",
		"stage3_data_transformation.log": "Data Transformation Stage",
		"stage4_model_training.log":      "Model Trainer stage",
	} {
		content := fx.log(t, file)
		assert.Contains(t, content, ">>>>> "+name+" started <<<<<")
		assert.Contains(t, content, ">>>>> "+name+" completed <<<<<")
	}
}

func TestSchemaMismatchStopsBeforeTransformation(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, `COLUMNS:
  pH: int64
  alcohol: float64
  quality: int64
TARGET_COLUMN:
  name: quality
`)

	err := fx.run(t, stage.All(fx.deps))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "Data Transformation Stage")

	ok, err := validation.ReadStatus(fx.artifact("data_validation", "status.txt"))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Contains(t, fx.log(t, "stage2_data_validation.log"), "column mismatch")
	assert.Contains(t, fx.log(t, "stage3_data_transformation.log"), "Error in Data Transformation Stage")
	assert.NoFileExists(t, filepath.Join(fx.logs.Dir, "stage4_model_training.log"))
}

func TestMissingConfig(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, matchingSchema)
	require.NoError(t, os.Remove(fx.paths.Config))

	err := fx.run(t, []stage.Stage{stage.DataIngestion(fx.deps)})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	all := stage.All(stage.Deps{})

	tcs := map[string]struct {
		keys     []string
		expected []string
		err      error
	}{
		"no keys keeps everything": {
			expected: []string{"ingestion", "validation", "transformation", "training"},
		},
		"run order wins over flag order": {
			keys:     []string{"training", " ingestion"},
			expected: []string{"ingestion", "training"},
		},
		"duplicates are ignored": {
			keys:     []string{"validation", "validation"},
			expected: []string{"validation"},
		},
		"unknown key": {
			keys: []string{"evaluation"},
			err:  stage.ErrUnknownStage,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := stage.Select(all, tc.keys)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, stage.Keys(got))
		})
	}
}
