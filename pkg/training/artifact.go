package training

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

// Model is the persisted form of a fitted ElasticNet.
type Model struct {
	Target    string    `json:"target"`
	Features  []string  `json:"features"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Alpha     float64   `json:"alpha"`
	L1Ratio   float64   `json:"l1_ratio"`
	NIter     int       `json:"n_iter"`
	Converged bool      `json:"converged"`
}

// Predict applies the model to rows ordered like Features.
func (m *Model) Predict(x [][]float64) []float64 {
	net := &ElasticNet{Coef: m.Coef, Intercept: m.Intercept}

	return net.Predict(x)
}

func LoadModel(path string) (*Model, error) {
	out := &Model{}

	err := readJSON(path, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func LoadMetrics(path string) (Metrics, error) {
	out := Metrics{}

	err := readJSON(path, &out)

	return out, err
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to read %s", path)
	}

	err = json.Unmarshal(raw, v)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to decode %s", path)
	}

	return nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to encode %s", path)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to create directory for %s", path)
	}

	err = os.WriteFile(path, append(raw, '\n'), 0o644)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to write %s", path)
	}

	return nil
}
