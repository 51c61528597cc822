package config

import (
	"github.com/pkg/errors"
)

const (
	defaultMaxIter     = 1000
	defaultTol         = 1e-4
	defaultTestSize    = 0.25
	defaultRandomState = 42
)

// Params is the content of params.yaml.
type Params struct {
	ElasticNet     *ElasticNetParams     `yaml:"ElasticNet"`
	TrainTestSplit *TrainTestSplitParams `yaml:"TrainTestSplit,omitempty"`
}

type ElasticNetParams struct {
	Alpha   float64 `yaml:"alpha"`
	L1Ratio float64 `yaml:"l1_ratio"`
	MaxIter int     `yaml:"max_iter,omitempty"`
	Tol     float64 `yaml:"tol,omitempty"`
}

type TrainTestSplitParams struct {
	TestSize    float64 `yaml:"test_size"`
	RandomState *int64  `yaml:"random_state,omitempty"`
}

// Validate requires at least one section and checks the ones present.
func (p *Params) Validate() error {
	if p.ElasticNet == nil && p.TrainTestSplit == nil {
		return errors.New("params must define ElasticNet or TrainTestSplit")
	}

	if p.ElasticNet != nil {
		err := p.ElasticNet.Validate()
		if err != nil {
			return err
		}
	}

	if p.TrainTestSplit != nil {
		err := p.TrainTestSplit.Validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the hyperparameter ranges.
func (e *ElasticNetParams) Validate() error {
	if e.Alpha < 0 {
		return errors.Errorf("ElasticNet.alpha must be >= 0, got %v", e.Alpha)
	}

	if e.L1Ratio < 0 || e.L1Ratio > 1 {
		return errors.Errorf("ElasticNet.l1_ratio must be in [0, 1], got %v", e.L1Ratio)
	}

	if e.MaxIter < 0 {
		return errors.Errorf("ElasticNet.max_iter must be >= 0, got %d", e.MaxIter)
	}

	if e.Tol < 0 {
		return errors.Errorf("ElasticNet.tol must be >= 0, got %v", e.Tol)
	}

	return nil
}

// Validate checks that test_size is in (0, 1).
func (s *TrainTestSplitParams) Validate() error {
	if s.TestSize <= 0 || s.TestSize >= 1 {
		return errors.Errorf("TrainTestSplit.test_size must be in (0, 1), got %v", s.TestSize)
	}

	return nil
}

func (s *TrainTestSplitParams) testSize() float64 {
	if s == nil {
		return defaultTestSize
	}

	return s.TestSize
}

func (s *TrainTestSplitParams) randomState() int64 {
	if s == nil || s.RandomState == nil {
		return defaultRandomState
	}

	return *s.RandomState
}
