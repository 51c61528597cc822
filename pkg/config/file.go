package config

import (
	"strings"

	"github.com/pkg/errors"
)

// File is the content of config.yaml.
type File struct {
	ArtifactsRoot      string                     `yaml:"artifacts_root"`
	DataIngestion      *DataIngestionSection      `yaml:"data_ingestion"`
	DataValidation     *DataValidationSection     `yaml:"data_validation"`
	DataTransformation *DataTransformationSection `yaml:"data_transformation,omitempty"`
	ModelTrainer       *ModelTrainerSection       `yaml:"model_trainer,omitempty"`
}

type DataIngestionSection struct {
	RootDir            string `yaml:"root_dir"`
	SourceURL          string `yaml:"source_URL"`
	LocalDataFile      string `yaml:"local_data_file"`
	UnzipDir           string `yaml:"unzip_dir"`
	ExtractConcurrency int    `yaml:"extract_concurrency,omitempty"`
}

type DataValidationSection struct {
	RootDir      string `yaml:"root_dir"`
	UnzipDataDir string `yaml:"unzip_data_dir"`
	StatusFile   string `yaml:"STATUS_FILE"`
}

type DataTransformationSection struct {
	RootDir  string `yaml:"root_dir"`
	DataPath string `yaml:"data_path"`
}

type ModelTrainerSection struct {
	RootDir        string `yaml:"root_dir"`
	TrainDataPath  string `yaml:"train_data_path"`
	TestDataPath   string `yaml:"test_data_path"`
	ModelName      string `yaml:"model_name"`
	MetricFileName string `yaml:"metric_file_name,omitempty"`
}

// Validate checks the required top-level keys.
func (f *File) Validate() error {
	if strings.TrimSpace(f.ArtifactsRoot) == "" {
		return errors.New("artifacts_root is required")
	}

	if f.DataIngestion == nil {
		return errors.New("data_ingestion is required")
	}

	if f.DataValidation == nil {
		return errors.New("data_validation is required")
	}

	return nil
}

// Validate checks the required data_ingestion keys.
func (s *DataIngestionSection) Validate() error {
	return required("data_ingestion",
		field{"root_dir", s.RootDir},
		field{"source_URL", s.SourceURL},
		field{"local_data_file", s.LocalDataFile},
		field{"unzip_dir", s.UnzipDir},
	)
}

// Validate checks the required data_validation keys.
func (s *DataValidationSection) Validate() error {
	return required("data_validation",
		field{"root_dir", s.RootDir},
		field{"unzip_data_dir", s.UnzipDataDir},
		field{"STATUS_FILE", s.StatusFile},
	)
}

// Validate checks the required data_transformation keys.
func (s *DataTransformationSection) Validate() error {
	return required("data_transformation",
		field{"root_dir", s.RootDir},
		field{"data_path", s.DataPath},
	)
}

// Validate checks the required model_trainer keys.
func (s *ModelTrainerSection) Validate() error {
	return required("model_trainer",
		field{"root_dir", s.RootDir},
		field{"train_data_path", s.TrainDataPath},
		field{"test_data_path", s.TestDataPath},
		field{"model_name", s.ModelName},
	)
}

type field struct {
	key, value string
}

func required(section string, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errors.Errorf("%s.%s is required", section, f.key)
		}
	}

	return nil
}
