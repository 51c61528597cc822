package config

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

type validator interface {
	Validate() error
}

// loadYAML decodes path into out. Unknown keys are rejected. Every failure
// is an ErrConfig.
func loadYAML(logger *slog.Logger, path string, out validator) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("yaml file not found", "path", path)

			return model.Wrapf(model.ErrConfig, err, "yaml file %s not found", path)
		}

		return model.Wrapf(model.ErrConfig, err, "unable to read yaml file %s", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	err = dec.Decode(out)
	if errors.Is(err, io.EOF) {
		logger.Error("yaml file is empty", "path", path)

		return model.Wrapf(model.ErrConfig, nil, "yaml file %s is empty", path)
	}

	if err != nil {
		logger.Error("unable to parse yaml", "path", path, "error", err)

		return model.Wrapf(model.ErrConfig, err, "invalid yaml file %s", path)
	}

	err = out.Validate()
	if err != nil {
		logger.Error("invalid yaml structure", "path", path, "error", err)

		return model.Wrapf(model.ErrConfig, err, "invalid yaml structure in %s", path)
	}

	logger.Info("yaml file loaded successfully", "path", path)

	return nil
}

// createDirectories creates every path, parents included.
func createDirectories(logger *slog.Logger, paths ...string) error {
	for _, path := range paths {
		err := os.MkdirAll(path, 0o755)
		if err != nil {
			return model.Wrapf(model.ErrIO, err, "unable to create directory %s", path)
		}

		logger.Info("created directory", "path", path)
	}

	return nil
}
