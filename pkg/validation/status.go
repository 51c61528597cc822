package validation

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

const statusPrefix = "Validation status: "

// WriteStatus records the validation outcome as a single line.
func WriteStatus(path string, valid bool) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to create directory for %s", path)
	}

	value := "False"
	if valid {
		value = "True"
	}

	err = os.WriteFile(path, []byte(statusPrefix+value), 0o644)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to write status file %s", path)
	}

	return nil
}

// ReadStatus parses a file written by WriteStatus.
func ReadStatus(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, model.Wrapf(model.ErrIO, err, "unable to read status file %s", path)
	}

	line := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(line, statusPrefix) {
		return false, model.Wrapf(model.ErrIO, nil, "malformed status file %s: %q", path, line)
	}

	valid, err := strconv.ParseBool(strings.TrimPrefix(line, statusPrefix))
	if err != nil {
		return false, model.Wrapf(model.ErrIO, err, "malformed status file %s", path)
	}

	return valid, nil
}

// RequireValid is the gate used by the stages after validation. A false
// status is an ErrSchemaMismatch, a missing status file an ErrIO.
func RequireValid(path string) error {
	valid, err := ReadStatus(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Wrapf(model.ErrIO, err, "data validation has not run, no status at %s", path)
		}

		return err
	}

	if !valid {
		return model.Wrapf(model.ErrSchemaMismatch, nil, "data validation failed according to %s", path)
	}

	return nil
}
