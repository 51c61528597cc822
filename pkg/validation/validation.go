// Package validation checks the extracted CSV against the expected schema.
//
// The check is strict: the columns must appear in the schema order and every
// inferred dtype must be equal, as a string, to the expected one. "int32" and
// "int64" are different dtypes.
package validation

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

const ctxCheckEvery = 4096

// Report details the comparison of a CSV with the schema.
type Report struct {
	ExpectedColumns []string
	FoundColumns    []string
	ExpectedDtypes  []string
	FoundDtypes     []string
	ColumnsMatch    bool
	DtypesMatch     bool
}

// Valid is true when both the columns and the dtypes match.
func (r Report) Valid() bool {
	return r.ColumnsMatch && r.DtypesMatch
}

// DataValidation checks one CSV file against the schema columns.
type DataValidation struct {
	cfg    config.DataValidationConfig
	logger *slog.Logger
}

// New creates a DataValidation logging to logger.
func New(cfg config.DataValidationConfig, logger *slog.Logger) *DataValidation {
	return &DataValidation{cfg: cfg, logger: logger}
}

// ValidateData compares the CSV with the schema and writes the outcome to the
// status file. A mismatch is not an error: it returns false.
func (v *DataValidation) ValidateData(ctx context.Context) (bool, error) {
	report, err := v.Check(ctx)
	if err != nil {
		v.logger.Error("error during data validation", "error", err)

		return false, err
	}

	if !report.ColumnsMatch {
		v.logger.Info("column mismatch", "expected", report.ExpectedColumns, "found", report.FoundColumns)
	}

	if !report.DtypesMatch {
		v.logger.Info("dtype mismatch", "expected", report.ExpectedDtypes, "found", report.FoundDtypes)
	}

	status := report.Valid()
	if status {
		v.logger.Info("all columns and data types match the expected schema")
	}

	err = WriteStatus(v.cfg.StatusFile, status)
	if err != nil {
		v.logger.Error("error during data validation", "error", err)

		return false, err
	}

	v.logger.Info("validation status written", "path", v.cfg.StatusFile, "status", status)

	return status, nil
}

// Check loads the CSV and compares it with the schema without writing anything.
func (v *DataValidation) Check(ctx context.Context) (Report, error) {
	columns, dtypes, err := inferCSV(ctx, v.cfg.UnzipDataDir)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ExpectedColumns: v.cfg.Schema.Names(),
		FoundColumns:    columns,
		ExpectedDtypes:  v.cfg.Schema.Dtypes(),
		FoundDtypes:     dtypes,
	}
	report.ColumnsMatch = slices.Equal(report.FoundColumns, report.ExpectedColumns)
	report.DtypesMatch = slices.Equal(report.FoundDtypes, report.ExpectedDtypes)

	return report, nil
}

// inferCSV returns the header and the dtype of every column of path.
func inferCSV(ctx context.Context, path string) ([]string, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, model.Wrapf(model.ErrIO, err, "unable to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, model.Wrapf(model.ErrIO, err, "no columns to parse from %s", path)
		}

		return nil, nil, model.Wrapf(model.ErrIO, err, "unable to read header of %s", path)
	}

	columns := slices.Clone(header)
	columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	columns = mangleDuplicates(columns)

	kinds := make([]columnKind, len(columns))
	rows := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, model.Wrapf(model.ErrIO, err, "unable to read %s", path)
		}

		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)

			return nil, nil, model.Wrapf(model.ErrIO, nil,
				"%s line %d: expected %d fields, saw %d", path, line, len(columns), len(record))
		}

		rows++
		if rows%ctxCheckEvery == 0 && ctx.Err() != nil {
			return nil, nil, errors.Wrapf(ctx.Err(), "reading %s", path)
		}

		for i := range kinds {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}

			kinds[i].observe(cell)
		}
	}

	dtypes := make([]string, len(kinds))
	for i := range kinds {
		dtypes[i] = kinds[i].dtype(rows)
	}

	return columns, dtypes, nil
}
