// Package dataset reads and writes the CSV tables passed between stages.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

const ctxCheckEvery = 4096

// Table is a CSV file held in memory: a header and its rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read loads path. Every row must have as many fields as the header.
func Read(ctx context.Context, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, model.Wrapf(model.ErrIO, err, "unable to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, model.Wrapf(model.ErrIO, err, "unable to read header of %s", path)
	}

	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	table := &Table{Header: header}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, model.Wrapf(model.ErrIO, err, "unable to read %s", path)
		}

		table.Rows = append(table.Rows, record)
		if len(table.Rows)%ctxCheckEvery == 0 && ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "reading %s", path)
		}
	}

	return table, nil
}

// Write stores the table at path through a temporary file in the same
// directory, so a reader never sees a partial file.
func Write(path string, table *Table) error {
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to create temporary file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	wrt := csv.NewWriter(tmp)

	err = wrt.Write(table.Header)
	if err == nil {
		err = wrt.WriteAll(table.Rows)
	}

	if err != nil {
		tmp.Close()

		return model.Wrapf(model.ErrIO, err, "unable to write %s", path)
	}

	err = tmp.Close()
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to close %s", tmp.Name())
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return model.Wrapf(model.ErrIO, err, "unable to move %s to %s", tmp.Name(), path)
	}

	return nil
}

// Subset returns a table sharing the header and holding the rows at indices.
func (t *Table) Subset(indices []int) *Table {
	rows := make([][]string, len(indices))
	for i, idx := range indices {
		rows[i] = t.Rows[idx]
	}

	return &Table{Header: slices.Clone(t.Header), Rows: rows}
}

// Numeric splits the table into a feature matrix and the target column.
// Every cell must parse as a float.
func (t *Table) Numeric(target string) (features []string, x [][]float64, y []float64, err error) {
	targetIdx := slices.Index(t.Header, target)
	if targetIdx < 0 {
		return nil, nil, nil, model.Wrapf(model.ErrSchemaMismatch, nil, "target column %q not found in %v", target, t.Header)
	}

	features = make([]string, 0, len(t.Header)-1)
	for i, name := range t.Header {
		if i != targetIdx {
			features = append(features, name)
		}
	}

	x = make([][]float64, len(t.Rows))
	y = make([]float64, len(t.Rows))

	for r, row := range t.Rows {
		x[r] = make([]float64, 0, len(features))

		for c, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, nil, nil, model.Wrapf(model.ErrSchemaMismatch, err,
					"row %d column %q: %q is not numeric", r+1, t.Header[c], cell)
			}

			if c == targetIdx {
				y[r] = v
			} else {
				x[r] = append(x[r], v)
			}
		}
	}

	return features, x, y, nil
}
