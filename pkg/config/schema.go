package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Schema is the content of schema.yaml.
type Schema struct {
	Columns      Columns       `yaml:"COLUMNS"`
	TargetColumn *TargetColumn `yaml:"TARGET_COLUMN,omitempty"`
}

type TargetColumn struct {
	Name string `yaml:"name"`
}

// Column is an expected column name and its dtype string, e.g. "int64".
type Column struct {
	Name  string
	Dtype string
}

// Columns keeps the order in which the columns appear in the document.
type Columns []Column

// UnmarshalYAML decodes a mapping of column name to dtype, keeping its order.
func (c *Columns) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: COLUMNS must be a mapping of column name to dtype", value.Line)
	}

	out := make(Columns, 0, len(value.Content)/2)

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind != yaml.ScalarNode || val.Tag == "!!null" || strings.TrimSpace(val.Value) == "" {
			return errors.Errorf("line %d: dtype of column %q must be a string", val.Line, key.Value)
		}

		out = append(out, Column{Name: key.Value, Dtype: strings.TrimSpace(val.Value)})
	}

	*c = out

	return nil
}

// Names returns the column names in order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}

	return names
}

// Dtypes returns the column dtypes in order.
func (c Columns) Dtypes() []string {
	dtypes := make([]string, len(c))
	for i, col := range c {
		dtypes[i] = col.Dtype
	}

	return dtypes
}

// Validate checks that COLUMNS is not empty and that TARGET_COLUMN, when
// present, has a name.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.New("COLUMNS must list at least one column")
	}

	if s.TargetColumn != nil && strings.TrimSpace(s.TargetColumn.Name) == "" {
		return errors.New("TARGET_COLUMN.name is required")
	}

	return nil
}
