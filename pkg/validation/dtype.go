package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// dtype strings, as the pandas CSV reader reports them.
const (
	DtypeInt64   = "int64"
	DtypeUint64  = "uint64"
	DtypeFloat64 = "float64"
	DtypeBool    = "bool"
	DtypeObject  = "object"
)

// naValues are the cells read as missing by default.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

var boolValues = map[string]struct{}{
	"True": {}, "TRUE": {}, "true": {}, "False": {}, "FALSE": {}, "false": {},
}

// columnKind accumulates what the cells of one column looked like.
type columnKind struct {
	ints, negInts, uints, floats, bools, missing, others int
}

func (c *columnKind) observe(cell string) {
	if _, ok := naValues[cell]; ok {
		c.missing++

		return
	}

	trimmed := strings.TrimSpace(cell)

	switch {
	case c.observeInt(trimmed):
	case isFloat(trimmed):
		c.floats++
	default:
		if _, ok := boolValues[trimmed]; ok {
			c.bools++

			return
		}

		c.others++
	}
}

// observeInt counts integers. Values above the int64 range that fit in
// uint64 are counted apart, anything larger is not an integer.
func (c *columnKind) observeInt(s string) bool {
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		c.ints++
		if v < 0 {
			c.negInts++
		}

		return true
	}

	if !errors.Is(err, strconv.ErrRange) {
		return false
	}

	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		c.uints++

		return true
	}

	// out of range for every integer type: kept as text
	c.others++

	return true
}

// isFloat accepts decimal floats, overflow to ±inf and the inf spellings.
// NaN spellings outside naValues and hexadecimal floats are text.
func isFloat(s string) bool {
	unsigned := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(unsigned, "0x") {
		return false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}

	return !math.IsNaN(v)
}

// dtype resolves the column type. rows is the number of data rows read.
func (c *columnKind) dtype(rows int) string {
	numeric := c.ints + c.uints + c.floats

	switch {
	case rows == 0:
		return DtypeObject
	case c.others > 0:
		return DtypeObject
	case c.bools > 0 && (numeric > 0 || c.missing > 0):
		return DtypeObject
	case c.bools > 0:
		return DtypeBool
	case c.floats > 0 || c.missing > 0:
		return DtypeFloat64
	case c.uints > 0 && c.negInts > 0:
		return DtypeObject
	case c.uints > 0:
		return DtypeUint64
	default:
		return DtypeInt64
	}
}

// mangleDuplicates renames repeated column names to name.1, name.2, ...
// skipping names already taken.
func mangleDuplicates(names []string) []string {
	out := make([]string, len(names))
	counts := make(map[string]int, len(names))

	for i, name := range names {
		count := counts[name]
		for count > 0 {
			counts[name] = count + 1
			name = name + "." + strconv.Itoa(count)
			count = counts[name]
		}

		out[i] = name
		counts[name] = count + 1
	}

	return out
}
