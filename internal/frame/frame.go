package frame

import "fmt"

// Kind identifies the element type of a column. The first four kinds are
// the normalized set every column must belong to before model fitting;
// the remaining kinds are the raw logical types query engines hand back.
type Kind int

const (
	Object Kind = iota // heterogeneous cells (strings, timestamps, ...)
	Float              // float64 cells, NaN marks a missing value
	Int                // int64 cells, no missing values
	Bool               // bool cells, no missing values

	String  // logical string extension type
	Float64 // raw 64-bit float
	Int64   // nullable 64-bit integer
	Boolean // nullable boolean
)

func (k Kind) String() string {
	return [...]string{
		"Object", "Float", "Int", "Bool",
		"String", "Float64", "Int64", "Boolean",
	}[k]
}

// Normalized reports whether the kind belongs to the model-compatible set.
func (k Kind) Normalized() bool {
	return k <= Bool
}

// Column is a named vector of cells. A nil cell marks a missing value for
// the nullable kinds; Float columns use NaN instead.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// NullCount returns the number of nil cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Dataset is an in-memory table. All columns have the same length.
type Dataset struct {
	Columns []*Column
}

func (d *Dataset) NumRows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

func (d *Dataset) NumCols() int {
	return len(d.Columns)
}

// Column returns the column with the given name, or nil if absent.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns the column names in declaration order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks that every column has the same length.
func (d *Dataset) Validate() error {
	rows := d.NumRows()
	for _, c := range d.Columns {
		if len(c.Values) != rows {
			return fmt.Errorf("column %s has %d cells, expected %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}
