package frame

import "math"

// Normalize coerces every column to the model-compatible kind set
// (Object, Float, Int, Bool), in place:
//
//   - String columns become Object columns, values untouched.
//   - Float64 columns become Float columns; nil cells become NaN.
//   - Int64 columns become Int columns when they hold no nulls, otherwise
//     Float columns with NaN in place of nulls (integer-with-nulls has no
//     exact representation).
//   - Boolean columns become Bool columns with nulls resolved to true.
//   - Every other kind passes through unchanged.
//
// The return value is the number of boolean cells that were fabricated as
// true, so callers can surface that the data was altered.
func (d *Dataset) Normalize() int {
	fabricated := 0
	for _, c := range d.Columns {
		switch c.Kind {
		case String:
			c.Kind = Object
		case Float64:
			for i, v := range c.Values {
				if v == nil {
					c.Values[i] = math.NaN()
				}
			}
			c.Kind = Float
		case Int64:
			if c.NullCount() == 0 {
				c.Kind = Int
				continue
			}
			for i, v := range c.Values {
				if v == nil {
					c.Values[i] = math.NaN()
				} else {
					c.Values[i] = float64(v.(int64))
				}
			}
			c.Kind = Float
		case Boolean:
			for i, v := range c.Values {
				if v == nil {
					c.Values[i] = true
					fabricated++
				}
			}
			c.Kind = Bool
		}
	}
	return fabricated
}
