package catalog

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"synth-pump/internal/frame"
)

// parquetSchema maps normalized dataset kinds onto an all-optional parquet
// group. Object columns are stored as strings.
func parquetSchema(ds *frame.Dataset, name string) *parquet.Schema {
	group := parquet.Group{}
	for _, c := range ds.Columns {
		var node parquet.Node
		switch c.Kind {
		case frame.Float:
			node = parquet.Leaf(parquet.DoubleType)
		case frame.Int:
			node = parquet.Int(64)
		case frame.Bool:
			node = parquet.Leaf(parquet.BooleanType)
		default:
			node = parquet.String()
		}
		group[c.Name] = parquet.Optional(node)
	}
	return parquet.NewSchema(name, group)
}

// encodeParquet serializes the dataset as one parquet file in memory.
func encodeParquet(ds *frame.Dataset, name string) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[map[string]any](&buf, parquetSchema(ds, name))

	rows := make([]map[string]any, ds.NumRows())
	for i := range rows {
		row := make(map[string]any, ds.NumCols())
		for _, c := range ds.Columns {
			v := c.Values[i]
			if v == nil {
				continue // absent key writes a null
			}
			switch c.Kind {
			case frame.Float, frame.Int, frame.Bool:
				row[c.Name] = v
			default:
				if s, ok := v.(string); ok {
					row[c.Name] = s
				} else {
					row[c.Name] = fmt.Sprint(v)
				}
			}
		}
		rows[i] = row
	}

	if _, err := w.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
