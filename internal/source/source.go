// Package source reads tables from plain relational databases through
// database/sql, as the non-catalog counterpart of the Athena reader. The
// driver is chosen by config; postgres, mysql, sqlserver and oracle are
// supported.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"synth-pump/internal/frame"
)

// Reader materializes a full relational table into a dataset.
type Reader struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database and verifies the connection.
func Open(driver, dsn string) (*Reader, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to %s source: %w", driver, err)
	}
	return &Reader{db: db, dialect: GetDialect(driver)}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// ReadTable selects every row of the table and maps column types to raw
// logical kinds. An empty database name leaves the table unqualified.
func (r *Reader) ReadTable(ctx context.Context, database, table string) (*frame.Dataset, error) {
	qualified := r.dialect.QuoteIdent(table)
	if database != "" {
		qualified = r.dialect.QuoteIdent(database) + "." + qualified
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.SelectAllQuery(qualified))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", qualified, err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types of %s: %w", qualified, err)
	}

	ds := &frame.Dataset{Columns: make([]*frame.Column, len(colTypes))}
	for j, ct := range colTypes {
		ds.Columns[j] = &frame.Column{
			Name: ct.Name(),
			Kind: kindForDBType(ct.DatabaseTypeName()),
		}
	}

	cells := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for j := range cells {
		ptrs[j] = &cells[j]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", qualified, err)
		}
		for j, col := range ds.Columns {
			cell, err := coerceCell(col.Kind, cells[j])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			col.Values = append(col.Values, cell)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", qualified, err)
	}
	return ds, nil
}

// coerceCell converts whatever the driver handed back into the cell
// representation the target kind expects. nil stays nil.
func coerceCell(kind frame.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case frame.Int64:
		switch x := v.(type) {
		case int64:
			return x, nil
		case []byte:
			n, err := strconv.ParseInt(string(x), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse integer %q: %w", x, err)
			}
			return n, nil
		}
	case frame.Float64:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case []byte:
			f, err := strconv.ParseFloat(string(x), 64)
			if err != nil {
				return nil, fmt.Errorf("parse float %q: %w", x, err)
			}
			return f, nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, fmt.Errorf("parse float %q: %w", x, err)
			}
			return f, nil
		}
	case frame.Boolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case []byte:
			b, err := strconv.ParseBool(string(x))
			if err != nil {
				return nil, fmt.Errorf("parse boolean %q: %w", x, err)
			}
			return b, nil
		}
	case frame.String:
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			return string(x), nil
		}
	default: // Object
		switch x := v.(type) {
		case time.Time:
			return x.Format("2006-01-02 15:04:05"), nil
		case []byte:
			return string(x), nil
		default:
			return x, nil
		}
	}
	return nil, fmt.Errorf("unexpected %T for kind %s", v, kind)
}
