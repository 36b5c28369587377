package source

import (
	"fmt"
	"strings"

	"synth-pump/internal/frame"
)

// Dialect abstracts the per-driver SQL differences the reader cares about:
// identifier quoting and full-table selection.
type Dialect interface {
	QuoteIdent(name string) string
	SelectAllQuery(qualified string) string
}

// GetDialect returns the dialect for a driver name.
func GetDialect(driver string) Dialect {
	switch driver {
	case "postgres":
		return &PostgresDialect{}
	case "sqlserver", "mssql":
		return &MSSQLDialect{}
	case "oracle":
		return &OracleDialect{}
	default: // mysql
		return &MysqlDialect{}
	}
}

var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)

type MysqlDialect struct{}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *MysqlDialect) SelectAllQuery(qualified string) string {
	return fmt.Sprintf("SELECT * FROM %s", qualified)
}

type PostgresDialect struct{}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *PostgresDialect) SelectAllQuery(qualified string) string {
	return fmt.Sprintf("SELECT * FROM %s", qualified)
}

type MSSQLDialect struct{}

func (d *MSSQLDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d *MSSQLDialect) SelectAllQuery(qualified string) string {
	return fmt.Sprintf("SELECT * FROM %s", qualified)
}

type OracleDialect struct{}

func (d *OracleDialect) QuoteIdent(name string) string {
	return `"` + strings.ToUpper(strings.ReplaceAll(name, `"`, `""`)) + `"`
}

func (d *OracleDialect) SelectAllQuery(qualified string) string {
	return fmt.Sprintf("SELECT * FROM %s", qualified)
}

// kindForDBType maps a driver-reported column type (DatabaseTypeName,
// upper case) to the raw logical kind the normalization step expects.
func kindForDBType(dbType string) frame.Kind {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "BOOL"), t == "BIT":
		return frame.Boolean
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"),
		strings.Contains(t, "CLOB"), strings.Contains(t, "ENUM"),
		strings.Contains(t, "UUID"), strings.Contains(t, "JSON"):
		return frame.String
	case strings.Contains(t, "INT"), strings.Contains(t, "SERIAL"):
		return frame.Int64
	case strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"),
		strings.Contains(t, "REAL"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMBER"),
		strings.Contains(t, "MONEY"):
		return frame.Float64
	default: // DATE, TIMESTAMP, BLOB, ...
		return frame.Object
	}
}
