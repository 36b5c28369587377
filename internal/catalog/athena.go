package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"

	"synth-pump/internal/frame"
)

// AthenaAPI is the subset of the Athena client the reader needs.
type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// LocationResolver is what the reader needs from the catalog side.
type LocationResolver interface {
	TableLocation(ctx context.Context, database, table string) (string, error)
}

// Reader materializes a full catalog table through an Athena query.
type Reader struct {
	client   AthenaAPI
	resolver LocationResolver
	poll     time.Duration
}

func NewReader(client AthenaAPI, resolver LocationResolver) *Reader {
	return &Reader{client: client, resolver: resolver, poll: time.Second}
}

func NewReaderFromConfig(cfg aws.Config, resolver LocationResolver) *Reader {
	return NewReader(athena.NewFromConfig(cfg), resolver)
}

// ReadTable runs SELECT * over the table, staging results next to the
// table's own location, and returns the full result set with raw logical
// column kinds. Callers normalize before model fitting.
func (r *Reader) ReadTable(ctx context.Context, database, table string) (*frame.Dataset, error) {
	location, err := r.resolver.TableLocation(ctx, database, table)
	if err != nil {
		return nil, err
	}

	start, err := r.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(fmt.Sprintf("SELECT * FROM %q", table)),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(StagingLocation(location)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start query on %s.%s: %w", database, table, err)
	}
	id := start.QueryExecutionId

	if err := r.waitForQuery(ctx, id); err != nil {
		return nil, err
	}

	var meta []athenatypes.ColumnInfo
	var rows []athenatypes.Row
	var next *string
	first := true
	for {
		out, err := r.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: id,
			NextToken:        next,
		})
		if err != nil {
			return nil, fmt.Errorf("get query results: %w", err)
		}
		if out.ResultSet != nil {
			page := out.ResultSet.Rows
			if first {
				if out.ResultSet.ResultSetMetadata != nil {
					meta = out.ResultSet.ResultSetMetadata.ColumnInfo
				}
				// first row of the first page repeats the column names
				if len(page) > 0 {
					page = page[1:]
				}
				first = false
			}
			rows = append(rows, page...)
		}
		if out.NextToken == nil {
			break
		}
		next = out.NextToken
	}

	return datasetFromResults(meta, rows)
}

func (r *Reader) waitForQuery(ctx context.Context, id *string) error {
	for {
		out, err := r.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: id,
		})
		if err != nil {
			return fmt.Errorf("get query execution: %w", err)
		}
		state := out.QueryExecution.Status.State
		switch state {
		case athenatypes.QueryExecutionStateSucceeded:
			return nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			return fmt.Errorf("query %s: %s", state, aws.ToString(out.QueryExecution.Status.StateChangeReason))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.poll):
		}
	}
}

// kindForAthenaType maps an Athena/Presto column type to the raw logical
// kind the normalization step expects.
func kindForAthenaType(t string) frame.Kind {
	switch t {
	case "varchar", "char", "string":
		return frame.String
	case "tinyint", "smallint", "integer", "int", "bigint":
		return frame.Int64
	case "real", "float", "double", "decimal":
		return frame.Float64
	case "boolean":
		return frame.Boolean
	default: // timestamp, date, json, ...
		return frame.Object
	}
}

// datasetFromResults turns Athena's stringly-typed result rows into a
// dataset with raw logical kinds. A missing VarCharValue is a null cell.
func datasetFromResults(meta []athenatypes.ColumnInfo, rows []athenatypes.Row) (*frame.Dataset, error) {
	ds := &frame.Dataset{Columns: make([]*frame.Column, len(meta))}
	for j, info := range meta {
		ds.Columns[j] = &frame.Column{
			Name:   aws.ToString(info.Name),
			Kind:   kindForAthenaType(aws.ToString(info.Type)),
			Values: make([]any, 0, len(rows)),
		}
	}

	for i, row := range rows {
		if len(row.Data) != len(meta) {
			return nil, fmt.Errorf("result row %d has %d cells, expected %d", i, len(row.Data), len(meta))
		}
		for j, datum := range row.Data {
			col := ds.Columns[j]
			if datum.VarCharValue == nil {
				col.Values = append(col.Values, nil)
				continue
			}
			raw := aws.ToString(datum.VarCharValue)
			cell, err := parseCell(col.Kind, raw)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", col.Name, i, err)
			}
			col.Values = append(col.Values, cell)
		}
	}
	return ds, nil
}

func parseCell(k frame.Kind, raw string) (any, error) {
	switch k {
	case frame.Int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse integer %q: %w", raw, err)
		}
		return v, nil
	case frame.Float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", raw, err)
		}
		return v, nil
	case frame.Boolean:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse boolean %q: %w", raw, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}
