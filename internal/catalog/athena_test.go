package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synth-pump/internal/frame"
)

func col(name, typ string) athenatypes.ColumnInfo {
	return athenatypes.ColumnInfo{Name: aws.String(name), Type: aws.String(typ)}
}

func row(cells ...*string) athenatypes.Row {
	data := make([]athenatypes.Datum, len(cells))
	for i, c := range cells {
		data[i] = athenatypes.Datum{VarCharValue: c}
	}
	return athenatypes.Row{Data: data}
}

func str(s string) *string { return aws.String(s) }

func TestDatasetFromResults(t *testing.T) {
	meta := []athenatypes.ColumnInfo{
		col("name", "varchar"),
		col("amount", "bigint"),
		col("price", "double"),
		col("active", "boolean"),
		col("created", "timestamp"),
	}
	rows := []athenatypes.Row{
		row(str("alice"), str("1"), str("9.5"), str("true"), str("2024-01-01 00:00:00")),
		row(nil, str("2"), nil, nil, str("2024-01-02 00:00:00")),
	}

	ds, err := datasetFromResults(meta, rows)
	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	assert.Equal(t, 2, ds.NumRows())

	assert.Equal(t, frame.String, ds.Column("name").Kind)
	assert.Equal(t, frame.Int64, ds.Column("amount").Kind)
	assert.Equal(t, frame.Float64, ds.Column("price").Kind)
	assert.Equal(t, frame.Boolean, ds.Column("active").Kind)
	assert.Equal(t, frame.Object, ds.Column("created").Kind)

	assert.Equal(t, []any{"alice", nil}, ds.Column("name").Values)
	assert.Equal(t, []any{int64(1), int64(2)}, ds.Column("amount").Values)
	assert.Equal(t, []any{9.5, nil}, ds.Column("price").Values)
	assert.Equal(t, []any{true, nil}, ds.Column("active").Values)
}

func TestDatasetFromResultsBadCell(t *testing.T) {
	meta := []athenatypes.ColumnInfo{col("amount", "bigint")}
	_, err := datasetFromResults(meta, []athenatypes.Row{row(str("not-a-number"))})
	assert.Error(t, err)
}

func TestDatasetFromResultsRaggedRow(t *testing.T) {
	meta := []athenatypes.ColumnInfo{col("a", "varchar"), col("b", "varchar")}
	_, err := datasetFromResults(meta, []athenatypes.Row{row(str("only-one"))})
	assert.Error(t, err)
}

type fakeAthena struct {
	startIn *athena.StartQueryExecutionInput
	states  []athenatypes.QueryExecutionState
	pages   []*athena.GetQueryResultsOutput
	polls   int
	page    int
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.startIn = in
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("qid-1")}, nil
}

func (f *fakeAthena) GetQueryExecution(_ context.Context, _ *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	state := f.states[f.polls]
	if f.polls < len(f.states)-1 {
		f.polls++
	}
	return &athena.GetQueryExecutionOutput{
		QueryExecution: &athenatypes.QueryExecution{
			Status: &athenatypes.QueryExecutionStatus{
				State:             state,
				StateChangeReason: aws.String("boom"),
			},
		},
	}, nil
}

func (f *fakeAthena) GetQueryResults(_ context.Context, _ *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	out := f.pages[f.page]
	if f.page < len(f.pages)-1 {
		f.page++
	}
	return out, nil
}

type fixedResolver struct{ location string }

func (r fixedResolver) TableLocation(context.Context, string, string) (string, error) {
	return r.location, nil
}

func TestReadTableStagesAndSkipsHeader(t *testing.T) {
	meta := &athenatypes.ResultSetMetadata{ColumnInfo: []athenatypes.ColumnInfo{col("id", "bigint")}}
	fake := &fakeAthena{
		states: []athenatypes.QueryExecutionState{
			athenatypes.QueryExecutionStateRunning,
			athenatypes.QueryExecutionStateSucceeded,
		},
		pages: []*athena.GetQueryResultsOutput{
			{
				ResultSet: &athenatypes.ResultSet{
					ResultSetMetadata: meta,
					Rows:              []athenatypes.Row{row(str("id")), row(str("1"))},
				},
				NextToken: aws.String("t1"),
			},
			{
				ResultSet: &athenatypes.ResultSet{Rows: []athenatypes.Row{row(str("2"))}},
			},
		},
	}

	r := NewReader(fake, fixedResolver{location: "s3://lake/sales/orders/"})
	r.poll = time.Millisecond

	ds, err := r.ReadTable(context.Background(), "sales", "orders")
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "orders"`, aws.ToString(fake.startIn.QueryString))
	assert.Equal(t, "sales", aws.ToString(fake.startIn.QueryExecutionContext.Database))
	assert.Equal(t, "s3://lake/sales/orders_athena", aws.ToString(fake.startIn.ResultConfiguration.OutputLocation))

	require.Equal(t, 2, ds.NumRows())
	assert.Equal(t, []any{int64(1), int64(2)}, ds.Column("id").Values)
}

func TestReadTableQueryFailure(t *testing.T) {
	fake := &fakeAthena{
		states: []athenatypes.QueryExecutionState{athenatypes.QueryExecutionStateFailed},
	}
	r := NewReader(fake, fixedResolver{location: "s3://lake/t"})
	r.poll = time.Millisecond

	_, err := r.ReadTable(context.Background(), "db", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
