package catalog

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synth-pump/internal/frame"
)

type fakeGlue struct {
	location  string
	createErr error
	created   []*glue.CreateTableInput
	updated   []*glue.UpdateTableInput
	pages     []*glue.GetTablesOutput
	page      int
}

func (f *fakeGlue) GetTable(_ context.Context, in *glue.GetTableInput, _ ...func(*glue.Options)) (*glue.GetTableOutput, error) {
	return &glue.GetTableOutput{Table: &gluetypes.Table{
		Name:              in.Name,
		StorageDescriptor: &gluetypes.StorageDescriptor{Location: aws.String(f.location)},
	}}, nil
}

func (f *fakeGlue) GetTables(_ context.Context, _ *glue.GetTablesInput, _ ...func(*glue.Options)) (*glue.GetTablesOutput, error) {
	out := f.pages[f.page]
	if f.page < len(f.pages)-1 {
		f.page++
	}
	return out, nil
}

func (f *fakeGlue) CreateTable(_ context.Context, in *glue.CreateTableInput, _ ...func(*glue.Options)) (*glue.CreateTableOutput, error) {
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &glue.CreateTableOutput{}, nil
}

func (f *fakeGlue) UpdateTable(_ context.Context, in *glue.UpdateTableInput, _ ...func(*glue.Options)) (*glue.UpdateTableOutput, error) {
	f.updated = append(f.updated, in)
	return &glue.UpdateTableOutput{}, nil
}

func normalizedSet() *frame.Dataset {
	return &frame.Dataset{Columns: []*frame.Column{
		{Name: "id", Kind: frame.Int, Values: []any{int64(1)}},
		{Name: "price", Kind: frame.Float, Values: []any{2.5}},
		{Name: "active", Kind: frame.Bool, Values: []any{true}},
		{Name: "note", Kind: frame.Object, Values: []any{"x"}},
	}}
}

func TestTableLocation(t *testing.T) {
	r := NewResolver(&fakeGlue{location: "s3://lake/sales/orders/"})
	loc, err := r.TableLocation(context.Background(), "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "s3://lake/sales/orders/", loc)
}

func TestRegisterCreatesParquetTable(t *testing.T) {
	fake := &fakeGlue{}
	r := NewResolver(fake)

	err := r.Register(context.Background(), normalizedSet(),
		"sales", "orders_synthetic", "s3://lake/sales/orders_synthetic", "Synthetic data for orders")
	require.NoError(t, err)

	require.Len(t, fake.created, 1)
	in := fake.created[0].TableInput
	assert.Equal(t, "orders_synthetic", aws.ToString(in.Name))
	assert.Equal(t, "EXTERNAL_TABLE", aws.ToString(in.TableType))
	assert.Equal(t, "parquet", in.Parameters["classification"])
	assert.Equal(t, "s3://lake/sales/orders_synthetic", aws.ToString(in.StorageDescriptor.Location))

	types := map[string]string{}
	for _, c := range in.StorageDescriptor.Columns {
		types[aws.ToString(c.Name)] = aws.ToString(c.Type)
	}
	assert.Equal(t, map[string]string{
		"id": "bigint", "price": "double", "active": "boolean", "note": "string",
	}, types)
}

func TestRegisterFallsBackToUpdate(t *testing.T) {
	fake := &fakeGlue{createErr: &gluetypes.AlreadyExistsException{}}
	r := NewResolver(fake)

	err := r.Register(context.Background(), normalizedSet(),
		"sales", "orders_synthetic", "s3://lake/x", "desc")
	require.NoError(t, err)
	assert.Len(t, fake.created, 1)
	assert.Len(t, fake.updated, 1)
}

func TestListTablesPaginates(t *testing.T) {
	fake := &fakeGlue{pages: []*glue.GetTablesOutput{
		{
			TableList: []gluetypes.Table{{
				Name:              aws.String("orders"),
				StorageDescriptor: &gluetypes.StorageDescriptor{Location: aws.String("s3://lake/orders")},
			}},
			NextToken: aws.String("t"),
		},
		{
			TableList: []gluetypes.Table{{Name: aws.String("items")}},
		},
	}}
	r := NewResolver(fake)

	tables, err := r.ListTables(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, []TableInfo{
		{Name: "orders", Location: "s3://lake/orders"},
		{Name: "items"},
	}, tables)
}
