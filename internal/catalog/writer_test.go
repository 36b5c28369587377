package catalog

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synth-pump/internal/frame"
)

type fakeUploader struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &manager.UploadOutput{}, nil
}

type fakeRegistrar struct {
	database, table, location, description string
	calls                                  int
}

func (f *fakeRegistrar) Register(_ context.Context, _ *frame.Dataset, database, table, location, description string) error {
	f.database, f.table, f.location, f.description = database, table, location, description
	f.calls++
	return nil
}

func TestWriteTableUploadsAndRegisters(t *testing.T) {
	up := &fakeUploader{}
	reg := &fakeRegistrar{}
	w := NewWriter(up, reg)

	err := w.WriteTable(context.Background(), normalizedSet(),
		"sales", "orders_synthetic", "s3://lake/sales/orders_synthetic", "Synthetic data for orders")
	require.NoError(t, err)

	require.Len(t, up.inputs, 1)
	assert.Equal(t, "lake", aws.ToString(up.inputs[0].Bucket))
	assert.Equal(t, "sales/orders_synthetic/part-00000.parquet", aws.ToString(up.inputs[0].Key))
	assert.True(t, bytes.HasPrefix(up.bodies[0], []byte("PAR1")), "payload is not a parquet file")

	assert.Equal(t, 1, reg.calls)
	assert.Equal(t, "sales", reg.database)
	assert.Equal(t, "orders_synthetic", reg.table)
	assert.Equal(t, "s3://lake/sales/orders_synthetic", reg.location)
	assert.Equal(t, "Synthetic data for orders", reg.description)
}

func TestWriteTableLocalSkipsCatalog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "orders_synthetic")
	reg := &fakeRegistrar{}
	w := NewWriter(&fakeUploader{}, reg)

	err := w.WriteTable(context.Background(), normalizedSet(),
		"sales", "orders_synthetic", dir, "desc")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "part-00000.parquet"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PAR1")))
	assert.Zero(t, reg.calls, "local mode must not touch the catalog")
}
