package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"synth-pump/internal/frame"
)

// objectName is the single data file written per dataset. A fixed name
// gives the overwrite semantics re-runs rely on.
const objectName = "part-00000.parquet"

// Uploader is the subset of the S3 transfer manager the writer needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Registrar records the written dataset in the catalog.
type Registrar interface {
	Register(ctx context.Context, ds *frame.Dataset, database, table, location, description string) error
}

// Writer persists a dataset as a parquet table. s3:// locations are
// uploaded and registered in the catalog; plain paths are written to local
// disk without registration (source mode).
type Writer struct {
	uploader  Uploader
	registrar Registrar
}

func NewWriter(uploader Uploader, registrar Registrar) *Writer {
	return &Writer{uploader: uploader, registrar: registrar}
}

func NewWriterFromConfig(cfg aws.Config, registrar Registrar) *Writer {
	return NewWriter(manager.NewUploader(s3.NewFromConfig(cfg)), registrar)
}

// WriteTable encodes the dataset and persists it at the given location,
// registering the table under the given name.
func (w *Writer) WriteTable(ctx context.Context, ds *frame.Dataset, database, table, location, description string) error {
	data, err := encodeParquet(ds, table)
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", database, table, err)
	}

	bucket, prefix, ok := SplitS3(location)
	if !ok {
		return w.writeLocal(location, data)
	}

	key := objectName
	if prefix != "" {
		key = prefix + "/" + objectName
	}
	_, err = w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", table, bucket, key, err)
	}

	return w.registrar.Register(ctx, ds, database, table, location, description)
}

func (w *Writer) writeLocal(dir string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, objectName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
