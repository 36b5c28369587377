// Package catalog talks to the data catalog and its backing storage: it
// resolves table locations, runs full-table queries, and writes synthetic
// datasets back as new parquet tables.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"synth-pump/internal/frame"
)

// GlueAPI is the subset of the Glue client the resolver needs.
type GlueAPI interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	GetTables(ctx context.Context, params *glue.GetTablesInput, optFns ...func(*glue.Options)) (*glue.GetTablesOutput, error)
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
	UpdateTable(ctx context.Context, params *glue.UpdateTableInput, optFns ...func(*glue.Options)) (*glue.UpdateTableOutput, error)
}

// Resolver looks up and registers catalog tables.
type Resolver struct {
	client GlueAPI
}

func NewResolver(client GlueAPI) *Resolver {
	return &Resolver{client: client}
}

func NewResolverFromConfig(cfg aws.Config) *Resolver {
	return NewResolver(glue.NewFromConfig(cfg))
}

// TableLocation returns the storage path backing a catalog table.
func (r *Resolver) TableLocation(ctx context.Context, database, table string) (string, error) {
	out, err := r.client.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return "", fmt.Errorf("get table %s.%s: %w", database, table, err)
	}
	if out.Table == nil || out.Table.StorageDescriptor == nil || out.Table.StorageDescriptor.Location == nil {
		return "", fmt.Errorf("table %s.%s has no storage location", database, table)
	}
	return aws.ToString(out.Table.StorageDescriptor.Location), nil
}

// TableInfo is one catalog entry for listings.
type TableInfo struct {
	Name     string
	Location string
}

// ListTables returns every table in the database with its storage path.
func (r *Resolver) ListTables(ctx context.Context, database string) ([]TableInfo, error) {
	var tables []TableInfo
	var next *string
	for {
		out, err := r.client.GetTables(ctx, &glue.GetTablesInput{
			DatabaseName: aws.String(database),
			NextToken:    next,
		})
		if err != nil {
			return nil, fmt.Errorf("list tables in %s: %w", database, err)
		}
		for _, t := range out.TableList {
			info := TableInfo{Name: aws.ToString(t.Name)}
			if t.StorageDescriptor != nil {
				info.Location = aws.ToString(t.StorageDescriptor.Location)
			}
			tables = append(tables, info)
		}
		if out.NextToken == nil {
			break
		}
		next = out.NextToken
	}
	return tables, nil
}

const (
	parquetInputFormat  = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetInputFormat"
	parquetOutputFormat = "org.apache.hadoop.hive.ql.io.parquet.MapredParquetOutputFormat"
	parquetSerde        = "org.apache.hadoop.hive.ql.io.parquet.serde.ParquetHiveSerDe"
)

// Register creates the catalog entry for a parquet table at the given
// location, or updates it when it already exists (overwrite semantics).
func (r *Resolver) Register(ctx context.Context, ds *frame.Dataset, database, table, location, description string) error {
	input := &gluetypes.TableInput{
		Name:        aws.String(table),
		Description: aws.String(description),
		TableType:   aws.String("EXTERNAL_TABLE"),
		Parameters:  map[string]string{"classification": "parquet"},
		StorageDescriptor: &gluetypes.StorageDescriptor{
			Location:     aws.String(location),
			Columns:      glueColumns(ds),
			InputFormat:  aws.String(parquetInputFormat),
			OutputFormat: aws.String(parquetOutputFormat),
			SerdeInfo: &gluetypes.SerDeInfo{
				SerializationLibrary: aws.String(parquetSerde),
			},
		},
	}

	_, err := r.client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(database),
		TableInput:   input,
	})
	var exists *gluetypes.AlreadyExistsException
	if errors.As(err, &exists) {
		_, err = r.client.UpdateTable(ctx, &glue.UpdateTableInput{
			DatabaseName: aws.String(database),
			TableInput:   input,
		})
	}
	if err != nil {
		return fmt.Errorf("register table %s.%s: %w", database, table, err)
	}
	return nil
}

func glueColumns(ds *frame.Dataset) []gluetypes.Column {
	cols := make([]gluetypes.Column, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = gluetypes.Column{
			Name: aws.String(c.Name),
			Type: aws.String(hiveType(c.Kind)),
		}
	}
	return cols
}

func hiveType(k frame.Kind) string {
	switch k {
	case frame.Float:
		return "double"
	case frame.Int:
		return "bigint"
	case frame.Bool:
		return "boolean"
	default:
		return "string"
	}
}
