// Package pipeline wires the fetch → normalize → fit → sample → save
// stages into one sequential run. Every collaborator is injected; there is
// no ambient session state.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"synth-pump/internal/catalog"
	"synth-pump/internal/frame"
)

// TableReader materializes a full source table.
type TableReader interface {
	ReadTable(ctx context.Context, database, table string) (*frame.Dataset, error)
}

// LocationResolver maps a (database, table) pair to its storage path.
type LocationResolver interface {
	TableLocation(ctx context.Context, database, table string) (string, error)
}

// Generator is the fit-then-sample contract of the generative model.
type Generator interface {
	Fit(ds *frame.Dataset) error
	Sample(n int) (*frame.Dataset, error)
}

// TableWriter persists a dataset as a new table.
type TableWriter interface {
	WriteTable(ctx context.Context, ds *frame.Dataset, database, table, location, description string) error
}

// Status reports one progress line to the log sink. A failed report aborts
// the run; there is no buffering or retry.
type Status func(ctx context.Context, message string) error

// Pipeline runs the whole synthetic-data job for one table.
type Pipeline struct {
	Reader    TableReader
	Resolver  LocationResolver
	Generator Generator
	Writer    TableWriter
	Status    Status
	Log       *zap.SugaredLogger
	Now       func() time.Time
}

func (p *Pipeline) log() *zap.SugaredLogger {
	if p.Log == nil {
		return zap.NewNop().Sugar()
	}
	return p.Log
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Run executes the stages strictly in order. The first error, including a
// failed status report, terminates the run; nothing already written is
// rolled back.
func (p *Pipeline) Run(ctx context.Context, database, table string) error {
	start := p.now()

	if err := p.Status(ctx, fmt.Sprintf("Getting table data for table: %s in database: %s...", table, database)); err != nil {
		return err
	}
	ds, err := p.Reader.ReadTable(ctx, database, table)
	if err != nil {
		return fmt.Errorf("fetch %s.%s: %w", database, table, err)
	}
	fabricated := ds.Normalize()
	if fabricated > 0 {
		p.log().Warnw("missing boolean values resolved to true",
			"table", table, "cells", fabricated)
	}
	p.log().Infow("fetched table",
		"table", table, "rows", ds.NumRows(), "columns", ds.NumCols())

	if err := p.Status(ctx, fmt.Sprintf("Generating synthetic data for table: %s in database: %s...", table, database)); err != nil {
		return err
	}
	if err := p.Status(ctx, "Training model..."); err != nil {
		return err
	}
	if err := p.Generator.Fit(ds); err != nil {
		return fmt.Errorf("fit model on %s.%s: %w", database, table, err)
	}
	if err := p.Status(ctx, "Generating synthetic data using model..."); err != nil {
		return err
	}
	synthetic, err := p.Generator.Sample(ds.NumRows())
	if err != nil {
		return fmt.Errorf("sample %d rows: %w", ds.NumRows(), err)
	}

	location, err := p.Resolver.TableLocation(ctx, database, table)
	if err != nil {
		return fmt.Errorf("resolve location of %s.%s: %w", database, table, err)
	}
	syntheticTable := catalog.SyntheticName(table)
	syntheticLocation := catalog.SyntheticLocation(location)

	if err := p.Status(ctx, fmt.Sprintf("Saving synthetic data to: %s in database: %s with table name: %s",
		syntheticLocation, database, syntheticTable)); err != nil {
		return err
	}
	description := fmt.Sprintf("Synthetic data for %s generated on %s", table, p.now().Format(time.RFC3339))
	if err := p.Writer.WriteTable(ctx, synthetic, database, syntheticTable, syntheticLocation, description); err != nil {
		return fmt.Errorf("save %s.%s: %w", database, syntheticTable, err)
	}

	p.log().Infow("pipeline finished",
		"table", table, "synthetic_table", syntheticTable, "elapsed", time.Since(start))
	return p.Status(ctx, "done")
}
