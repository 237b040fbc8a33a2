//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package etl loads the order history file into the star schema.
//
// A run resets the schema and then executes four stages in order:
// dimensions, customers, products and orders. Each stage opens its own
// connection, reads the whole source file, writes its table(s) in one
// transaction and commits. Stages only share data through committed rows,
// which later stages read back as name to ID lookups.
package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-orderbi/internal/db"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/internal/schema"
	"github.com/pgEdge/pgedge-orderbi/internal/source"
)

// Connector opens a dedicated connection for one stage.
type Connector func(ctx context.Context, purpose string) (*pgx.Conn, error)

// Pipeline runs the schema reset and the load stages.
type Pipeline struct {
	connect Connector
	src     *source.Reader
	opts    Options
}

// NewPipeline creates a pipeline loading src into the database at
// connString.
func NewPipeline(connString string, src *source.Reader, opts Options) *Pipeline {
	return NewPipelineWithConnector(func(ctx context.Context, purpose string) (*pgx.Conn, error) {
		return db.ConnectSingle(ctx, connString, purpose)
	}, src, opts)
}

// NewPipelineWithConnector creates a pipeline using a custom connector.
func NewPipelineWithConnector(connect Connector, src *source.Reader, opts Options) *Pipeline {
	return &Pipeline{connect: connect, src: src, opts: opts}
}

// Run resets the schema and runs every stage. The returned summary covers
// the stages that ran, including a failed one.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Source: p.src.Name(), StartedAt: time.Now()}

	if err := p.ResetSchema(ctx); err != nil {
		return summary, err
	}

	for _, name := range Stages {
		result, err := p.RunStage(ctx, name)
		summary.Stages = append(summary.Stages, result)
		if err != nil {
			summary.FinishedAt = time.Now()
			summary.Log()
			return summary, err
		}
	}

	summary.FinishedAt = time.Now()
	summary.Log()

	if err := p.saveSummary(ctx, summary); err != nil {
		logging.Warn().Err(err).Msg("Failed to record load summary")
	}

	return summary, nil
}

// ResetSchema drops and recreates the tables on a dedicated connection.
// The summary of the previous load goes with them.
func (p *Pipeline) ResetSchema(ctx context.Context) error {
	return p.withTx(ctx, "schema", func(tx pgx.Tx) error {
		if err := schema.Reset(ctx, tx); err != nil {
			return err
		}
		return db.DropMetadata(ctx, tx)
	})
}

// RunStage runs a single stage on its own connection and transaction.
// A missing source file is not an error: the stage writes nothing.
func (p *Pipeline) RunStage(ctx context.Context, name string) (StageResult, error) {
	result := StageResult{Stage: name}

	fn, err := stageFor(name)
	if err != nil {
		return result, err
	}

	log := logging.Component("etl")
	log.Info().Str("stage", name).Str("source", p.src.Name()).Msg("Starting stage")

	err = p.withTx(ctx, name, func(tx pgx.Tx) error {
		var stageErr error
		result, stageErr = fn(ctx, tx, p.src, p.opts)
		result.Stage = name
		return stageErr
	})

	if errors.Is(err, source.ErrSourceNotFound) {
		log.Warn().
			Str("stage", name).
			Str("source", p.src.Name()).
			Msg("Data file not found, stage skipped")
		return StageResult{Stage: name, SourceMissing: true}, nil
	}
	if err != nil {
		return result, fmt.Errorf("stage %s failed: %w", name, err)
	}

	ev := log.Info().
		Str("stage", name).
		Int("records", result.Records).
		Int("inserted", result.Inserted()).
		Int("already_present", result.AlreadyPresent()).
		Int("skipped_records", result.SkippedRecords).
		Int("skipped_items", result.SkippedItems)
	if result.Truncated > 0 {
		ev = ev.Int("truncated", result.Truncated)
	}
	if result.Malformed > 0 {
		ev = ev.Int("malformed", result.Malformed)
	}
	ev.Msg("Stage complete")

	return result, nil
}

func (p *Pipeline) withTx(ctx context.Context, purpose string, fn func(tx pgx.Tx) error) error {
	conn, err := p.connect(ctx, purpose)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (p *Pipeline) saveSummary(ctx context.Context, summary *Summary) error {
	return p.withTx(ctx, "summary", func(tx pgx.Tx) error {
		return db.SaveMetadata(ctx, tx, summary.Metadata())
	})
}
