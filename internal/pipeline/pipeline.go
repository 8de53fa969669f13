// Package pipeline runs lookups in batches: requests are extracted from a
// source, resolved concurrently and written to a sink in input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Request is one query read from a batch source.
type Request struct {
	Line  int
	Query string
}

// Result is the outcome of one Request. Error and ErrorKind are set instead of
// Result when the lookup failed.
type Result struct {
	Line      int    `json:"line"`
	Query     string `json:"query"`
	Result    any    `json:"result"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// BatchExtractor reads up to batchSize requests from the source. It returns
// io.EOF, possibly together with a final non-empty batch, once the source is
// exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]Request, error)
}

// Transformer resolves a single request.
type Transformer interface {
	Transform(ctx context.Context, req Request) (any, error)
}

// BatchLoader writes a batch of results to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, results []Result) error
}

// Summary counts the requests a Run has processed.
type Summary struct {
	Processed int
	Failed    int
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	batchSize   int
	workers     int
}

// New creates a Pipeline. workers bounds the lookups in flight within a batch.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, batchSize, workers int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		batchSize:   max(batchSize, 1),
		workers:     max(workers, 1),
	}
}

// Run processes batches until the source is exhausted or ctx is cancelled.
// Failed lookups are written as error results and counted, they do not stop
// the run; extract and load failures do.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.logger.Info("batch started", "batch_size", p.batchSize, "workers", p.workers)

	var sum Summary
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		done := errors.Is(err, io.EOF)
		if err != nil && !done {
			return sum, fmt.Errorf("extract batch: %w", err)
		}

		if len(batch) > 0 {
			results := p.transformBatch(ctx, batch)
			if err := p.loader.LoadBatch(ctx, results); err != nil {
				return sum, fmt.Errorf("load batch: %w", err)
			}
			sum.Processed += len(results)
			for _, r := range results {
				if r.Error != "" {
					sum.Failed++
				}
			}
		}

		if done {
			p.logger.Info("batch finished", "processed", sum.Processed, "failed", sum.Failed)
			return sum, nil
		}
	}
}

// transformBatch resolves a batch with at most p.workers lookups in flight.
// Results keep the order of the batch.
func (p *Pipeline) transformBatch(ctx context.Context, batch []Request) []Result {
	results := make([]Result, len(batch))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, req := range batch {
		g.Go(func() error {
			results[i] = p.transform(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Pipeline) transform(ctx context.Context, req Request) Result {
	out, err := p.transformer.Transform(ctx, req)
	if err != nil {
		p.logger.Warn("lookup failed, recording error", "line", req.Line, "query", req.Query, "error", err)
		return Result{
			Line:      req.Line,
			Query:     req.Query,
			Error:     err.Error(),
			ErrorKind: domain.KindOf(err).String(),
		}
	}
	return Result{Line: req.Line, Query: req.Query, Result: out}
}
