// Package triage drives a classification run: it batches scanned files,
// invokes the active strategy per batch, degrades to the fallback strategy
// on failure and merges the partial results.
package triage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/internal/strategy"
)

// Run-level failures. Anything else degrades per batch instead of
// aborting the run.
var (
	ErrNoFiles     = errors.New("no files to triage")
	ErrUnavailable = errors.New("strategy unavailable")
)

// ProgressFunc receives one call per completed batch, in ascending batch
// order, before the next batch starts. batch is 1-based. result holds the
// batch's contribution, empty when the batch failed outright.
type ProgressFunc func(batch, totalBatches int, result *strategy.Result)

// Coordinator orchestrates one triage run
type Coordinator struct {
	primary   strategy.Strategy
	fallback  strategy.Strategy
	batchSize int
	logger    *log.Logger
}

// New creates a coordinator. fallback may be nil to disable degradation;
// passing the same strategy twice is allowed and treated as no fallback.
func New(primary, fallback strategy.Strategy, batchSize int, logger *log.Logger) *Coordinator {
	if batchSize < 1 {
		batchSize = 10
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if fallback != nil && primary.Name() == fallback.Name() {
		fallback = nil
	}

	return &Coordinator{
		primary:   primary,
		fallback:  fallback,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run analyzes all files in bounded batches and returns the merged result.
// Batches are formed in input order. A failing batch contributes nothing
// but never aborts the run; the returned result may therefore hold fewer
// suggestions than there were files.
func (c *Coordinator) Run(ctx context.Context, files []scanner.FileRecord, cb ProgressFunc) (*strategy.Result, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	active := c.primary
	if !active.Available() {
		if c.fallback == nil {
			return nil, fmt.Errorf("%w: %s (no fallback configured)", ErrUnavailable, active.Name())
		}
		c.logger.Printf("strategy %s unavailable, degrading to %s for this run", active.Name(), c.fallback.Name())
		active = c.fallback
	}

	totalBatches := (len(files) + c.batchSize - 1) / c.batchSize
	merged := strategy.EmptyResult()

	for i := 0; i < totalBatches; i++ {
		end := (i + 1) * c.batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i*c.batchSize : end]

		result, next := c.analyzeBatch(ctx, active, batch, merged.Categories.Labels())
		active = next

		merged.Suggestions = append(merged.Suggestions, result.Suggestions...)
		merged.Categories.Merge(result.Categories)

		if cb != nil {
			cb(i+1, totalBatches, result)
		}
	}

	return merged, nil
}

// analyzeBatch runs one batch through the active strategy, falling back
// once on failure. It returns the batch result (empty on double failure)
// and the strategy to keep using: an authentication failure is terminal,
// so the fallback takes over for the remainder of the run.
func (c *Coordinator) analyzeBatch(ctx context.Context, active strategy.Strategy, batch []scanner.FileRecord, existing []string) (*strategy.Result, strategy.Strategy) {
	result, err := active.Analyze(ctx, batch, existing)
	if err == nil {
		return result, active
	}

	c.logger.Printf("strategy %s failed on batch of %d: %v", active.Name(), len(batch), err)

	if c.fallback == nil || active.Name() == c.fallback.Name() {
		return strategy.EmptyResult(), active
	}

	c.logger.Printf("degrading batch to fallback strategy %s", c.fallback.Name())
	result, ferr := c.fallback.Analyze(ctx, batch, existing)
	if ferr != nil {
		c.logger.Printf("fallback strategy %s also failed: %v", c.fallback.Name(), ferr)
		result = strategy.EmptyResult()
	}

	if strategy.IsAuthError(err) {
		c.logger.Printf("authentication rejected for %s, using %s for the rest of the run", active.Name(), c.fallback.Name())
		return result, c.fallback
	}

	return result, active
}
