package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Run executes the job to completion. With a [Checkpointer] the run is a
// sequence of epochs, each followed by a checkpoint save; otherwise it is a
// single pass over the source processed in chunks.
func (p *Pipeline[S, T, C]) Run(ctx context.Context) error {
	stats := &Stats{}

	if p.starter != nil {
		ctx = p.starter.Start(ctx)
	}

	cursor, err := p.loadCheckpoint(ctx, stats)
	runErr := err
	if runErr == nil {
		if p.checkpoint != nil {
			runErr = p.runEpochs(ctx, cursor, stats)
		} else {
			runErr = p.runOnce(ctx, stats)
		}
	}

	if p.stopper != nil {
		p.stopper.Stop(ctx, stats, runErr)
	}
	return runErr
}

// loadCheckpoint restores the saved cursor and stats, if any.
func (p *Pipeline[S, T, C]) loadCheckpoint(ctx context.Context, stats *Stats) (*C, error) {
	if p.checkpoint == nil {
		return nil, nil //nolint:nilnil // nil cursor means start from the beginning
	}
	cursor, saved, err := p.checkpoint.LoadCheckpoint(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if saved != nil {
		stats.restore(saved)
	}
	return cursor, nil
}

// runEpochs loops epochs until the source is exhausted, saving the cursor
// after each one. A cancelled context ends the loop between epochs, after
// the last completed epoch's checkpoint has been saved, so restart cost is
// bounded by one epoch.
func (p *Pipeline[S, T, C]) runEpochs(ctx context.Context, cursor *C, stats *Stats) error {
	for {
		last, err := p.runEpoch(ctx, cursor, stats)
		if err != nil {
			return err
		}
		if last == nil {
			return ctx.Err()
		}
		if err := p.checkpoint.SaveCheckpoint(ctx, *last, stats); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cursor = last
	}
}

// runEpoch extracts up to one epoch of records, processes them, and returns
// the cursor to persist. A nil cursor means nothing was extracted: the
// source is exhausted (or the context was cancelled before any progress).
//
// The cursor advances over every extracted record, filtered ones included,
// so deterministic exclusions are not re-extracted on resume. Records whose
// transform later fails are skipped permanently by the same rule.
func (p *Pipeline[S, T, C]) runEpoch(ctx context.Context, cursor *C, stats *Stats) (*C, error) {
	size := p.resolveEpochSize()
	records := make([]S, 0, size)
	var last *C

	for record, err := range p.job.Extract(ctx, cursor) {
		if ctx.Err() != nil {
			break // process what we have, checkpoint, then stop
		}
		if err != nil {
			stats.incErrors(1)
			if p.errHandler != nil && p.errHandler.OnError(ctx, StageExtract, err) == ActionSkip {
				continue
			}
			return nil, fmt.Errorf("extract: %w", err)
		}

		stats.incExtracted(1)
		cur := p.checkpoint.Cursor(record)
		last = &cur

		included := p.filter == nil || p.filter.Include(record)
		if included {
			records = append(records, record)
		} else {
			stats.incFiltered(1)
		}

		if p.barrier != nil && p.barrier.Barrier(record) {
			break
		}
		if len(records) >= size {
			break
		}
	}

	if last == nil {
		return nil, nil //nolint:nilnil // nil cursor signals completion, not an error
	}
	if len(records) > 0 {
		if err := p.processRecords(ctx, records, stats); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// runOnce performs a single pass over the source with no checkpointing,
// processing records in chunks so memory stays bounded by the epoch size.
func (p *Pipeline[S, T, C]) runOnce(ctx context.Context, stats *Stats) error {
	size := p.resolveEpochSize()
	buf := make([]S, 0, size)

	for record, err := range p.job.Extract(ctx, nil) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			stats.incErrors(1)
			if p.errHandler != nil && p.errHandler.OnError(ctx, StageExtract, err) == ActionSkip {
				continue
			}
			return fmt.Errorf("extract: %w", err)
		}
		stats.incExtracted(1)

		if p.filter != nil && !p.filter.Include(record) {
			stats.incFiltered(1)
			continue
		}

		buf = append(buf, record)
		if len(buf) >= size {
			if err := p.processRecords(ctx, buf, stats); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}

	if len(buf) > 0 {
		return p.processRecords(ctx, buf, stats)
	}
	return nil
}

// processRecords transforms one collected chunk and loads the results.
func (p *Pipeline[S, T, C]) processRecords(ctx context.Context, records []S, stats *Stats) error {
	outputs, err := p.transformRecords(ctx, records, stats)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		return nil
	}
	return p.loadBatches(ctx, chunk(outputs, p.resolveLoadBatchSize()), stats)
}

// transformRecords applies the transform stage. With a single worker the
// output order matches the input order; with more workers it does not.
func (p *Pipeline[S, T, C]) transformRecords(ctx context.Context, records []S, stats *Stats) ([]T, error) {
	workers := p.resolveTransformWorkers()
	if workers <= 1 {
		out := make([]T, 0, len(records))
		for _, record := range records {
			results, err := p.transform(ctx, record)
			if err != nil {
				stats.incErrors(1)
				if p.errHandler != nil && p.errHandler.OnError(ctx, StageTransform, err) == ActionSkip {
					continue
				}
				return nil, fmt.Errorf("transform: %w", err)
			}
			stats.incTransformed(1)
			out = append(out, results...)
		}
		return out, nil
	}
	return p.transformConcurrent(ctx, records, stats, workers)
}

// transformConcurrent fans records out to a worker group.
func (p *Pipeline[S, T, C]) transformConcurrent(ctx context.Context, records []S, stats *Stats, workers int) ([]T, error) {
	group, gctx := errgroup.WithContext(ctx)

	recordCh := make(chan S, len(records))
	for _, r := range records {
		recordCh <- r
	}
	close(recordCh)

	resultCh := make(chan []T, len(records))

	for range workers {
		group.Go(func() error {
			for record := range recordCh {
				if err := gctx.Err(); err != nil {
					return err
				}
				results, err := p.transform(gctx, record)
				if err != nil {
					stats.incErrors(1)
					if p.errHandler != nil && p.errHandler.OnError(gctx, StageTransform, err) == ActionSkip {
						continue
					}
					return fmt.Errorf("transform: %w", err)
				}
				stats.incTransformed(1)
				if len(results) > 0 {
					resultCh <- results
				}
			}
			return nil
		})
	}

	err := group.Wait()
	close(resultCh)
	if err != nil {
		return nil, err
	}

	var all []T
	for results := range resultCh {
		all = append(all, results...)
	}
	return all, nil
}

// loadBatches runs the load stage, reporting progress whenever the loaded
// count crosses a report-interval boundary.
func (p *Pipeline[S, T, C]) loadBatches(ctx context.Context, batches [][]T, stats *Stats) error {
	reportEvery := int64(p.resolveReportInterval())

	loadOne := func(ctx context.Context, batch []T) error {
		if err := p.job.Load(ctx, batch); err != nil {
			stats.incErrors(1)
			if p.errHandler != nil && p.errHandler.OnError(ctx, StageLoad, err) == ActionSkip {
				return nil
			}
			return fmt.Errorf("load: %w", err)
		}

		// The atomic add returns the new total, giving both the previous
		// and current values without a separate read.
		newLoaded := stats.incLoaded(int64(len(batch)))
		prevLoaded := newLoaded - int64(len(batch))
		if p.progress != nil && newLoaded/reportEvery > prevLoaded/reportEvery {
			p.progress.OnProgress(ctx, stats)
		}
		return nil
	}

	workers := p.resolveLoadWorkers()
	if workers <= 1 {
		for _, batch := range batches {
			if err := loadOne(ctx, batch); err != nil {
				return err
			}
		}
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, batch := range batches {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return loadOne(gctx, batch)
		})
	}
	return group.Wait()
}

// chunk splits items into batches of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		items, batches = items[size:], append(batches, items[:size:size])
	}
	return append(batches, items)
}
