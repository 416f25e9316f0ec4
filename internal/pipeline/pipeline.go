// Package pipeline provides the batch engine shared by the ingest and
// enrichment stages. A stage is a job value implementing [Job] plus
// whichever optional capability interfaces it needs ([Filter],
// [Checkpointer], [ErrorHandler], ...); the engine detects implemented
// interfaces at construction and configures itself accordingly.
//
// Jobs with a [Checkpointer] run in epochs: the engine extracts up to
// CheckpointInterval records, transforms and loads them, then persists the
// cursor. On restart the saved cursor is handed back to Extract so completed
// work is never repeated. Jobs without a Checkpointer run as a single
// sequential pass over the source.
package pipeline

import (
	"context"
	"iter"
)

// Stage identifies where in a run an event occurred.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// Action tells the engine what to do after an error.
type Action string

const (
	ActionFail Action = "fail" // stop the run and return the error
	ActionSkip Action = "skip" // count the error and continue
)

// Job defines the required operations of a batch stage.
//
// The type parameters are:
//   - S: source record type
//   - T: output record type
//   - C: cursor type for resumable jobs (use any if not needed)
//
// A job must additionally implement exactly one of [Transformer] (1:1) or
// [Expander] (1:N). If both are implemented, Transformer takes precedence.
type Job[S, T any, C comparable] interface {
	// Extract yields source records in a stable order.
	// cursor is nil on a fresh start; when the job implements
	// [Checkpointer], it is the last persisted (or advanced) cursor and
	// Extract must skip records already covered by it.
	Extract(ctx context.Context, cursor *C) iter.Seq2[S, error]

	// Load writes a batch of output records to the destination.
	Load(ctx context.Context, batch []T) error
}

// Transformer converts one source record into one output record.
type Transformer[S, T any] interface {
	Transform(ctx context.Context, src S) (T, error)
}

// Expander converts one source record into any number of output records.
// Returning an empty or nil slice drops the record: nothing reaches the
// load stage. Use Expander for denormalization, where one source record
// fans out into a row per nested item.
type Expander[S, T any] interface {
	Expand(ctx context.Context, src S) ([]T, error)
}

// transformMode indicates which transformation strategy is in use.
type transformMode int

const (
	transformModeTransformer transformMode = iota // 1:1 via Transformer
	transformModeExpander                         // 1:N via Expander
)

// Pipeline drives a job through extract, transform and load.
type Pipeline[S, T any, C comparable] struct {
	job Job[S, T, C]

	// Runtime overrides (nil means use interface value or default).
	transformWorkerCount *int
	loadWorkerCount      *int
	batchSize            *int
	reportInterval       *int

	// Transformation strategy (detected at construction).
	txMode      transformMode
	transformer Transformer[S, T]
	expander    Expander[S, T]

	// Optional capabilities (detected from job interfaces).
	filter              Filter[S]
	errHandler          ErrorHandler
	progress            ProgressReporter
	checkpoint          Checkpointer[S, C]
	barrier             Barrier[S]
	starter             Starter
	stopper             Stopper
	loadBatchSizeIface  LoadBatchSize
	reportIntervalIface ReportInterval
	transformWorkers    TransformWorkers
	loadWorkers         LoadWorkers
}

// New creates a Pipeline for the given job. Optional interfaces are
// auto-detected. Panics if the job implements neither [Transformer] nor
// [Expander].
func New[S, T any, C comparable](job Job[S, T, C]) *Pipeline[S, T, C] {
	p := &Pipeline[S, T, C]{job: job}

	if t, ok := any(job).(Transformer[S, T]); ok {
		p.txMode = transformModeTransformer
		p.transformer = t
	} else if e, ok := any(job).(Expander[S, T]); ok {
		p.txMode = transformModeExpander
		p.expander = e
	} else {
		panic("pipeline: job must implement Transformer[S, T] or Expander[S, T]")
	}

	if f, ok := any(job).(Filter[S]); ok {
		p.filter = f
	}
	if h, ok := any(job).(ErrorHandler); ok {
		p.errHandler = h
	}
	if r, ok := any(job).(ProgressReporter); ok {
		p.progress = r
	}
	if c, ok := any(job).(Checkpointer[S, C]); ok {
		p.checkpoint = c
	}
	if b, ok := any(job).(Barrier[S]); ok {
		p.barrier = b
	}
	if s, ok := any(job).(Starter); ok {
		p.starter = s
	}
	if s, ok := any(job).(Stopper); ok {
		p.stopper = s
	}
	if s, ok := any(job).(LoadBatchSize); ok {
		p.loadBatchSizeIface = s
	}
	if r, ok := any(job).(ReportInterval); ok {
		p.reportIntervalIface = r
	}
	if w, ok := any(job).(TransformWorkers); ok {
		p.transformWorkers = w
	}
	if w, ok := any(job).(LoadWorkers); ok {
		p.loadWorkers = w
	}

	return p
}

// transform applies the detected transformation to one record.
func (p *Pipeline[S, T, C]) transform(ctx context.Context, src S) ([]T, error) {
	switch p.txMode {
	case transformModeTransformer:
		out, err := p.transformer.Transform(ctx, src)
		if err != nil {
			return nil, err
		}
		return []T{out}, nil
	case transformModeExpander:
		return p.expander.Expand(ctx, src)
	default:
		panic("pipeline: unknown transform mode")
	}
}
