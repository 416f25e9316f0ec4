package pipeline

import "context"

// Filter excludes records before transformation. Filter runs in the extract
// stage, so excluded records never reach the transform or load stages.
//
// Filter interacts with [Checkpointer]: filtered records still advance the
// cursor, so resuming from a checkpoint does not re-extract records that
// were already seen and skipped.
type Filter[S any] interface {
	// Include returns true if the record should be processed.
	Include(src S) bool
}

// ErrorHandler customizes error handling per stage. Without an ErrorHandler
// the run stops on the first error in any stage.
//
// Skipped errors still increment [Stats.Errors]. Returning [ActionFail]
// stops the run and surfaces the error from Run.
type ErrorHandler interface {
	OnError(ctx context.Context, stage Stage, err error) Action
}

// Starter is called once before extraction begins. The returned context is
// used for the rest of the run; it is the place to stamp run-scoped values
// such as a start time or logger fields.
type Starter interface {
	Start(ctx context.Context) context.Context
}

// Stopper is called exactly once after the run finishes, whether it
// succeeded or failed. err is the same error returned by Run; errors
// handled with [ActionSkip] do not appear here even though they increment
// stats.
type Stopper interface {
	Stop(ctx context.Context, stats *Stats, err error)
}

// Checkpointer enables cursor-based resumability. When implemented, the
// engine runs in epochs of CheckpointInterval records and persists the
// cursor after each epoch, so a crash or interrupt costs at most one epoch
// of re-extraction.
//
// Because records near an epoch boundary may be re-processed after a crash,
// Load should be idempotent or a downstream consumer must tolerate
// duplicates. Cursor values must increase monotonically with source
// ordering.
//
// The saved checkpoint is not cleared after a successful run: it is the
// durable high-water mark of the source, so a later run over a grown corpus
// continues where the previous one finished.
type Checkpointer[S any, C comparable] interface {
	// CheckpointInterval returns the number of records per epoch.
	CheckpointInterval() int

	// Cursor extracts a checkpoint cursor from a source record.
	Cursor(src S) C

	// LoadCheckpoint retrieves the last saved cursor and stats.
	// Return (nil, nil, nil) if no checkpoint exists (fresh start).
	LoadCheckpoint(ctx context.Context) (cursor *C, stats *Stats, err error)

	// SaveCheckpoint persists cursor and stats. Called after each epoch.
	SaveCheckpoint(ctx context.Context, cursor C, stats *Stats) error
}

// Barrier marks records whose cursor must be persisted promptly. A record
// for which Barrier returns true ends the current epoch as soon as it is
// extracted, forcing a checkpoint save even when the epoch is not full.
//
// The ingest stage uses this to persist a folder-completion checkpoint the
// moment the last archive of a corpus folder has been handled. Barrier has
// no effect on jobs without a [Checkpointer].
type Barrier[S any] interface {
	Barrier(src S) bool
}

// ReportInterval controls how often progress is reported, measured in
// records loaded. Embedded in [ProgressReporter]; implement it alone only
// when overriding the interval without custom reporting.
type ReportInterval interface {
	ReportInterval() int
}

// ProgressReporter receives periodic progress updates during a run.
// OnProgress is called each time the cumulative loaded count crosses a
// ReportInterval boundary. The Stats snapshot is safe to read concurrently.
type ProgressReporter interface {
	ReportInterval

	OnProgress(ctx context.Context, stats *Stats)
}

// TransformWorkers sets the number of concurrent transform workers from the
// job. Defaults to 1: the corpus jobs are deliberately sequential, and a
// single worker keeps record order stable.
type TransformWorkers interface {
	TransformWorkers() int
}

// LoadWorkers sets the number of concurrent load workers from the job.
// Defaults to 1.
type LoadWorkers interface {
	LoadWorkers() int
}

// LoadBatchSize sets the number of records batched together per Load call.
type LoadBatchSize interface {
	LoadBatchSize() int
}
