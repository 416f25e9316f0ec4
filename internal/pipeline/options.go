package pipeline

// Default configuration values.
const (
	DefaultTransformWorkers = 1
	DefaultLoadWorkers      = 1
	DefaultLoadBatchSize    = 100
	DefaultReportInterval   = 100
	DefaultEpochSize        = 1000 // chunk size for jobs without a Checkpointer
)

// WithTransformWorkers overrides the number of concurrent transform workers.
// Priority: this method > TransformWorkers interface > default.
// Values less than 1 are ignored.
func (p *Pipeline[S, T, C]) WithTransformWorkers(n int) *Pipeline[S, T, C] {
	if n >= 1 {
		p.transformWorkerCount = &n
	}
	return p
}

// WithLoadWorkers overrides the number of concurrent load workers.
// Priority: this method > LoadWorkers interface > default.
// Values less than 1 are ignored.
func (p *Pipeline[S, T, C]) WithLoadWorkers(n int) *Pipeline[S, T, C] {
	if n >= 1 {
		p.loadWorkerCount = &n
	}
	return p
}

// WithLoadBatchSize overrides the number of records batched per Load call.
// Priority: this method > LoadBatchSize interface > default.
// Values less than 1 are ignored.
func (p *Pipeline[S, T, C]) WithLoadBatchSize(n int) *Pipeline[S, T, C] {
	if n >= 1 {
		p.batchSize = &n
	}
	return p
}

// WithReportInterval overrides how often progress is reported (in records).
// Priority: this method > ProgressReporter interface > default.
// Values less than 1 are ignored.
func (p *Pipeline[S, T, C]) WithReportInterval(n int) *Pipeline[S, T, C] {
	if n >= 1 {
		p.reportInterval = &n
	}
	return p
}

func (p *Pipeline[S, T, C]) resolveTransformWorkers() int {
	if p.transformWorkerCount != nil {
		return *p.transformWorkerCount
	}
	if p.transformWorkers != nil {
		return p.transformWorkers.TransformWorkers()
	}
	return DefaultTransformWorkers
}

func (p *Pipeline[S, T, C]) resolveLoadWorkers() int {
	if p.loadWorkerCount != nil {
		return *p.loadWorkerCount
	}
	if p.loadWorkers != nil {
		return p.loadWorkers.LoadWorkers()
	}
	return DefaultLoadWorkers
}

func (p *Pipeline[S, T, C]) resolveLoadBatchSize() int {
	if p.batchSize != nil {
		return *p.batchSize
	}
	if p.loadBatchSizeIface != nil {
		return p.loadBatchSizeIface.LoadBatchSize()
	}
	return DefaultLoadBatchSize
}

func (p *Pipeline[S, T, C]) resolveReportInterval() int {
	if p.reportInterval != nil {
		return *p.reportInterval
	}
	if p.reportIntervalIface != nil {
		return p.reportIntervalIface.ReportInterval()
	}
	return DefaultReportInterval
}

// resolveEpochSize returns how many records to collect before processing
// and, when checkpointing, saving the cursor.
func (p *Pipeline[S, T, C]) resolveEpochSize() int {
	if p.checkpoint != nil {
		if n := p.checkpoint.CheckpointInterval(); n >= 1 {
			return n
		}
	}
	return DefaultEpochSize
}
