package etl

// Default configuration values.
const (
	DefaultLoadBatchSize  = 500
	DefaultReportInterval = 10000
)

// LoadBatchSize controls how many transformed records accumulate before the
// batcher is asked to cut them into Load batches. It is also the batch size
// of the default [SizeBatcher].
//
// WithLoadBatchSize on the pipeline takes precedence. If neither is set,
// DefaultLoadBatchSize is used.
//
// Example:
//
//	func (j *copyJob) LoadBatchSize() int { return j.batchRows }
type LoadBatchSize interface {
	LoadBatchSize() int
}

// resolveLoadBatchSize returns the effective load batch size.
// Priority: WithLoadBatchSize > LoadBatchSize interface > DefaultLoadBatchSize.
func (p *Pipeline[S, T]) resolveLoadBatchSize() int {
	if p.batchSize != nil {
		return *p.batchSize
	}
	if p.loadBatchSizeIface != nil {
		if n := p.loadBatchSizeIface.LoadBatchSize(); n >= 1 {
			return n
		}
	}
	return DefaultLoadBatchSize
}

// resolveReportInterval returns the effective report interval.
// Priority: WithReportInterval > ProgressReporter interface > DefaultReportInterval.
func (p *Pipeline[S, T]) resolveReportInterval() int {
	if p.reportInterval != nil {
		return *p.reportInterval
	}
	if p.progress != nil {
		if n := p.progress.ReportInterval(); n >= 1 {
			return n
		}
	}
	return DefaultReportInterval
}

// resolveBatcher returns the job's Batcher, or a SizeBatcher with the
// resolved load batch size.
func (p *Pipeline[S, T]) resolveBatcher() Batcher[T] {
	if p.batcher != nil {
		return p.batcher
	}
	return SizeBatcher[T](p.resolveLoadBatchSize())
}
