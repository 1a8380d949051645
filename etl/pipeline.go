package etl

import "context"

// Pipeline drives one Job from extract to load.
type Pipeline[S, T any] struct {
	job         Job[S, T]
	transformer Transformer[S, T]

	// Configuration overrides (nil means use interface value or default)
	batchSize      *int
	reportInterval *int

	// Optional capabilities (detected from job interfaces)
	stopper            Stopper
	progress           ProgressReporter
	batcher            Batcher[T]
	loadBatchSizeIface LoadBatchSize
}

// New creates a Pipeline for the given job. Optional interfaces are detected
// from the job value.
//
// Panics if the job does not implement Transformer[S, T].
func New[S, T any](job Job[S, T]) *Pipeline[S, T] {
	t, ok := any(job).(Transformer[S, T])
	if !ok {
		panic("etl: job must implement Transformer[S, T]")
	}

	p := &Pipeline[S, T]{
		job:         job,
		transformer: t,
	}

	if s, ok := any(job).(Stopper); ok {
		p.stopper = s
	}
	if r, ok := any(job).(ProgressReporter); ok {
		p.progress = r
	}
	if b, ok := any(job).(Batcher[T]); ok {
		p.batcher = b
	}
	if s, ok := any(job).(LoadBatchSize); ok {
		p.loadBatchSizeIface = s
	}

	return p
}

// WithLoadBatchSize overrides the number of records buffered before batching.
// Values less than 1 are ignored.
func (p *Pipeline[S, T]) WithLoadBatchSize(n int) *Pipeline[S, T] {
	if n >= 1 {
		p.batchSize = &n
	}
	return p
}

// WithReportInterval overrides how often progress is reported (in records).
// Values less than 1 are ignored.
func (p *Pipeline[S, T]) WithReportInterval(n int) *Pipeline[S, T] {
	if n >= 1 {
		p.reportInterval = &n
	}
	return p
}

// Run executes the pipeline and returns the first error of any stage.
// Records reach Load in extract order.
func (p *Pipeline[S, T]) Run(ctx context.Context) error {
	stats := &Stats{}

	err := p.runStreaming(ctx, stats)

	if p.stopper != nil {
		p.stopper.Stop(ctx, stats, err)
	}
	return err
}
