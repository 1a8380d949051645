package etl

import "context"

// ReportInterval controls how often progress is reported, measured in
// records loaded. It is embedded in ProgressReporter.
type ReportInterval interface {
	// ReportInterval returns how often to call OnProgress (in records loaded).
	ReportInterval() int
}

// ProgressReporter receives a callback each time the loaded count crosses a
// ReportInterval boundary. OnProgress runs on the load goroutine, so keep it
// cheap.
//
// Example:
//
//	func (j *copyJob) ReportInterval() int { return j.reportInterval }
//
//	func (j *copyJob) OnProgress(ctx context.Context, stats *etl.Stats) {
//	    j.log.DebugContext(ctx, "copy progress", "table", j.name, "loaded", stats.Loaded(), "of", len(j.rows))
//	}
type ProgressReporter interface {
	ReportInterval

	// OnProgress is called periodically during execution.
	OnProgress(ctx context.Context, stats *Stats)
}
