package etl

import "context"

// Stopper is called once after the engine finishes, whether it succeeded or
// failed. Use it for the final log line of a load or to record how many
// records reached the destination.
//
// err is the same error Run returns.
//
// Example:
//
//	func (j *copyJob) Stop(ctx context.Context, stats *etl.Stats, err error) {
//	    if err != nil {
//	        j.log.DebugContext(ctx, "copy aborted", "table", j.name, "stats", stats, "error", err)
//	        return
//	    }
//	    j.log.DebugContext(ctx, "copy finished", "table", j.name, "stats", stats)
//	}
type Stopper interface {
	Stop(ctx context.Context, stats *Stats, err error)
}
