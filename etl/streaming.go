package etl

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// runStreaming runs the four stages as goroutines joined by channels. Each
// stage has exactly one worker, which is what keeps records in order and
// keeps Load calls sequential.
func (p *Pipeline[S, T]) runStreaming(ctx context.Context, stats *Stats) error {
	group, ctx := errgroup.WithContext(ctx)

	extractCh := make(chan S, 1)
	transformCh := make(chan T, 1)
	batchCh := make(chan []T, 1)

	group.Go(func() error {
		return p.runExtract(ctx, extractCh, stats)
	})
	group.Go(func() error {
		return p.runTransform(ctx, extractCh, transformCh, stats)
	})
	group.Go(func() error {
		return p.runBatch(ctx, transformCh, batchCh)
	})
	group.Go(func() error {
		return p.runLoad(ctx, batchCh, stats)
	})

	return group.Wait()
}

func (p *Pipeline[S, T]) runExtract(ctx context.Context, out chan<- S, stats *Stats) error {
	defer close(out)

	for record, err := range p.job.Extract(ctx) {
		if err != nil {
			return fmt.Errorf("%s: %w", StageExtract, err)
		}
		stats.incExtracted()

		select {
		case out <- record:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Pipeline[S, T]) runTransform(ctx context.Context, in <-chan S, out chan<- T, stats *Stats) error {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record, ok := <-in:
			if !ok {
				return nil
			}

			result, err := p.transformer.Transform(ctx, record)
			if err != nil {
				return fmt.Errorf("%s: %w", StageTransform, err)
			}
			stats.incTransformed()

			select {
			case out <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (p *Pipeline[S, T]) runBatch(ctx context.Context, in <-chan T, out chan<- []T) error {
	defer close(out)

	batcher := p.resolveBatcher()
	flushAt := p.resolveLoadBatchSize()

	var pending []T
	flush := func() error {
		for _, batch := range batcher.Batch(pending) {
			if len(batch) == 0 {
				continue
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		pending = nil
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-in:
			if !ok {
				if len(pending) > 0 {
					return flush()
				}
				return nil
			}

			pending = append(pending, item)
			if len(pending) >= flushAt {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

func (p *Pipeline[S, T]) runLoad(ctx context.Context, in <-chan []T, stats *Stats) error {
	reportEvery := int64(p.resolveReportInterval())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-in:
			if !ok {
				return nil
			}

			if err := p.job.Load(ctx, batch); err != nil {
				return fmt.Errorf("%s: %w", StageLoad, err)
			}
			stats.incBatches()

			loaded := stats.incLoaded(int64(len(batch)))
			previous := loaded - int64(len(batch))
			if p.progress != nil && loaded/reportEvery > previous/reportEvery {
				p.progress.OnProgress(ctx, stats)
			}
		}
	}
}
