// Package batch encodes many frames across a fixed pool of encoders.
//
// Each worker owns one encoder for its whole life. Hardware components are
// scarce, so the pool size doubles as the number of components held open.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/omxjpeg/pkg/adapters/logger"
	"github.com/user/omxjpeg/pkg/jpegenc"
	"github.com/user/omxjpeg/pkg/ports"
)

// ErrNotRun marks jobs that were never handed to an encoder.
var ErrNotRun = errors.New("batch: job not run")

// Job is one raw frame to encode.
type Job struct {
	Name string
	Raw  []byte
}

// Result is the outcome of one job, in the same position as its job.
type Result struct {
	Name    string
	JPEG    []byte
	Err     error
	Worker  int
	Elapsed time.Duration
}

// Factory opens a fresh encoder for a worker.
type Factory func() (ports.ImageEncoder, error)

// Run encodes jobs with up to workers encoders.
//
// A failed frame is recorded in its Result and does not stop the batch.
// The returned error is non-nil only when an encoder could not be opened
// or ctx was canceled; jobs left unprocessed then carry ErrNotRun.
func Run(ctx context.Context, jobs []Job, factory Factory, workers int, log ports.Logger) ([]Result, error) {
	if log == nil {
		log = logger.NewNoop()
	}
	log = log.WithComponent("batch")

	results := make([]Result, len(jobs))
	for i, j := range jobs {
		results[i] = Result{Name: j.Name, Err: ErrNotRun}
	}
	if len(jobs) == 0 {
		return results, nil
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	log.Debug("Encoding %d frames with %d workers", len(jobs), workers)

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan int)

	g.Go(func() error {
		defer close(queue)
		for i := range jobs {
			select {
			case queue <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			return work(gctx, w, jobs, results, queue, factory, log)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return results, err
}

// work drains the queue with a single encoder, reopening it when it breaks.
func work(ctx context.Context, id int, jobs []Job, results []Result, queue <-chan int, factory Factory, log ports.Logger) error {
	enc, err := factory()
	if err != nil {
		return fmt.Errorf("worker %d: open encoder: %w", id, err)
	}
	defer func() {
		if enc == nil {
			return
		}
		if err := enc.Close(); err != nil {
			log.Warn("Worker %d failed to close encoder: %v", id, err)
		}
	}()

	for i := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		out, perr := enc.Process(ctx, jobs[i].Raw)
		results[i] = Result{Name: jobs[i].Name, JPEG: out, Err: perr, Worker: id, Elapsed: time.Since(start)}
		if perr == nil {
			continue
		}
		log.Warn("Frame %s failed: %v", jobs[i].Name, perr)

		if errors.Is(perr, jpegenc.ErrBroken) {
			log.Warn("Worker %d reopening encoder", id)
			if err := enc.Close(); err != nil {
				log.Warn("Worker %d failed to close encoder: %v", id, err)
			}
			enc, err = factory()
			if err != nil {
				enc = nil
				return fmt.Errorf("worker %d: reopen encoder: %w", id, err)
			}
		}
	}
	return nil
}
