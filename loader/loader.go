package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/imgpool/internal/queue"
)

var (
	ErrLoaderClosed    = errors.New("loader is closed")
	ErrDisconnected    = errors.New("loader workers have exited")
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")
)

// Loader owns a fixed pool of decode workers, the request queue they share
// and the result channel they all publish to.
//
// Submit, Poll and Next are safe for concurrent use, although the result
// stream is meant for a single consumer. A Loader must be shut down with
// Close or Shutdown to release its workers.
type Loader struct {
	conf *config

	running  atomic.Bool
	requests *queue.Queue[LoadRequest]
	results  *queue.Queue[LoadResult]

	// ctx is cancelled on shutdown to release workers waiting on the rate
	// limiter or parked on the request queue.
	ctx    context.Context
	cancel context.CancelFunc

	// done is closed after every worker returned and results was closed.
	done      chan struct{}
	workerErr error

	shutdownOnce sync.Once
	shutdownErr  error

	submitted atomic.Uint64
	started   atomic.Uint64
	frames    atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// New starts a Loader with the given options. Its workers are running and
// parked on the request queue when New returns.
//
// Example:
//
//	l := loader.New(loader.WithWorkerCount(4))
//	defer l.Close()
//
//	_ = l.Submit(loader.LoadRequest{ID: 1, Path: "cat.gif"})
//	for {
//	    res, status := l.Poll()
//	    if status != loader.PollReady {
//	        break
//	    }
//	    // handle res
//	}
func New(opts ...Option) *Loader {
	cfg := createConfig(opts...)
	ctx, cancel := context.WithCancel(context.Background())

	l := &Loader{
		conf:     cfg,
		requests: queue.New[LoadRequest](),
		results:  queue.New[LoadResult](),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	l.running.Store(true)

	var g errgroup.Group
	for i := range cfg.workerCount {
		g.Go(func() error {
			return l.runWorker(i)
		})
	}

	go func() {
		l.workerErr = g.Wait()
		l.results.Close()
		close(l.done)
	}()

	return l
}

// NewWithThreads starts a Loader with exactly threads workers.
func NewWithThreads(threads int) *Loader {
	return New(WithWorkerCount(threads))
}

// Workers returns the size of the worker pool.
func (l *Loader) Workers() int {
	return l.conf.workerCount
}

// Submit enqueues req. It never blocks; the queue is unbounded.
// Returns ErrLoaderClosed once shutdown has begun.
func (l *Loader) Submit(req LoadRequest) error {
	if !l.running.Load() {
		return ErrLoaderClosed
	}

	l.submitted.Add(1)
	if err := l.requests.Push(req); err != nil {
		l.submitted.Add(^uint64(0))
		return ErrLoaderClosed
	}
	return nil
}

// SubmitPath is shorthand for Submit(LoadRequest{ID: id, Path: path}).
func (l *Loader) SubmitPath(id uint32, path string) error {
	return l.Submit(LoadRequest{ID: id, Path: path})
}

// Poll returns the next pending result without blocking.
//
// PollEmpty means nothing is ready yet. PollDisconnected means the workers
// are gone and every result has been consumed; on a Loader that has not
// been shut down this is a broken pool and should be treated as fatal.
func (l *Loader) Poll() (LoadResult, PollStatus) {
	res, st := l.results.TryPop()
	switch st {
	case queue.Ready:
		return res, PollReady
	case queue.Empty:
		return LoadResult{}, PollEmpty
	default:
		return LoadResult{}, PollDisconnected
	}
}

// Next blocks until a result is available or ctx ends.
// Returns ErrDisconnected once the workers have exited and results are drained.
func (l *Loader) Next(ctx context.Context) (LoadResult, error) {
	res, err := l.results.Pop(ctx)
	if errors.Is(err, queue.ErrClosed) {
		return LoadResult{}, ErrDisconnected
	}
	return res, err
}

// Pending returns the number of requests waiting for a worker.
func (l *Loader) Pending() int {
	return l.requests.Len()
}

// Stats returns a snapshot of the loader's counters.
func (l *Loader) Stats() Stats {
	// Terminal counters first so Submitted never lags behind them.
	s := Stats{
		Done:    l.succeeded.Load(),
		Failed:  l.failed.Load(),
		Frames:  l.frames.Load(),
		Started: l.started.Load(),
	}
	s.Submitted = l.submitted.Load()
	return s
}

// Shutdown stops the pool: it clears the running flag, closes the request
// queue so every parked worker wakes up, and waits for all workers to return.
// Decodes already in progress run to completion; requests still queued are
// dropped without events. Results already produced stay available to Poll.
//
// A timeout of 0 waits forever. Calling Shutdown again returns the first
// call's outcome.
func (l *Loader) Shutdown(timeout time.Duration) error {
	l.shutdownOnce.Do(func() {
		l.running.Store(false)
		l.requests.Close()
		l.cancel()

		debugLog("shutdown: dropped %d queued requests", l.requests.Len())

		if err := waitUntil(l.done, timeout); err != nil {
			l.conf.logger.Printf("shutdown: workers still running after %v", timeout)
			l.shutdownErr = err
			return
		}
		if l.workerErr != nil {
			l.conf.logger.Printf("shutdown: %v", l.workerErr)
		}
	})
	return l.shutdownErr
}

// Close is Shutdown with no timeout.
func (l *Loader) Close() error {
	return l.Shutdown(0)
}

// Done returns a channel that is closed once every worker has exited.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// waitUntil blocks until either the done channel is closed or the timeout is reached.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
