// Package loader decodes image files on a fixed pool of worker goroutines
// and streams the results back to a single consumer.
//
// The primary type is Loader. Requests go into one unbounded FIFO queue
// shared by every worker; whichever worker dequeues a request decodes it
// and publishes a sequence of LoadResult events to one result channel that
// the owner drains with Poll (non-blocking, for render loops) or Next
// (blocking).
//
// # Basic Usage
//
//	l := loader.New(loader.WithWorkerCount(4))
//	defer l.Close()
//
//	for i, path := range paths {
//	    if loader.IsSupported(path) {
//	        _ = l.SubmitPath(uint32(i), path)
//	    }
//	}
//
//	for {
//	    res, status := l.Poll()
//	    switch status {
//	    case loader.PollEmpty:
//	        // nothing yet, render the next frame
//	    case loader.PollDisconnected:
//	        panic("image loader died")
//	    case loader.PollReady:
//	        // handle res
//	    }
//	}
//
// # Result Protocol
//
// Each request produces, in order:
//
//   - Start, once, after the file's metadata has been read. If the metadata
//     cannot be read the request fails straight away without a Start.
//   - Frame, once per decoded frame. Single-frame images produce one Frame
//     with a zero Delay; animated GIFs produce one per frame, fully
//     composited, as soon as each is decoded.
//   - Done on success, or Failed if anything went wrong. A GIF frame that
//     fails to decode stops the stream; earlier frames are not retracted.
//
// Events of different requests interleave arbitrarily.
//
// # Configuration Options
//
//   - WithWorkerCount(n): Number of decode workers (default: GOMAXPROCS)
//   - WithCPUAffinity(true): Pin each worker's OS thread to a CPU
//   - WithRateLimit(perSecond, burst): Throttle decode starts
//   - WithLogger(l): Logger for worker crashes and shutdown problems
//   - WithBeforeRequestStart / WithOnRequestEnd: Per-request hooks
//
// # Shutdown
//
// Close clears the running flag and closes the request queue, which wakes
// every parked worker at once. Workers finish the decode they are in, then
// exit; queued requests that no worker picked up are dropped. Once all
// workers are gone the result channel closes and Poll reports
// PollDisconnected after the remaining results are drained.
//
// There is no per-request cancellation or decode timeout: a decoder that
// hangs keeps its worker, and Close, waiting. Use Shutdown with a timeout to
// bound the wait.
package loader
