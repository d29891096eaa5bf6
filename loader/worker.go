package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/utkarsh5026/imgpool/internal/cpu"
	"github.com/utkarsh5026/imgpool/internal/decode"
)

var ErrDecodePanic = errors.New("decoder panic")

// runWorker is the loop run by every pool goroutine. It owns a locked OS
// thread for its whole life and handles one request at a time until the
// running flag is cleared or the request queue is closed.
//
// Only the dequeue is shared with other workers; decoding happens after the
// request has left the queue, so a slow file never holds up the others.
func (l *Loader) runWorker(id int) (err error) {
	release, affErr := cpu.SetupWorkerAffinity(id, l.conf.pinWorkers)
	defer release()
	if affErr != nil {
		l.conf.logger.Printf("worker %d: cpu affinity: %v", id, affErr)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d panic: %v", id, r)
			l.conf.logger.Print(err)
		}
	}()

	for l.running.Load() {
		req, popErr := l.requests.Pop(l.ctx)
		if popErr != nil {
			debugLog("worker %d: queue released: %v", id, popErr)
			return nil
		}
		// Woken during shutdown: the request is dropped.
		if !l.running.Load() {
			return nil
		}

		debugLog("worker %d: request %d %q", id, req.ID, req.Path)
		l.handle(req)
	}
	return nil
}

// handle runs one request through to its terminal event.
func (l *Loader) handle(req LoadRequest) {
	l.callHook(func() {
		if l.conf.beforeRequestStart != nil {
			l.conf.beforeRequestStart(req)
		}
	})

	err := l.decodeWithRecovery(req)
	if err != nil {
		l.emit(failedResult(req.ID, err))
	} else {
		l.emit(doneResult(req.ID))
	}

	l.callHook(func() {
		if l.conf.onRequestEnd != nil {
			l.conf.onRequestEnd(req, err)
		}
	})
}

// decodeWithRecovery converts a decoder panic into an error so the worker
// survives and the request still gets its terminal event.
func (l *Loader) decodeWithRecovery(req LoadRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%w: %v\nstack trace:\n%s", ErrDecodePanic, r, buf[:n])
		}
	}()

	return l.decode(req)
}

func (l *Loader) decode(req LoadRequest) error {
	if l.conf.rateLimiter != nil {
		if err := l.conf.rateLimiter.Wait(l.ctx); err != nil {
			if l.ctx.Err() != nil {
				return ErrLoaderClosed
			}
			return err
		}
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return err
	}

	format := decode.SniffFile(req.Path)
	if format == decode.FormatUnknown {
		format = decode.FormatFromExt(req.Path)
	}
	l.emit(startResult(req.ID, info, format.String()))

	if format.Streaming() {
		return l.decodeStream(req)
	}
	return l.decodeSingle(req)
}

// decodeStream emits frames as they are decoded. A frame that fails to
// decode ends the stream; frames already emitted stay emitted.
func (l *Loader) decodeStream(req LoadRequest) error {
	f, err := os.Open(req.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	frames, err := decode.NewGIFFrames(f)
	if err != nil {
		return err
	}

	for {
		fr, err := frames.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		l.emit(frameResult(req.ID, fr.Image, fr.Delay.Duration()))
	}
}

func (l *Loader) decodeSingle(req LoadRequest) error {
	img, err := decode.DecodeFile(req.Path)
	if err != nil {
		return err
	}
	l.emit(frameResult(req.ID, img, 0))
	return nil
}

func (l *Loader) emit(res LoadResult) {
	switch res.Kind {
	case ResultStart:
		l.started.Add(1)
	case ResultFrame:
		l.frames.Add(1)
	case ResultDone:
		l.succeeded.Add(1)
	case ResultFailed:
		l.failed.Add(1)
	}
	debugResult(res)

	// results is only closed after every worker has returned.
	_ = l.results.Push(res)
}

func (l *Loader) callHook(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.conf.logger.Printf("hook panic: %v", r)
		}
	}()
	fn()
}
