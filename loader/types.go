package loader

import (
	"fmt"
	"image"
	"io/fs"
	"time"
)

// LoadRequest asks the pool to decode the image at Path. ID is chosen by the
// caller to correlate the request with its results; it is not checked for
// uniqueness.
type LoadRequest struct {
	ID   uint32
	Path string
}

// ResultKind tags the variant carried by a LoadResult.
type ResultKind int

const (
	// ResultStart is emitted once, first, after the file's metadata was read.
	ResultStart ResultKind = iota
	// ResultFrame carries one decoded frame, in decode order.
	ResultFrame
	// ResultDone terminates a successful decode.
	ResultDone
	// ResultFailed terminates a decode that could not complete.
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultStart:
		return "start"
	case ResultFrame:
		return "frame"
	case ResultDone:
		return "done"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadResult is one event in the lifecycle of a request.
//
// For a given request the events are: at most one Start, then zero or more
// Frame (only after a Start), then exactly one of Done or Failed. Events of
// different requests may interleave.
type LoadResult struct {
	Kind      ResultKind
	RequestID uint32

	// Start
	Metadata fs.FileInfo
	Format   string

	// Frame
	Image *image.RGBA
	Delay time.Duration

	// Failed; may be nil.
	Err error
}

// ID returns the id of the request this event belongs to.
func (r LoadResult) ID() uint32 {
	return r.RequestID
}

// IsFailed reports whether r is a Failed event.
func (r LoadResult) IsFailed() bool {
	return r.Kind == ResultFailed
}

// IsTerminal reports whether r is the last event of its request.
func (r LoadResult) IsTerminal() bool {
	return r.Kind == ResultDone || r.Kind == ResultFailed
}

// traceLine renders r for the debug log. Frames show their size and delay,
// Start its format and file size.
func (r LoadResult) traceLine() string {
	switch r.Kind {
	case ResultStart:
		var size int64
		if r.Metadata != nil {
			size = r.Metadata.Size()
		}
		return fmt.Sprintf("request %d start format=%s bytes=%d", r.RequestID, r.Format, size)
	case ResultFrame:
		var w, h int
		if r.Image != nil {
			w, h = r.Image.Bounds().Dx(), r.Image.Bounds().Dy()
		}
		return fmt.Sprintf("request %d frame %dx%d delay=%s", r.RequestID, w, h, r.Delay)
	case ResultFailed:
		return fmt.Sprintf("request %d failed: %v", r.RequestID, r.Err)
	default:
		return fmt.Sprintf("request %d %s", r.RequestID, r.Kind)
	}
}

func startResult(id uint32, info fs.FileInfo, format string) LoadResult {
	return LoadResult{Kind: ResultStart, RequestID: id, Metadata: info, Format: format}
}

func frameResult(id uint32, img *image.RGBA, delay time.Duration) LoadResult {
	return LoadResult{Kind: ResultFrame, RequestID: id, Image: img, Delay: delay}
}

func doneResult(id uint32) LoadResult {
	return LoadResult{Kind: ResultDone, RequestID: id}
}

func failedResult(id uint32, err error) LoadResult {
	return LoadResult{Kind: ResultFailed, RequestID: id, Err: err}
}

// PollStatus is the outcome of a non-blocking Poll.
type PollStatus int

const (
	// PollReady means a result was returned.
	PollReady PollStatus = iota
	// PollEmpty means no result is pending right now.
	PollEmpty
	// PollDisconnected means every worker has exited and all results were
	// drained. While the Loader is open this indicates a broken pool.
	PollDisconnected
)

func (s PollStatus) String() string {
	switch s {
	case PollReady:
		return "ready"
	case PollEmpty:
		return "empty"
	case PollDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the loader's counters.
type Stats struct {
	Submitted uint64
	Started   uint64
	Frames    uint64
	Done      uint64
	Failed    uint64
}

// InFlight returns the number of submitted requests without a terminal event.
func (s Stats) InFlight() uint64 {
	return s.Submitted - s.Done - s.Failed
}
