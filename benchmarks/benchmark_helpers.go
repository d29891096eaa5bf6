package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/imgpool/internal/imgtest"
	"github.com/utkarsh5026/imgpool/loader"
)

// workloadConfig describes a set of files to decode per iteration.
type workloadConfig struct {
	name   string
	pngs   int
	gifs   int
	side   int
	frames int
}

func getWorkloads() []workloadConfig {
	return []workloadConfig{
		{name: "StillsOnly", pngs: 64, side: 128},
		{name: "AnimatedOnly", gifs: 16, side: 64, frames: 8},
		{name: "Mixed", pngs: 48, gifs: 8, side: 96, frames: 6},
	}
}

// writeWorkload materialises w under a temporary directory and returns the
// file paths in submission order.
func writeWorkload(b *testing.B, w workloadConfig) []string {
	b.Helper()
	dir := b.TempDir()

	var paths []string
	still := imgtest.PNG(b, w.side, w.side)
	for i := range w.pngs {
		paths = append(paths, imgtest.WriteFile(b, dir, fmt.Sprintf("still_%03d.png", i), still))
	}

	if w.gifs > 0 {
		delays := make([]int, w.frames)
		for i := range delays {
			delays[i] = 4
		}
		anim := imgtest.AnimatedGIF(b, w.frames, w.side, w.side, delays)
		for i := range w.gifs {
			paths = append(paths, imgtest.WriteFile(b, dir, fmt.Sprintf("anim_%03d.gif", i), anim))
		}
	}
	return paths
}

func newBenchLoader(workers int, opts ...loader.Option) *loader.Loader {
	opts = append([]loader.Option{
		loader.WithWorkerCount(workers),
		loader.WithLogger(log.New(io.Discard, "", 0)),
	}, opts...)
	return loader.New(opts...)
}

// loadAll submits every path and blocks until each reached its terminal
// event. It returns the submit-to-terminal latency of each request.
func loadAll(b *testing.B, l *loader.Loader, paths []string) []time.Duration {
	b.Helper()
	submitted := make([]time.Time, len(paths))
	latencies := make([]time.Duration, 0, len(paths))

	for i, p := range paths {
		submitted[i] = time.Now()
		if err := l.SubmitPath(uint32(i), p); err != nil {
			b.Fatal(err)
		}
	}

	ctx := context.Background()
	for len(latencies) < len(paths) {
		res, err := l.Next(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if res.IsFailed() {
			b.Fatalf("decode %s: %v", paths[res.ID()], res.Err)
		}
		if res.IsTerminal() {
			latencies = append(latencies, time.Since(submitted[res.ID()]))
		}
	}
	return latencies
}

func reportThroughput(b *testing.B, files int, workers int) {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	filesPerSec := (float64(files) / nsPerOp) * 1e9

	b.ReportMetric(filesPerSec, "files/sec")
	if workers > 0 {
		b.ReportMetric(filesPerSec/float64(workers), "files/sec/worker")
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// Nearest-rank: p=0.50 over 100 samples picks index 49.
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
