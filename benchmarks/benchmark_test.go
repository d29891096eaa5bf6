package benchmarks

import (
	"bytes"
	"fmt"
	"image"
	"runtime"
	"testing"
	"time"

	"github.com/utkarsh5026/imgpool/internal/decode"
	"github.com/utkarsh5026/imgpool/internal/imgtest"
	"github.com/utkarsh5026/imgpool/internal/queue"
	"github.com/utkarsh5026/imgpool/loader"
	"github.com/utkarsh5026/imgpool/texture"
)

// =============================================================================
// Throughput Benchmarks
// =============================================================================

func BenchmarkLoader_ThroughputWorkerScaling(b *testing.B) {
	workerCounts := []int{1, 2, 4, 8, 16}
	w := workloadConfig{name: "Mixed", pngs: 48, gifs: 8, side: 96, frames: 6}
	paths := writeWorkload(b, w)

	for _, workers := range workerCounts {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			l := newBenchLoader(workers)
			defer l.Close()

			b.ResetTimer()
			for range b.N {
				loadAll(b, l, paths)
			}
			b.StopTimer()

			reportThroughput(b, len(paths), workers)
		})
	}
}

func BenchmarkLoader_Workloads(b *testing.B) {
	workers := runtime.GOMAXPROCS(0)

	for _, w := range getWorkloads() {
		b.Run(w.name, func(b *testing.B) {
			paths := writeWorkload(b, w)
			l := newBenchLoader(workers)
			defer l.Close()

			b.ResetTimer()
			for range b.N {
				loadAll(b, l, paths)
			}
			b.StopTimer()

			reportThroughput(b, len(paths), 0)
		})
	}
}

func BenchmarkLoader_PinnedWorkers(b *testing.B) {
	workers := min(runtime.NumCPU(), 8)
	paths := writeWorkload(b, workloadConfig{pngs: 64, side: 128})

	for _, pin := range []bool{false, true} {
		b.Run(fmt.Sprintf("pin_%t", pin), func(b *testing.B) {
			l := newBenchLoader(workers, loader.WithCPUAffinity(pin))
			defer l.Close()

			b.ResetTimer()
			for range b.N {
				loadAll(b, l, paths)
			}
			b.StopTimer()

			reportThroughput(b, len(paths), workers)
		})
	}
}

// =============================================================================
// Latency Benchmarks
// =============================================================================

func BenchmarkLoader_Latency(b *testing.B) {
	paths := writeWorkload(b, workloadConfig{pngs: 32, gifs: 8, side: 64, frames: 4})

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			l := newBenchLoader(workers)
			defer l.Close()

			var all []time.Duration
			b.ResetTimer()
			for range b.N {
				all = append(all, loadAll(b, l, paths)...)
			}
			b.StopTimer()

			b.ReportMetric(float64(percentile(all, 0.50).Microseconds()), "p50_µs")
			b.ReportMetric(float64(percentile(all, 0.95).Microseconds()), "p95_µs")
			b.ReportMetric(float64(percentile(all, 0.99).Microseconds()), "p99_µs")
		})
	}
}

// =============================================================================
// Component Benchmarks
// =============================================================================

func BenchmarkQueue_PushPop(b *testing.B) {
	q := queue.New[int]()
	defer q.Close()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = q.Push(i)
			q.TryPop()
			i++
		}
	})
}

func BenchmarkDecode_GIFFrames(b *testing.B) {
	delays := []int{2, 2, 2, 2, 2, 2, 2, 2}
	data := imgtest.AnimatedGIF(b, len(delays), 128, 128, delays)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for range b.N {
		frames, err := decode.NewGIFFrames(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := frames.Next(); err != nil {
				break
			}
		}
	}
}

func BenchmarkDecode_Sniff(b *testing.B) {
	data := imgtest.PNG(b, 64, 64)
	prefix := data[:min(len(data), decode.SniffLen)]

	b.ResetTimer()
	for range b.N {
		if decode.Sniff(prefix) != decode.FormatPNG {
			b.Fatal("wrong format")
		}
	}
}

func BenchmarkTexture_FromImage(b *testing.B) {
	sizes := []int{64, 256, 1024}

	for _, side := range sizes {
		b.Run(fmt.Sprintf("%dx%d", side, side), func(b *testing.B) {
			img := image.NewRGBA(image.Rect(0, 0, side, side))
			dev := &texture.MemoryDevice{}

			b.SetBytes(int64(len(img.Pix)))
			b.ResetTimer()
			for range b.N {
				tex, err := texture.FromImage(dev, img)
				if err != nil {
					b.Fatal(err)
				}
				tex.(*texture.MemoryTexture).Release()
			}
		})
	}
}
