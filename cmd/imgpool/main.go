// Command imgpool decodes every supported image under a directory on the
// loader's worker pool and prints a per-file report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/utkarsh5026/imgpool/loader"
	"github.com/utkarsh5026/imgpool/texture"
)

func isCIMode(ciFlag bool) bool {
	if ciFlag {
		return true
	}

	ciEnvVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "JENKINS_HOME"}
	for _, env := range ciEnvVars {
		value := os.Getenv(env)
		if value == "true" || value == "1" {
			return true
		}
	}
	return false
}

func main() {
	dirFlag := flag.String("dir", ".", "Directory to scan for images")
	workersFlag := flag.Int("workers", 0, "Number of decode workers (0 = GOMAXPROCS)")
	pinFlag := flag.Bool("pin", false, "Pin each worker thread to a CPU")
	rateFlag := flag.Float64("rate", 0, "Max decodes started per second (0 = unlimited)")
	texturesFlag := flag.Bool("textures", true, "Upload first frames to an in-memory texture device")
	budgetFlag := flag.Int("budget", 0, "Texture memory budget in bytes (0 = unlimited)")
	timeoutFlag := flag.Duration("shutdown-timeout", 5*time.Second, "How long to wait for workers on exit")
	ciModeFlag := flag.Bool("ci", false, "CI mode: disable progress bar")
	flag.Parse()

	ciMode := isCIMode(*ciModeFlag)
	logger := log.New(os.Stderr, "[imgpool] ", log.LstdFlags)

	paths, err := collectImages(*dirFlag)
	if err != nil {
		logger.Fatalf("scan %s: %v", *dirFlag, err)
	}
	if len(paths) == 0 {
		fmt.Printf("No supported images under %s\n", *dirFlag)
		return
	}

	workers := *workersFlag
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	opts := []loader.Option{
		loader.WithWorkerCount(workers),
		loader.WithCPUAffinity(*pinFlag),
		loader.WithLogger(logger),
	}
	if *rateFlag > 0 {
		opts = append(opts, loader.WithRateLimit(*rateFlag, max(1, workers)))
	}
	l := loader.New(opts...)

	var dev texture.Device
	if *texturesFlag {
		dev = &texture.MemoryDevice{Budget: *budgetFlag}
	}

	_, _ = bold.Printf("Decoding %d images on %d workers\n", len(paths), workers)

	var bar *progressbar.ProgressBar
	if !ciMode {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Decoding"),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "│",
				BarEnd:        "│",
			}),
			progressbar.OptionEnableColorCodes(true),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	reports, runErr := run(ctx, l, paths, dev, bar)
	elapsed := time.Since(start)

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if err := l.Shutdown(*timeoutFlag); err != nil {
		logger.Printf("shutdown: %v", err)
	}

	if runErr != nil {
		logger.Printf("stopped early: %v", runErr)
	}

	fmt.Println()
	if err := renderReport(os.Stdout, *dirFlag, reports); err != nil {
		_, _ = red.Println("Error in rendering report table")
	}
	printSummary(os.Stdout, l.Stats(), workers, elapsed)

	if l.Stats().Failed > 0 || runErr != nil {
		stop()
		os.Exit(1)
	}
}
