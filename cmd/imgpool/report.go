package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/utkarsh5026/imgpool/loader"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func renderReport(w io.Writer, root string, reports []fileReport) error {
	table := tablewriter.NewWriter(w)
	table.Header("File", "Format", "Size", "Dimensions", "Frames", "Length", "Mips", "Time", "Status")

	for _, r := range reports {
		name := r.Path
		if rel, err := filepath.Rel(root, r.Path); err == nil {
			name = rel
		}

		status := green.Sprint("ok")
		if r.Failed() {
			status = red.Sprint(r.Err.Error())
		}

		if err := table.Append(
			name,
			orDash(r.Format),
			formatBytes(r.Size),
			formatDims(r.Width, r.Height),
			strconv.Itoa(r.Frames),
			formatLength(r),
			formatMips(r.Mipmaps),
			r.Elapsed.Round(time.Microsecond).String(),
			status,
		); err != nil {
			return err
		}
	}

	return table.Render()
}

func printSummary(w io.Writer, stats loader.Stats, workers int, elapsed time.Duration) {
	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  • %d files on %d workers in %v\n", stats.Submitted, workers, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  • %d frames decoded\n", stats.Frames)
	_, _ = green.Fprintf(w, "  • %d done\n", stats.Done)
	if stats.Failed > 0 {
		_, _ = red.Fprintf(w, "  • %d failed\n", stats.Failed)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatDims(w, h int) string {
	if w == 0 || h == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func formatLength(r fileReport) string {
	if r.Frames < 2 {
		return "-"
	}
	return r.Duration.String()
}

func formatMips(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
