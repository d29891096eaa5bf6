package main

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/utkarsh5026/imgpool/loader"
	"github.com/utkarsh5026/imgpool/texture"
)

// fileReport is everything the loader told us about one file.
type fileReport struct {
	Path     string
	Format   string
	Size     int64
	Width    int
	Height   int
	Frames   int
	Duration time.Duration
	Mipmaps  int
	Elapsed  time.Duration
	Err      error
}

func (r fileReport) Failed() bool {
	return r.Err != nil
}

type releaser interface {
	Release()
}

// run submits every path, then drains results until each request reached
// its terminal event. The first frame of every file is uploaded to dev when
// dev is non-nil. bar may be nil.
func run(ctx context.Context, l *loader.Loader, paths []string, dev texture.Device, bar *progressbar.ProgressBar) ([]fileReport, error) {
	reports := make([]fileReport, len(paths))
	submitted := make([]time.Time, len(paths))

	for i, path := range paths {
		reports[i].Path = path
		submitted[i] = time.Now()
		if err := l.SubmitPath(uint32(i), path); err != nil {
			return nil, fmt.Errorf("submit %s: %w", path, err)
		}
	}

	for remaining := len(paths); remaining > 0; {
		res, err := l.Next(ctx)
		if err != nil {
			return reports, err
		}

		id := int(res.ID())
		if id >= len(reports) {
			continue
		}
		rep := &reports[id]

		switch res.Kind {
		case loader.ResultStart:
			rep.Format = res.Format
			if res.Metadata != nil {
				rep.Size = res.Metadata.Size()
			}

		case loader.ResultFrame:
			rep.Frames++
			rep.Duration += res.Delay
			if rep.Frames == 1 {
				b := res.Image.Bounds()
				rep.Width, rep.Height = b.Dx(), b.Dy()
				if dev != nil {
					rep.Mipmaps, rep.Err = upload(dev, res)
				}
			}

		case loader.ResultDone, loader.ResultFailed:
			if res.Err != nil {
				rep.Err = res.Err
			}
			rep.Elapsed = time.Since(submitted[id])
			remaining--
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}

	return reports, nil
}

func upload(dev texture.Device, res loader.LoadResult) (int, error) {
	tex, err := texture.FromImage(dev, res.Image)
	if err != nil {
		return 0, fmt.Errorf("texture: %w", err)
	}
	if r, ok := tex.(releaser); ok {
		defer r.Release()
	}
	return tex.MipmapLevels(), nil
}
