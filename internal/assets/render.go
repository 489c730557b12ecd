// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"go.astrophena.name/base/logger"
	"go.astrophena.name/logokit/internal/minifier"
	"go.astrophena.name/logokit/internal/raster"
	"go.astrophena.name/logokit/internal/variant"

	"golang.org/x/sync/errgroup"
)

func (b *buildContext) renderSVG(ctx context.Context) error {
	dir := filepath.Join(b.c.Dst, "svg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, v := range b.variants {
		if err := ctx.Err(); err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := b.logo.Execute(&buf, v); err != nil {
			return fmt.Errorf("%s: failed to execute template: %w", v.Name, err)
		}
		minified, err := b.min.Bytes(minifier.SVG, buf.Bytes())
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}

		name := v.Name + ".svg"
		if err := os.WriteFile(filepath.Join(dir, name), minified, 0o644); err != nil {
			return err
		}
		b.res.Manifest.SVG = append(b.res.Manifest.SVG, name)
	}

	logger.Info(ctx, "rendered SVG files", slog.Int("count", len(b.res.Manifest.SVG)))
	return nil
}

// pngJob is a single PNG file to rasterize.
type pngJob struct {
	src    string // path to the SVG file
	dst    string
	width  int
	height int
	file   PNGFile
}

// pngJobs returns rasterization jobs in manifest order: variant order, then
// size order, 1x before 2x.
func (b *buildContext) pngJobs() []pngJob {
	var jobs []pngJob
	for _, v := range b.variants {
		src := filepath.Join(b.c.Dst, "svg", v.Name+".svg")
		for _, h := range v.Sizes {
			scale := float64(h) / variant.BaseHeight
			for _, density := range []int{1, 2} {
				name := v.Name + "_" + strconv.Itoa(h)
				if density == 2 {
					name += "@2x"
				}
				w, ph := raster.Scale(v.Width, v.Height, scale*float64(density))
				jobs = append(jobs, pngJob{
					src:    src,
					dst:    filepath.Join(b.c.Dst, "png", name+".png"),
					width:  w,
					height: ph,
					file:   PNGFile{Name: name, Height: h},
				})
			}
		}
	}
	return jobs
}

func (b *buildContext) renderPNG(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(b.c.Dst, "png"), 0o755); err != nil {
		return err
	}

	jobs := b.pngJobs()
	files := make([]PNGFile, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := rasterizeFile(job); err != nil {
				return fmt.Errorf("%s: %w", job.file.Name, err)
			}
			files[i] = job.file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	b.res.Manifest.PNG = files
	logger.Info(ctx, "rendered PNG files", slog.Int("count", len(files)))
	return nil
}

func rasterizeFile(job pngJob) error {
	f, err := os.Open(job.src)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := raster.Rasterize(f, job.width, job.height)
	if err != nil {
		return err
	}
	return raster.WriteFile(job.dst, img)
}
