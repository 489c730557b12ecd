// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package assets builds the logo asset bundle.

# Directory Structure

A build writes the following files into the output directory:

	svg        One SVG file per variant, named after the variant.
	png        For each variant and each requested height h, a PNG file h
	           pixels high (<variant>_<h>.png) and one twice as high
	           (<variant>_<h>@2x.png).
	ico        Favicons, web app manifests and browserconfig.xml, derived
	           from png/logo-inverted_512@2x.png.
	sprite     SVG sprite sheets built from every SVG file in svg, plus a
	           stylesheet for the view sheet.
	index.html A preview page listing the SVG and PNG files of the build.

# Stages

The build runs as an ordered list of stages:

	svg       render the logo template for every variant
	png       rasterize the rendered SVG files
	favicons  package favicons; failures are logged and never fail the build
	sprites   assemble sprite sheets
	preview   write the preview page

Selecting a stage runs it and every stage before it.

# Templates

The source directory must contain two templates:

	logo.svg    executed with text/template against a resolved variant (see
	            [variant.Resolved]); the num function formats a coordinate
	index.html  executed with html/template against the [Manifest]

If no source directory is set, the templates compiled into the binary are
used.
*/
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	ttemplate "text/template"

	"go.astrophena.name/base/logger"
	"go.astrophena.name/logokit/internal/favicon"
	"go.astrophena.name/logokit/internal/minifier"
	"go.astrophena.name/logokit/internal/sprite"
	"go.astrophena.name/logokit/internal/variant"
	"go.astrophena.name/logokit/templates"
)

// Possible errors, used in tests.
var (
	errUnknownStage = errors.New("unknown stage")
	errNoVariants   = errors.New("no variants to build")
)

// Template file names in the source directory.
const (
	logoTemplate  = "logo.svg"
	indexTemplate = "index.html"
)

// FaviconSource is the PNG file, relative to the output directory, that
// favicons are derived from.
var FaviconSource = filepath.Join("png", "logo-inverted_512@2x.png")

// Config represents a build configuration.
type Config struct {
	// Src is the directory where to read templates from. If empty, uses the
	// compiled-in templates.
	Src string
	// Dst is the directory where to write files. If empty, uses the assets
	// directory.
	Dst string
	// Variants is the variant table. If nil, uses variant.Default.
	Variants []variant.Variant
	// VariantsFile is a Starlark file with the variant table. If set, it's
	// loaded on every build and takes precedence over Variants.
	VariantsFile string
	// Stage is the last stage to run. If empty, runs all stages.
	Stage string
	// Bust determines if the sprite URL in the sprite stylesheet should carry
	// a content hash.
	Bust bool
	// Favicon is the branding metadata of the favicon bundle. If zero, uses
	// favicon.Default.
	Favicon favicon.Meta
}

func (c *Config) setDefaults() {
	if c.Dst == "" {
		c.Dst = filepath.Join(".", "assets")
	}

	if c.Variants == nil {
		c.Variants = variant.Default
	}

	if c.Stage == "" {
		c.Stage = stages[len(stages)-1].name
	}

	if c.Favicon == (favicon.Meta{}) {
		c.Favicon = favicon.Default
	}
}

// Manifest lists files written by a build, in variant order.
type Manifest struct {
	// SVG are file names in the svg directory.
	SVG []string
	// PNG are files in the png directory.
	PNG []PNGFile
}

// PNGFile is a rasterized variant.
type PNGFile struct {
	// Name is <variant>_<height> or <variant>_<height>@2x.
	Name string
	// Height is the requested height. The @2x file is twice as high, but
	// is meant to be displayed at this height.
	Height int
}

// Filename returns the file name of f in the png directory.
func (f PNGFile) Filename() string { return f.Name + ".png" }

// Result describes a build.
type Result struct {
	// Manifest lists the rendered SVG and PNG files.
	Manifest Manifest
	// Favicon is the result of the favicons stage, or nil if it didn't run.
	Favicon *favicon.Result
	// Sprite is the result of the sprites stage, or nil if it didn't run.
	Sprite *sprite.Result
	// Stale are sprite ids whose SVG files weren't rendered by this build,
	// but were found in the svg directory and included in the sprites.
	Stale []string
}

type stage struct {
	name string
	run  func(b *buildContext, ctx context.Context) error
}

var stages = []stage{
	{"svg", (*buildContext).renderSVG},
	{"png", (*buildContext).renderPNG},
	{"favicons", (*buildContext).buildFavicons},
	{"sprites", (*buildContext).buildSprites},
	{"preview", (*buildContext).buildPreview},
}

// Stages returns the names of build stages in the order they run.
func Stages() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Build builds the asset bundle based on the provided [Config].
func Build(ctx context.Context, c *Config) (*Result, error) {
	c.setDefaults()

	last := slices.IndexFunc(stages, func(s stage) bool { return s.name == c.Stage })
	if last == -1 {
		return nil, fmt.Errorf("%w %q, want one of: %s", errUnknownStage, c.Stage, strings.Join(Stages(), ", "))
	}

	b, err := newBuildContext(ctx, c)
	if err != nil {
		return nil, err
	}

	for _, s := range stages[:last+1] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info(ctx, "running stage", slog.String("stage", s.name))
		if err := s.run(b, ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	return b.res, nil
}

type buildContext struct {
	c        *Config
	variants []variant.Resolved
	logo     *ttemplate.Template
	index    *template.Template
	min      *minifier.Minifier
	res      *Result
}

func newBuildContext(ctx context.Context, c *Config) (*buildContext, error) {
	vs := c.Variants
	if c.VariantsFile != "" {
		loaded, err := variant.Load(ctx, c.VariantsFile)
		if err != nil {
			return nil, err
		}
		vs = loaded
	}
	if len(vs) == 0 {
		return nil, errNoVariants
	}
	if err := variant.Validate(vs); err != nil {
		return nil, err
	}

	b := &buildContext{
		c:   c,
		min: minifier.New(),
		res: &Result{},
	}
	for _, v := range vs {
		b.variants = append(b.variants, variant.Resolve(v))
	}

	logo, err := b.readTemplate(logoTemplate, templates.Logo)
	if err != nil {
		return nil, err
	}
	b.logo, err = ttemplate.New(logoTemplate).Funcs(ttemplate.FuncMap{
		"num": variant.Num,
	}).Parse(string(logo))
	if err != nil {
		return nil, err
	}

	index, err := b.readTemplate(indexTemplate, templates.Index)
	if err != nil {
		return nil, err
	}
	b.index, err = template.New(indexTemplate).Parse(string(index))
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *buildContext) readTemplate(name string, fallback []byte) ([]byte, error) {
	if b.c.Src == "" {
		return fallback, nil
	}
	return os.ReadFile(filepath.Join(b.c.Src, name))
}

func (b *buildContext) write(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func (b *buildContext) buildFavicons(ctx context.Context) error {
	res := favicon.Generate(ctx,
		filepath.Join(b.c.Dst, FaviconSource),
		filepath.Join(b.c.Dst, "ico"),
		b.c.Favicon,
		b.min,
	)
	b.res.Favicon = &res

	if res.Status == favicon.Skipped {
		logger.Error(ctx, "skipped favicons", slog.Any("err", res.Err))
		return nil
	}
	logger.Info(ctx, "wrote favicons", slog.Int("files", len(res.Files)))
	return nil
}

func (b *buildContext) buildSprites(ctx context.Context) error {
	res, err := sprite.Build(ctx, sprite.Config{
		Src:  filepath.Join(b.c.Dst, "svg"),
		Dst:  filepath.Join(b.c.Dst, "sprite"),
		Bust: b.c.Bust,
		Min:  b.min,
	})
	if err != nil {
		return err
	}
	b.res.Sprite = res

	// Every SVG file on disk goes into the sprites, including ones left over
	// from builds with a different variant table.
	for _, id := range res.IDs {
		if slices.Contains(b.res.Manifest.SVG, id+".svg") {
			continue
		}
		b.res.Stale = append(b.res.Stale, id)
		logger.Info(ctx, "sprite includes an SVG file not rendered by this build", slog.String("id", id))
	}
	return nil
}

func (b *buildContext) buildPreview(ctx context.Context) error {
	var buf bytes.Buffer
	if err := b.index.Execute(&buf, b.res.Manifest); err != nil {
		return err
	}
	minified, err := b.min.Bytes(minifier.HTML, buf.Bytes())
	if err != nil {
		return err
	}
	path := filepath.Join(b.c.Dst, "index.html")
	if err := b.write(path, minified); err != nil {
		return err
	}
	logger.Info(ctx, "wrote preview", slog.String("path", path))
	return nil
}
