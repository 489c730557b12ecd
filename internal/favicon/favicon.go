// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package favicon generates a favicon bundle from a single large PNG image.

The bundle consists of:

	favicon.ico                 16, 32 and 48 pixel icons
	favicon-16x16.png
	favicon-32x32.png
	apple-touch-icon.png        180x180
	android-chrome-192x192.png
	android-chrome-512x512.png
	mstile-150x150.png
	manifest.json               web app manifest
	manifest.webapp             Firefox OS app manifest
	browserconfig.xml           Windows tile configuration

Favicons are a convenience: [Generate] never fails. Whatever goes wrong is
reported as a [Skipped] result.
*/
package favicon

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"go.astrophena.name/logokit/internal/ico"
	"go.astrophena.name/logokit/internal/minifier"
	"go.astrophena.name/logokit/internal/raster"
	"go.astrophena.name/logokit/internal/variant"
)

// Meta is the branding information written into the manifests.
type Meta struct {
	AppName        string
	AppDescription string
	DeveloperName  string
	DeveloperURL   string
	Background     string
	ThemeColor     string
	URL            string
	Display        string
	Orientation    string
	Version        string
}

// Default is the branding used for the logo assets.
var Default = Meta{
	AppName:        "PyroCMS",
	AppDescription: "Built for everyone",
	DeveloperName:  "Ryan Thompson",
	DeveloperURL:   "https://github.com/RyanThompson",
	Background:     "#fff",
	ThemeColor:     variant.Brand,
	URL:            "http://pyrocms.com/",
	Display:        "standalone",
	Orientation:    "portrait",
	Version:        "1.0",
}

// Status is the outcome of [Generate].
type Status int

// Possible statuses.
const (
	Done Status = iota
	Skipped
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result describes a favicon bundle.
type Result struct {
	// Status is Done if the whole bundle was written.
	Status Status
	// Files are names of written files, relative to the bundle directory.
	// When Status is Skipped, these are the files written before the failure.
	Files []string
	// Err is the reason the bundle was skipped.
	Err error
}

type icon struct {
	name string
	size int
}

var icons = []icon{
	{"favicon-16x16.png", 16},
	{"favicon-32x32.png", 32},
	{"apple-touch-icon.png", 180},
	{"android-chrome-192x192.png", 192},
	{"android-chrome-512x512.png", 512},
	{"mstile-150x150.png", 150},
}

var icoSizes = []int{16, 32, 48}

// Generate reads the PNG image src and writes the favicon bundle to dir.
func Generate(ctx context.Context, src, dir string, meta Meta, m *minifier.Minifier) Result {
	g := &generator{dir: dir, meta: meta, min: m}
	if err := g.run(ctx, src); err != nil {
		return Result{Status: Skipped, Files: g.files, Err: err}
	}
	return Result{Status: Done, Files: g.files}
}

type generator struct {
	dir   string
	meta  Meta
	min   *minifier.Minifier
	files []string
}

func (g *generator) run(ctx context.Context, src string) error {
	img, err := raster.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return err
	}

	for _, ic := range icons {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := raster.WriteFile(filepath.Join(g.dir, ic.name), raster.Resize(img, ic.size, ic.size)); err != nil {
			return err
		}
		g.files = append(g.files, ic.name)
	}

	var ims []image.Image
	for _, size := range icoSizes {
		ims = append(ims, raster.Resize(img, size, size))
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, ims...); err != nil {
		return err
	}
	if err := g.write("favicon.ico", buf.Bytes()); err != nil {
		return err
	}

	for _, f := range []struct {
		name      string
		mediaType string
		build     func() ([]byte, error)
	}{
		{"manifest.json", minifier.JSON, g.webManifest},
		{"manifest.webapp", minifier.JSON, g.firefoxManifest},
		{"browserconfig.xml", minifier.XML, g.browserConfig},
	} {
		b, err := f.build()
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		if b, err = g.min.Bytes(f.mediaType, b); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		if err := g.write(f.name, b); err != nil {
			return err
		}
	}

	return nil
}

func (g *generator) write(name string, b []byte) error {
	if err := os.WriteFile(filepath.Join(g.dir, name), b, 0o644); err != nil {
		return err
	}
	g.files = append(g.files, name)
	return nil
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// pick returns the icons with given names, in bundle order.
func pick(names ...string) []icon {
	var picked []icon
	for _, ic := range icons {
		if slices.Contains(names, ic.name) {
			picked = append(picked, ic)
		}
	}
	return picked
}

func (g *generator) webManifest() ([]byte, error) {
	var mi []manifestIcon
	for _, ic := range pick("android-chrome-192x192.png", "android-chrome-512x512.png") {
		mi = append(mi, manifestIcon{
			Src:   ic.name,
			Sizes: fmt.Sprintf("%dx%d", ic.size, ic.size),
			Type:  "image/png",
		})
	}
	return json.Marshal(struct {
		Name            string         `json:"name"`
		ShortName       string         `json:"short_name"`
		Description     string         `json:"description"`
		Display         string         `json:"display"`
		Orientation     string         `json:"orientation"`
		StartURL        string         `json:"start_url"`
		BackgroundColor string         `json:"background_color"`
		ThemeColor      string         `json:"theme_color"`
		Icons           []manifestIcon `json:"icons"`
	}{
		Name:            g.meta.AppName,
		ShortName:       g.meta.AppName,
		Description:     g.meta.AppDescription,
		Display:         g.meta.Display,
		Orientation:     g.meta.Orientation,
		StartURL:        g.meta.URL,
		BackgroundColor: g.meta.Background,
		ThemeColor:      g.meta.ThemeColor,
		Icons:           mi,
	})
}

func (g *generator) firefoxManifest() ([]byte, error) {
	type developer struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	fi := make(map[string]string)
	for _, ic := range pick("favicon-16x16.png", "favicon-32x32.png", "android-chrome-192x192.png", "android-chrome-512x512.png") {
		fi[strconv.Itoa(ic.size)] = ic.name
	}
	return json.Marshal(struct {
		Version     string            `json:"version"`
		Name        string            `json:"name"`
		Description string            `json:"description"`
		LaunchPath  string            `json:"launch_path"`
		Icons       map[string]string `json:"icons"`
		Developer   developer         `json:"developer"`
	}{
		Version:     g.meta.Version,
		Name:        g.meta.AppName,
		Description: g.meta.AppDescription,
		LaunchPath:  "/",
		Icons:       fi,
		Developer:   developer{Name: g.meta.DeveloperName, URL: g.meta.DeveloperURL},
	})
}

func (g *generator) browserConfig() ([]byte, error) {
	type tile struct {
		Logo struct {
			Src string `xml:"src,attr"`
		} `xml:"square150x150logo"`
		TileColor string `xml:"TileColor"`
	}
	var bc struct {
		XMLName xml.Name `xml:"browserconfig"`
		Tile    tile     `xml:"msapplication>tile"`
	}
	bc.Tile.Logo.Src = "mstile-150x150.png"
	bc.Tile.TileColor = g.meta.Background

	b, err := xml.Marshal(bc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}
