// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"go.astrophena.name/base/testutil"
	"go.astrophena.name/base/txtar"
	"go.astrophena.name/logokit/internal/favicon"
	"go.astrophena.name/logokit/internal/raster"
	"go.astrophena.name/logokit/internal/variant"

	"github.com/PuerkitoBio/goquery"
)

// lookup returns a default variant with its sizes replaced.
func lookup(t *testing.T, name string, sizes ...int) variant.Variant {
	t.Helper()
	v, ok := variant.Lookup(variant.Default, name)
	if !ok {
		t.Fatalf("no default variant %q", name)
	}
	v.Sizes = sizes
	return v
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	} else if err != nil {
		t.Fatal(err)
	}
	return true
}

func readDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

var numRe = regexp.MustCompile(`-?(\d+\.?\d*|\.\d+)`)

// viewBox parses the viewBox of the SVG file at path. Minified files don't
// always separate numbers with spaces.
func viewBox(t *testing.T, path string) []float64 {
	t.Helper()
	attr, ok := readDoc(t, path).Find("svg").First().Attr("viewBox")
	if !ok {
		t.Fatalf("%s: no viewBox", path)
	}
	var nums []float64
	for _, s := range numRe.FindAllString(attr, -1) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatal(err)
		}
		nums = append(nums, f)
	}
	return nums
}

func imageSize(t *testing.T, path string) image.Point {
	t.Helper()
	img, err := raster.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return img.Bounds().Size()
}

// pixel returns the color of the pixel at (x, y) of the PNG file at path.
func pixel(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	img, err := raster.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// isColor reports whether c is mostly opaque and close to the color hex,
// written as #rrggbb.
func isColor(t *testing.T, c color.NRGBA, hex string) bool {
	t.Helper()
	n, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		t.Fatal(err)
	}
	want := [3]int{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}
	got := [3]int{int(c.R), int(c.G), int(c.B)}
	for i := range want {
		if d := want[i] - got[i]; d > 16 || d < -16 {
			return false
		}
	}
	return c.A >= 0x80
}

func TestStages(t *testing.T) {
	testutil.AssertEqual(t, Stages(), []string{"svg", "png", "favicons", "sprites", "preview"})
}

func TestBuildCustom(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "custom.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	src, dst := t.TempDir(), t.TempDir()
	testutil.ExtractTxtar(t, ar, src)

	res, err := Build(t.Context(), &Config{
		Src:          src,
		Dst:          dst,
		VariantsFile: filepath.Join(src, "variants.star"),
	})
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, res.Manifest.SVG, []string{"dot.svg", "logo-inverted.svg"})
	testutil.AssertEqual(t, res.Manifest.PNG, []PNGFile{
		{Name: "dot_16", Height: 16},
		{Name: "dot_16@2x", Height: 16},
		{Name: "dot_32", Height: 32},
		{Name: "dot_32@2x", Height: 32},
		{Name: "logo-inverted_512", Height: 512},
		{Name: "logo-inverted_512@2x", Height: 512},
	})

	sizes := map[string]image.Point{
		"dot_16.png":               {16, 16},
		"dot_16@2x.png":            {32, 32},
		"dot_32.png":               {32, 32},
		"dot_32@2x.png":            {64, 64},
		"logo-inverted_512.png":    {512, 512},
		"logo-inverted_512@2x.png": {1024, 1024},
	}
	for name, want := range sizes {
		testutil.AssertEqual(t, imageSize(t, filepath.Join(dst, "png", name)), want)
	}

	if res.Favicon == nil || res.Favicon.Status != favicon.Done {
		t.Fatalf("favicons weren't built: %+v", res.Favicon)
	}
	if !exists(t, filepath.Join(dst, "ico", "favicon.ico")) {
		t.Fatal("favicon.ico is missing")
	}

	testutil.AssertEqual(t, res.Sprite.IDs, []string{"dot", "logo-inverted"})
	testutil.AssertEqual(t, len(res.Stale), 0)

	doc := readDoc(t, filepath.Join(dst, "index.html"))
	testutil.AssertEqual(t, doc.Find("li.svg").Length(), len(res.Manifest.SVG))
	png := doc.Find("li.png")
	testutil.AssertEqual(t, png.Length(), len(res.Manifest.PNG))
	testutil.AssertEqual(t, png.First().Text(), "dot_16.png")
	testutil.AssertEqual(t, png.Eq(1).AttrOr("data-height", ""), "16")
	testutil.AssertEqual(t, png.Last().Text(), "logo-inverted_512@2x.png")
}

func TestBuildDefaultTemplates(t *testing.T) {
	dst := t.TempDir()
	res, err := Build(t.Context(), &Config{
		Dst: dst,
		Variants: []variant.Variant{
			lookup(t, "logo", 16),
			lookup(t, "logo-text", 16),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// A scale of 0.1 grows the viewBox by 90% around the center.
	logo := viewBox(t, filepath.Join(dst, "svg", "logo.svg"))
	testutil.AssertEqual(t, logo, []float64{-230.4, -230.4, 972.8, 972.8})
	text := viewBox(t, filepath.Join(dst, "svg", "logo-text.svg"))
	testutil.AssertEqual(t, text, []float64{-351.25, -128, 2107.5, 768})

	testutil.AssertEqual(t, imageSize(t, filepath.Join(dst, "png", "logo_16.png")), image.Pt(16, 16))
	testutil.AssertEqual(t, imageSize(t, filepath.Join(dst, "png", "logo_16@2x.png")), image.Pt(32, 32))
	testutil.AssertEqual(t, imageSize(t, filepath.Join(dst, "png", "logo-text_16.png")), image.Pt(44, 16))
	testutil.AssertEqual(t, imageSize(t, filepath.Join(dst, "png", "logo-text_16@2x.png")), image.Pt(88, 32))

	// There's no logo-inverted variant, so favicons have no source. The rest
	// of the build goes on.
	if res.Favicon == nil || res.Favicon.Status != favicon.Skipped {
		t.Fatalf("want skipped favicons, got %+v", res.Favicon)
	}
	if !errors.Is(res.Favicon.Err, fs.ErrNotExist) {
		t.Fatalf("want favicons skipped because of a missing file, got %v", res.Favicon.Err)
	}
	if exists(t, filepath.Join(dst, "ico", "favicon.ico")) {
		t.Fatal("favicon.ico is written, but favicons were skipped")
	}
	for _, path := range []string{
		filepath.Join("sprite", "symbol", "svg", "sprite.symbol.svg"),
		filepath.Join("sprite", "view", "svg", "sprite.view.svg"),
		filepath.Join("sprite", "view", "sprite.css"),
		"index.html",
	} {
		if !exists(t, filepath.Join(dst, path)) {
			t.Errorf("%s is missing", path)
		}
	}

	doc := readDoc(t, filepath.Join(dst, "index.html"))
	testutil.AssertEqual(t, doc.Find("ul.svg img").Length(), 2)
	testutil.AssertEqual(t, doc.Find("ul.svg img").First().AttrOr("src", ""), "svg/logo.svg")
	png := doc.Find("ul.png img")
	testutil.AssertEqual(t, png.Length(), 4)
	testutil.AssertEqual(t, png.Eq(1).AttrOr("src", ""), "png/logo_16@2x.png")
	testutil.AssertEqual(t, png.Eq(1).AttrOr("height", ""), "16")
}

func TestBuildShrunkSymbol(t *testing.T) {
	dst := t.TempDir()
	res, err := Build(t.Context(), &Config{
		Dst:   dst,
		Stage: "favicons",
		Variants: []variant.Variant{
			lookup(t, "logo-inverted", 512),
			lookup(t, "logo", 16),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Favicon.Status != favicon.Done {
		t.Fatalf("favicons were skipped: %v", res.Favicon.Err)
	}

	// The symbol covers the middle of the canvas, and its letter is drawn
	// right under the center.
	logo := filepath.Join(dst, "png", "logo_16.png")
	if c := pixel(t, logo, 7, 7); !isColor(t, c, variant.Brand) {
		t.Errorf("logo_16.png center: want %s, got %v", variant.Brand, c)
	}
	for _, p := range []image.Point{{0, 0}, {15, 0}, {0, 15}, {15, 15}} {
		if c := pixel(t, logo, p.X, p.Y); c.A != 0 {
			t.Errorf("logo_16.png corner %v: want transparent, got %v", p, c)
		}
	}

	inverted := filepath.Join(dst, "png", "logo-inverted_512@2x.png")
	if c := pixel(t, inverted, 2, 2); !isColor(t, c, variant.Brand) {
		t.Errorf("logo-inverted_512@2x.png corner: want %s, got %v", variant.Brand, c)
	}
	if c := pixel(t, inverted, 512, 512); !isColor(t, c, variant.White) {
		t.Errorf("logo-inverted_512@2x.png center: want %s, got %v", variant.White, c)
	}

	icon := filepath.Join(dst, "ico", "favicon-32x32.png")
	if c := pixel(t, icon, 0, 0); !isColor(t, c, variant.Brand) {
		t.Errorf("favicon-32x32.png corner: want %s, got %v", variant.Brand, c)
	}
	if c := pixel(t, icon, 16, 16); c.A != 0xff {
		t.Errorf("favicon-32x32.png center: want opaque, got %v", c)
	}
}

func TestBuildDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("rasterizing the default table is slow")
	}

	dst := t.TempDir()
	res, err := Build(t.Context(), &Config{Dst: dst})
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, len(res.Manifest.SVG), len(variant.Default))
	testutil.AssertEqual(t, len(res.Manifest.PNG), 2*len(variant.DefaultSizes)*len(variant.Default))
	entries, err := os.ReadDir(filepath.Join(dst, "png"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, len(entries), len(res.Manifest.PNG))

	if res.Favicon.Status != favicon.Done {
		t.Fatalf("favicons were skipped: %v", res.Favicon.Err)
	}
	testutil.AssertEqual(t, len(res.Sprite.IDs), len(variant.Default))
}

func TestBuildStages(t *testing.T) {
	cases := map[string]struct {
		stage     string
		wantErr   error
		wantFiles []string
		noFiles   []string
	}{
		"svg": {
			stage:     "svg",
			wantFiles: []string{filepath.Join("svg", "logo.svg")},
			noFiles:   []string{"png", "ico", "sprite", "index.html"},
		},
		"png": {
			stage:     "png",
			wantFiles: []string{filepath.Join("png", "logo_16@2x.png")},
			noFiles:   []string{"ico", "sprite", "index.html"},
		},
		"sprites": {
			stage:     "sprites",
			wantFiles: []string{filepath.Join("sprite", "view", "sprite.css")},
			noFiles:   []string{"index.html"},
		},
		"preview": {
			stage:     "preview",
			wantFiles: []string{"index.html"},
		},
		"unknown": {
			stage:   "deploy",
			wantErr: errUnknownStage,
			noFiles: []string{"svg"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dst := t.TempDir()
			_, err := Build(t.Context(), &Config{
				Dst:      dst,
				Stage:    tc.stage,
				Variants: []variant.Variant{lookup(t, "logo", 16)},
			})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want error %v, got %v", tc.wantErr, err)
				}
			} else if err != nil {
				t.Fatal(err)
			}
			for _, f := range tc.wantFiles {
				if !exists(t, filepath.Join(dst, f)) {
					t.Errorf("%s is missing", f)
				}
			}
			for _, f := range tc.noFiles {
				if exists(t, filepath.Join(dst, f)) {
					t.Errorf("%s exists, but stage %q comes before it", f, tc.stage)
				}
			}
		})
	}
}

func TestBuildStaleSprites(t *testing.T) {
	dst := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dst, "svg"), 0o755); err != nil {
		t.Fatal(err)
	}
	const old = `<svg xmlns="http://www.w3.org/2000/svg" width="8" height="8" viewBox="0 0 8 8"><rect width="8" height="8"/></svg>`
	if err := os.WriteFile(filepath.Join(dst, "svg", "old.svg"), []byte(old), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Build(t.Context(), &Config{
		Dst:      dst,
		Variants: []variant.Variant{lookup(t, "logo", 16)},
	})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, res.Sprite.IDs, []string{"logo", "old"})
	testutil.AssertEqual(t, res.Stale, []string{"old"})
	testutil.AssertEqual(t, res.Manifest.SVG, []string{"logo.svg"})
}

func TestBuildIdempotent(t *testing.T) {
	dst := t.TempDir()
	c := &Config{
		Dst:      dst,
		Variants: []variant.Variant{lookup(t, "logo-text-inverted", 16)},
	}

	read := func() map[string][]byte {
		files := make(map[string][]byte)
		for _, path := range []string{
			filepath.Join("svg", "logo-text-inverted.svg"),
			filepath.Join("sprite", "view", "sprite.css"),
			"index.html",
		} {
			b, err := os.ReadFile(filepath.Join(dst, path))
			if err != nil {
				t.Fatal(err)
			}
			files[path] = b
		}
		return files
	}

	if _, err := Build(t.Context(), c); err != nil {
		t.Fatal(err)
	}
	first := read()
	if _, err := Build(t.Context(), c); err != nil {
		t.Fatal(err)
	}
	for path, b := range read() {
		if !bytes.Equal(b, first[path]) {
			t.Errorf("%s differs between builds", path)
		}
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	cases := map[string]struct {
		c         *Config
		wantErrIs error
	}{
		"no variants": {
			c:         &Config{Variants: []variant.Variant{}},
			wantErrIs: errNoVariants,
		},
		"duplicate variants": {
			c: &Config{Variants: []variant.Variant{{Name: "logo"}, {Name: "logo"}}},
		},
		"missing templates": {
			c:         &Config{Src: filepath.Join("testdata", "missing")},
			wantErrIs: fs.ErrNotExist,
		},
		"missing variants file": {
			c:         &Config{VariantsFile: filepath.Join("testdata", "missing.star")},
			wantErrIs: fs.ErrNotExist,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dst := t.TempDir()
			tc.c.Dst = dst
			_, err := Build(t.Context(), tc.c)
			if err == nil {
				t.Fatal("want an error, got nil")
			}
			if tc.wantErrIs != nil && !errors.Is(err, tc.wantErrIs) {
				t.Fatalf("want %v, got %v", tc.wantErrIs, err)
			}
			if exists(t, filepath.Join(dst, "svg")) {
				t.Fatal("files are written despite an invalid configuration")
			}
		})
	}
}

func TestPNGJobs(t *testing.T) {
	b, err := newBuildContext(t.Context(), &Config{
		Dst: "out",
		Variants: []variant.Variant{
			lookup(t, "logo-text-full", 512, 16),
			lookup(t, "logo", 32),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	type size struct {
		name string
		w, h int
	}
	var got []size
	for _, job := range b.pngJobs() {
		got = append(got, size{job.file.Name, job.width, job.height})
	}
	testutil.AssertEqual(t, got, []size{
		{"logo-text-full_512", 1405, 512},
		{"logo-text-full_512@2x", 2810, 1024},
		{"logo-text-full_16", 44, 16},
		{"logo-text-full_16@2x", 88, 32},
		{"logo_32", 32, 32},
		{"logo_32@2x", 64, 64},
	})
	testutil.AssertEqual(t, b.pngJobs()[0].src, filepath.Join("out", "svg", "logo-text-full.svg"))
	testutil.AssertEqual(t, b.pngJobs()[5].dst, filepath.Join("out", "png", "logo_32@2x.png"))
}

func TestPNGFileFilename(t *testing.T) {
	testutil.AssertEqual(t, PNGFile{Name: "logo_16@2x", Height: 16}.Filename(), "logo_16@2x.png")
}
