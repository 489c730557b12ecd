// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package sprite packs SVG files into sprite sheets.

Two sheets are written:

	symbol/svg/sprite.symbol.svg  every shape as a <symbol> with the file
	                              name as its id, for use with <use href="#id">
	view/svg/sprite.view.svg      shapes stacked vertically, each reachable
	                              through a <view> with id "<name>-view"
	view/sprite.css               .svg-<name> and .svg-<name>-dims rules
	                              that show a shape of the view sheet as a
	                              CSS background
*/
package sprite

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.astrophena.name/logokit/internal/minifier"
	"go.astrophena.name/logokit/internal/variant"

	svg "github.com/ajstarks/svgo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Output paths, relative to the sprite directory.
var (
	SymbolPath = filepath.Join("symbol", "svg", "sprite.symbol.svg")
	ViewPath   = filepath.Join("view", "svg", "sprite.view.svg")
	CSSPath    = filepath.Join("view", "sprite.css")
)

// viewURL is the URL of the view sheet relative to the stylesheet.
const viewURL = "svg/sprite.view.svg"

var errNoRoot = errors.New("no <svg> element")

// Config configures a sprite build.
type Config struct {
	// Src is the directory containing the SVG files. Every *.svg file in it
	// is included, whether or not the current build produced it.
	Src string
	// Dst is the directory where sprites are written.
	Dst string
	// Bust appends a content hash to the sheet URL in the stylesheet.
	Bust bool
	// Min minifies the written sheets. If nil, a new one is created.
	Min *minifier.Minifier
}

// Result describes written sprites.
type Result struct {
	// IDs of the included shapes, in sheet order.
	IDs []string
	// Paths of the written files.
	Symbol, View, CSS string
}

type shape struct {
	id            string
	width, height float64
	viewBox       string
	content       string // rendered children of the root element
}

// Build reads every SVG file in c.Src and writes both sprite sheets to c.Dst.
func Build(ctx context.Context, c Config) (*Result, error) {
	if c.Min == nil {
		c.Min = minifier.New()
	}

	paths, err := filepath.Glob(filepath.Join(c.Src, "*.svg"))
	if err != nil {
		return nil, err
	}

	res := &Result{
		Symbol: filepath.Join(c.Dst, SymbolPath),
		View:   filepath.Join(c.Dst, ViewPath),
		CSS:    filepath.Join(c.Dst, CSSPath),
	}
	shapes := make([]shape, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := readShape(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		shapes = append(shapes, s)
		res.IDs = append(res.IDs, s.id)
	}

	symbol, err := c.Min.Bytes(minifier.SVG, symbolSheet(shapes))
	if err != nil {
		return nil, err
	}
	view, err := c.Min.Bytes(minifier.SVG, viewSheet(shapes))
	if err != nil {
		return nil, err
	}

	url := viewURL
	if c.Bust {
		url += "?" + hash(view)
	}
	css, err := c.Min.Bytes(minifier.CSS, stylesheet(shapes, url))
	if err != nil {
		return nil, err
	}

	for path, b := range map[string][]byte{
		res.Symbol: symbol,
		res.View:   view,
		res.CSS:    css,
	} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func readShape(path string) (shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return shape{}, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return shape{}, err
	}
	root := findRoot(doc)
	if root == nil {
		return shape{}, errNoRoot
	}

	s := shape{id: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	for _, attr := range root.Attr {
		switch attr.Key {
		case "viewBox":
			s.viewBox = attr.Val
		case "width":
			s.width = parseLength(attr.Val)
		case "height":
			s.height = parseLength(attr.Val)
		}
	}
	// Fall back to the viewBox for a missing size and vice versa.
	if vb := strings.Fields(strings.ReplaceAll(s.viewBox, ",", " ")); len(vb) == 4 {
		if s.width == 0 {
			s.width = parseLength(vb[2])
		}
		if s.height == 0 {
			s.height = parseLength(vb[3])
		}
	}
	if s.viewBox == "" {
		s.viewBox = fmt.Sprintf("0 0 %s %s", variant.Num(s.width), variant.Num(s.height))
	}

	var buf strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return shape{}, err
		}
	}
	s.content = buf.String()

	return s, nil
}

func findRoot(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Svg {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if root := findRoot(c); root != nil {
			return root
		}
	}
	return nil
}

func parseLength(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

func symbolSheet(shapes []shape) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(0, 0)
	canvas.Def()
	for _, s := range shapes {
		fmt.Fprintf(canvas.Writer, "<symbol id=\"%s\" viewBox=\"%s\">%s</symbol>\n",
			html.EscapeString(s.id), html.EscapeString(s.viewBox), s.content)
	}
	canvas.DefEnd()
	canvas.End()
	return buf.Bytes()
}

// layout returns the vertical offset of each shape in the view sheet and the
// sheet size.
func layout(shapes []shape) (offsets []float64, width, height float64) {
	for _, s := range shapes {
		offsets = append(offsets, height)
		width = max(width, s.width)
		height += s.height
	}
	return offsets, width, height
}

func viewSheet(shapes []shape) []byte {
	offsets, width, height := layout(shapes)
	w, h := int(math.Ceil(width)), int(math.Ceil(height))

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(w, h, 0, 0, w, h)
	for i, s := range shapes {
		id := html.EscapeString(s.id)
		y := variant.Num(offsets[i])
		sw, sh := variant.Num(s.width), variant.Num(s.height)
		// svgo has no <view> or nested <svg> elements.
		fmt.Fprintf(canvas.Writer, "<view id=\"%s-view\" viewBox=\"0 %s %s %s\"/>\n", id, y, sw, sh)
		canvas.Group(`id="`+id+`"`, `transform="translate(0 `+y+`)"`)
		fmt.Fprintf(canvas.Writer, "<svg width=\"%s\" height=\"%s\" viewBox=\"%s\">%s</svg>\n",
			sw, sh, html.EscapeString(s.viewBox), s.content)
		canvas.Gend()
	}
	canvas.End()
	return buf.Bytes()
}

func stylesheet(shapes []shape, url string) []byte {
	offsets, _, _ := layout(shapes)

	var buf bytes.Buffer
	for i, s := range shapes {
		class := "svg-" + cssIdent(s.id)
		pos := "0"
		if offsets[i] != 0 {
			pos = "-" + variant.Num(offsets[i]) + "px"
		}
		fmt.Fprintf(&buf, ".%s {\n\tbackground: url(%q) 0 %s no-repeat;\n}\n\n", class, url, pos)
		fmt.Fprintf(&buf, ".%s-dims {\n\twidth: %spx;\n\theight: %spx;\n}\n\n", class, variant.Num(s.width), variant.Num(s.height))
	}
	return buf.Bytes()
}

// cssIdent escapes s for use in a class selector after a "svg-" prefix.
// Letters, digits, hyphens, underscores and non-ASCII characters are kept,
// everything else is escaped with a backslash.
func cssIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r >= 0x80:
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hash returns a short content hash of b, like the ones used for static
// files.
func hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:8]
}
