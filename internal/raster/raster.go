// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package raster converts SVG documents to PNG images.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

var errSizeInvalid = errors.New("invalid image size")

// Rasterize renders the SVG document read from r into a w×h image. The
// document's viewBox is stretched over the whole image.
func Rasterize(r io.Reader, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", errSizeInvalid, w, h)
	}

	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parsing SVG: %w", err)
	}
	// SetTarget translates by the viewBox origin in pixels, which moves
	// documents with a negative origin off the image.
	vb := icon.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		vb.W, vb.H = float64(w), float64(h)
	}
	icon.Transform = rasterx.Identity.
		Scale(float64(w)/vb.W, float64(h)/vb.H).
		Translate(-vb.X, -vb.Y)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	return img, nil
}

// Scale returns the pixel size of a w×h canvas scaled by scale. Neither
// dimension is allowed to drop below one pixel.
func Scale(w, h, scale float64) (int, int) {
	sw := max(int(math.Round(w*scale)), 1)
	sh := max(int(math.Round(h*scale)), 1)
	return sw, sh
}

// Resize scales src to w×h pixels.
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

var encoder = &png.Encoder{CompressionLevel: png.BestCompression}

// Encode writes img to w in PNG format.
func Encode(w io.Writer, img image.Image) error {
	return encoder.Encode(w, img)
}

// EncodeBytes returns img encoded in PNG format.
func EncodeBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes img in PNG format and writes it to path.
func WriteFile(path string, img image.Image) error {
	b, err := EncodeBytes(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadFile decodes the PNG image stored at path.
func ReadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}
