// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package variant describes logo variants and resolves them into complete
rendering parameters.

A [Variant] is what gets declared: only the fields that differ from the
defaults need to be set. [Resolve] fills in the rest and computes the viewBox
that realizes the variant's scale.

# Scale

Scale shrinks the visible symbol inside a canvas of fixed size. The canvas
stays at Width×Height pixels, but the viewBox grows symmetrically around the
center by a factor of (1-scale) on each axis:

	viewBox x      = -(1-scale) * width / 2
	viewBox y      = -(1-scale) * height / 2
	viewBox width  = width + width * (1-scale)
	viewBox height = height + height * (1-scale)

So a scale of 1 renders the symbol edge to edge, and a scale approaching 0
renders it at half size in the middle of the frame.
*/
package variant

import (
	"errors"
	"fmt"
)

// Brand colors.
const (
	White = "#ffffff"
	Brand = "#61269E"
)

// Canonical template dimensions.
const (
	BaseHeight = 512 // height of the template, used as the rasterization reference
	BaseWidth  = 512 // width of a symbol-only canvas
	TextWidth  = 1405

	// TextOffset is a horizontal translation of the symbol when the
	// wordmark is shown.
	TextOffset = 950
)

// Possible errors, used in tests.
var (
	errNameMissing   = errors.New("variant has no name")
	errNameDuplicate = errors.New("duplicate variant name")
	errSizeInvalid   = errors.New("requested height must be positive")
	errScaleInvalid  = errors.New("scale must not exceed 1")
)

// Variant is a named logo configuration. Zero values mean "not set" and are
// replaced with defaults by [Resolve].
type Variant struct {
	// Name identifies the variant and names its output files.
	Name string
	// SymbolFill is the fill color of the symbol.
	SymbolFill string
	// BackgroundFill is the fill color of the background. Defaults to "none".
	BackgroundFill string
	// TextFill is the fill color of the wordmark.
	TextFill string
	// ShowText determines if the wordmark is rendered next to the symbol.
	ShowText bool
	// Scale is the size of the symbol relative to the canvas, in (0, 1].
	// Defaults to 1.
	Scale float64
	// Width is the canvas width. Defaults to 512, or 1405 if ShowText is set.
	Width float64
	// Height is the canvas height. Defaults to 512.
	Height float64
	// Sizes are the pixel heights of PNG files rendered from this variant.
	Sizes []int
}

// ViewBox is the coordinate window of an SVG canvas.
type ViewBox struct {
	X, Y, Width, Height float64
}

// String formats the viewBox as an SVG attribute value.
func (vb ViewBox) String() string {
	return fmt.Sprintf("%s %s %s %s", Num(vb.X), Num(vb.Y), Num(vb.Width), Num(vb.Height))
}

// Resolved is a variant with every field populated.
type Resolved struct {
	Variant
	// ViewBox realizes Scale.
	ViewBox ViewBox
	// TransformSymbol is the transform applied to the symbol group.
	TransformSymbol string
}

// SymbolOffset returns the horizontal translation of the symbol.
func (r Resolved) SymbolOffset() float64 {
	if r.ShowText {
		return TextOffset
	}
	return 0
}

// Resolve fills in defaults of v and computes its viewBox.
func Resolve(v Variant) Resolved {
	r := Resolved{Variant: v}

	if r.BackgroundFill == "" {
		r.BackgroundFill = "none"
	}
	if r.Scale <= 0 {
		r.Scale = 1
	}
	if r.Width <= 0 {
		r.Width = BaseWidth
		if r.ShowText {
			r.Width = TextWidth
		}
	}
	if r.Height <= 0 {
		r.Height = BaseHeight
	}
	r.Sizes = append([]int(nil), v.Sizes...)

	r.TransformSymbol = fmt.Sprintf("translate(%s)", Num(r.SymbolOffset()))

	shrink := 1 - r.Scale
	r.ViewBox = ViewBox{
		X:      -shrink * r.Width / 2,
		Y:      -shrink * r.Height / 2,
		Width:  r.Width + r.Width*shrink,
		Height: r.Height + r.Height*shrink,
	}

	return r
}

// Validate checks that names are present and unique, that scales don't grow
// the symbol past the canvas and that every requested height is positive.
func Validate(vs []Variant) error {
	seen := make(map[string]bool, len(vs))
	for _, v := range vs {
		if v.Name == "" {
			return errNameMissing
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: %q", errNameDuplicate, v.Name)
		}
		seen[v.Name] = true
		// Zero or negative means the default scale.
		if v.Scale > 1 {
			return fmt.Errorf("%s: %w, got %v", v.Name, errScaleInvalid, v.Scale)
		}
		for _, h := range v.Sizes {
			if h <= 0 {
				return fmt.Errorf("%s: %w, got %d", v.Name, errSizeInvalid, h)
			}
		}
	}
	return nil
}

// Lookup returns the variant with the given name.
func Lookup(vs []Variant, name string) (Variant, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
