// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package variant

import (
	"math"
	"strconv"
)

// DefaultSizes are the PNG heights rendered for every default variant.
var DefaultSizes = []int{512, 128, 32, 16}

// Default is the compiled-in variant table.
var Default = []Variant{
	{
		Name:           "logo-inverted",
		SymbolFill:     White,
		BackgroundFill: Brand,
		Scale:          0.1,
		Sizes:          DefaultSizes,
	},
	{
		Name:       "logo",
		SymbolFill: Brand,
		Scale:      0.1,
		Sizes:      DefaultSizes,
	},
	{
		Name:       "logo-full",
		SymbolFill: Brand,
		Sizes:      DefaultSizes,
	},
	{
		Name:       "logo-text",
		ShowText:   true,
		SymbolFill: Brand,
		TextFill:   Brand,
		Scale:      0.5,
		Sizes:      DefaultSizes,
	},
	{
		Name:       "logo-text-full",
		ShowText:   true,
		SymbolFill: Brand,
		TextFill:   Brand,
		Sizes:      DefaultSizes,
	},
	{
		Name:           "logo-text-inverted",
		ShowText:       true,
		SymbolFill:     White,
		TextFill:       White,
		BackgroundFill: Brand,
		Scale:          0.5,
		Sizes:          DefaultSizes,
	},
}

// Num formats a coordinate for SVG output. Values are rounded to four
// decimal places so that floating point noise doesn't leak into the files.
func Num(f float64) string {
	f = math.Round(f*1e4) / 1e4
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
