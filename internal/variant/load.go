// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package variant

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.astrophena.name/base/logger"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Load reads a variant table from the Starlark file at path.
//
// The file declares variants by calling the predeclared variant function,
// in the order they should be rendered:
//
//	variant(
//	    "logo",
//	    symbol_fill = brand,
//	    scale = 0.1,
//	    sizes = [512, 128, 32, 16],
//	)
//
// The keyword arguments mirror the fields of [Variant]: symbol_fill,
// background_fill, text_fill, show_text, scale, width, height and sizes.
// The brand colors are available as the white and brand globals. Output of
// print is logged.
func Load(ctx context.Context, path string) ([]Variant, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(path, src, func(msg string) {
		logger.Info(ctx, "variants file printed a message", slog.String("file", path), slog.String("msg", msg))
	})
}

func parse(filename string, src []byte, onPrint func(msg string)) ([]Variant, error) {
	var vs []Variant

	predeclared := starlark.StringDict{
		"white": starlark.String(White),
		"brand": starlark.String(Brand),
		"variant": starlark.NewBuiltin("variant", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			v, err := unpackVariant(b.Name(), args, kwargs)
			if err != nil {
				return nil, err
			}
			vs = append(vs, v)
			return starlark.None, nil
		}),
	}

	thread := &starlark.Thread{
		Name:  "variants",
		Print: func(_ *starlark.Thread, msg string) { onPrint(msg) },
	}
	if _, err := starlark.ExecFileOptions(&syntax.FileOptions{TopLevelControl: true}, thread, filename, src, predeclared); err != nil {
		return nil, err
	}

	if err := Validate(vs); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return vs, nil
}

func unpackVariant(fn string, args starlark.Tuple, kwargs []starlark.Tuple) (Variant, error) {
	var (
		v                    Variant
		scale, width, height starlark.Value
		sizes                *starlark.List
	)
	if err := starlark.UnpackArgs(fn, args, kwargs,
		"name", &v.Name,
		"symbol_fill?", &v.SymbolFill,
		"background_fill?", &v.BackgroundFill,
		"text_fill?", &v.TextFill,
		"show_text?", &v.ShowText,
		"scale?", &scale,
		"width?", &width,
		"height?", &height,
		"sizes?", &sizes,
	); err != nil {
		return Variant{}, err
	}

	for _, f := range []struct {
		name string
		in   starlark.Value
		out  *float64
	}{
		{"scale", scale, &v.Scale},
		{"width", width, &v.Width},
		{"height", height, &v.Height},
	} {
		if f.in == nil || f.in == starlark.None {
			continue
		}
		n, ok := starlark.AsFloat(f.in)
		if !ok {
			return Variant{}, fmt.Errorf("%s: %s for %s: want number, got %s", fn, f.name, v.Name, f.in.Type())
		}
		*f.out = n
	}

	if sizes != nil {
		for i := range sizes.Len() {
			h, err := starlark.AsInt32(sizes.Index(i))
			if err != nil {
				return Variant{}, fmt.Errorf("%s: sizes for %s: %w", fn, v.Name, err)
			}
			v.Sizes = append(v.Sizes, h)
		}
	}

	return v, nil
}
