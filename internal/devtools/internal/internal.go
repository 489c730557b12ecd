// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package internal contains common functionality for development tools.
package internal

import (
	"flag"
	"fmt"
	"path/filepath"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/logokit/internal/assets"
)

// DefaultDir is the output directory used when none is given.
var DefaultDir = filepath.Join(".", "assets")

// Flags are the build flags shared by development tools.
type Flags struct {
	Src      string
	Variants string
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Src, "src", "", "Read logo.svg and index.html templates from `dir` instead of the built-in ones.")
	fs.StringVar(&f.Variants, "variants", "", "Load the variant table from a Starlark `file` instead of the built-in one.")
}

// Config returns a build configuration writing into the directory passed as
// the only optional argument.
func (f *Flags) Config(args []string) (*assets.Config, error) {
	dir := DefaultDir
	switch len(args) {
	case 0:
	case 1:
		dir = args[0]
	default:
		return nil, fmt.Errorf("%w: want at most one output directory", cli.ErrInvalidArgs)
	}
	return &assets.Config{
		Src:          f.Src,
		Dst:          dir,
		VariantsFile: f.Variants,
	}, nil
}
