// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Build generates the logo assets.

# Usage

	$ go tool build [flags] [dir]

Renders SVG and PNG files of every logo variant, favicons, sprite sheets and a
preview page into the specified directory dir. If dir is not provided, it
defaults to assets in the current working directory.

Use -stage to stop after a stage: svg, png, favicons, sprites or preview.
Selecting a stage runs every stage before it.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
