// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Serve serves the logo assets for local development.

# Usage:

	$ go tool serve [flags] [dir]

Serve performs an initial build into dir (default "assets") and serves it,
with the preview page at the root. It then watches the templates directory
given with -src and the variants file given with -variants and automatically
rebuilds the assets.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
