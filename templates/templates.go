// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package templates contains the default templates logo assets are rendered
// from.
package templates

import _ "embed"

// Logo is the vector logo template. It is executed with text/template against
// a resolved variant.
//
//go:embed logo.svg
var Logo []byte

// Index is the template of the preview page. It is executed with
// html/template against the file manifest of a build.
//
//go:embed index.html
var Index []byte
