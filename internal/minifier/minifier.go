// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package minifier minifies generated text assets.
package minifier

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
	"github.com/tdewolff/minify/v2/xml"
)

// Media types understood by [Minifier.Bytes].
const (
	SVG  = "image/svg+xml"
	CSS  = "text/css"
	HTML = "text/html"
	JSON = "application/json"
	XML  = "text/xml"
)

// Minifier minifies SVG, CSS, HTML, JSON and XML documents. It is safe for
// concurrent use.
type Minifier struct {
	m *minify.M
}

// New returns a new Minifier.
func New() *Minifier {
	m := minify.New()
	m.AddFunc(CSS, css.Minify)
	m.Add(HTML, &html.Minifier{
		KeepDocumentTags:    true,
		KeepDefaultAttrVals: true,
		KeepEndTags:         true,
	})
	m.AddFunc(JSON, json.Minify)
	m.AddFunc(SVG, svg.Minify)
	m.AddFunc(XML, xml.Minify)
	return &Minifier{m: m}
}

// Bytes minifies b as a document of the given media type.
func (m *Minifier) Bytes(mediaType string, b []byte) ([]byte, error) {
	return m.m.Bytes(mediaType, b)
}
