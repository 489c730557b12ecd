// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Addcopyright adds copyright header to each Go and Starlark file.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/logokit/internal/devtools"
)

func main() { cli.Main(new(app)) }

type app struct {
	check bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.check, "check", false, "Only report files without a header, don't modify them.")
}

var templates = map[string]string{
	".go": `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`,
	".star": `# © %d Ilya Mateyko. All rights reserved.
# Use of this source code is governed by the ISC
# license that can be found in the LICENSE.md file.

`,
}

var headers = map[string]string{
	".go":   `// ©`,
	".star": `# ©`,
}

var excludedDirs = []string{
	"_examples",
	".git",
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	var missing []string
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, dir := range excludedDirs {
				if d.Name() == dir {
					return filepath.SkipDir
				}
			}
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		updated, ok := addHeader(path, content, info.ModTime().Year())
		if !ok {
			return nil
		}

		missing = append(missing, path)
		if a.check {
			return nil
		}
		logger.Info(ctx, "adding copyright header", slog.String("path", path))
		return os.WriteFile(path, updated, 0o644)
	})
	if err != nil {
		return err
	}

	if a.check && len(missing) > 0 {
		return fmt.Errorf("files without copyright header:\n\t%s", strings.Join(missing, "\n\t"))
	}
	return nil
}

// addHeader returns content prefixed with a copyright header for year. It
// reports false if the file at path already has a header or doesn't need one.
func addHeader(path string, content []byte, year int) ([]byte, bool) {
	ext := filepath.Ext(path)
	tmpl, ok := templates[ext]
	if !ok {
		return nil, false
	}
	if bytes.HasPrefix(content, []byte(headers[ext])) {
		return nil, false
	}
	// Keep shebang-like first lines of go:build ignore scripts on top.
	var buf bytes.Buffer
	if bytes.HasPrefix(content, []byte("//usr/bin/env")) {
		line, rest, _ := bytes.Cut(content, []byte("\n"))
		buf.Write(line)
		buf.WriteString("\n\n")
		content = bytes.TrimLeft(rest, "\n")
	}
	fmt.Fprintf(&buf, tmpl, year)
	buf.Write(content)
	return buf.Bytes(), true
}
