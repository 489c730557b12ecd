// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Pre-commit checks formatting, runs tests and makes sure the default assets
// still build.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/logokit/internal/assets"
	"go.astrophena.name/logokit/internal/devtools"
)

func main() { cli.Main(cli.AppFunc(run)) }

func run(ctx context.Context) error {
	devtools.EnsureRoot()

	isCI := cli.GetEnv(ctx).Getenv("CI") == "true"

	var w bytes.Buffer

	if err := runCmd(ctx, &w, "gofmt", "-d", "ci_test.go", "internal", "templates"); err != nil {
		return err
	}
	if diff := w.String(); diff != "" {
		return fmt.Errorf("run gofmt on these files:\n\t%v", diff)
	}

	if err := runCmd(ctx, &w, "go", "vet", "./..."); err != nil {
		return err
	}

	testArgs := []string{"test", "./..."}
	if isCI {
		testArgs = []string{"test", "-race", "./..."}
	}
	if err := runCmd(ctx, &w, "go", testArgs...); err != nil {
		return err
	}

	if err := runCmd(ctx, &w, "go", "mod", "tidy", "--diff"); err != nil {
		return err
	}
	if err := runCmd(ctx, &w, "go", "tool", "addcopyright", "-check"); err != nil {
		return err
	}

	// The default table must render with the compiled-in templates.
	_, err := assets.Build(ctx, &assets.Config{
		Dst:   filepath.Join(os.TempDir(), "logokit-pre-commit"),
		Stage: "svg",
	})
	return err
}

func runCmd(ctx context.Context, buf *bytes.Buffer, cmd string, args ...string) error {
	buf.Reset()
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = buf
	c.Stderr = buf
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s failed: %w:\n%v", cmd, err, buf.String())
	}
	return nil
}
