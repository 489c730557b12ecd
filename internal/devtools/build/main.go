// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"log/slog"
	"strings"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/logokit/internal/assets"
	"go.astrophena.name/logokit/internal/devtools/internal"
)

func main() { cli.Main(new(app)) }

type app struct {
	common internal.Flags
	stage  string
	bust   bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	a.common.Register(fs)
	fs.StringVar(&a.stage, "stage", "preview", "Stop after stage `name` ("+strings.Join(assets.Stages(), ", ")+").")
	fs.BoolVar(&a.bust, "bust", false, "Add a content hash to the sprite URL in the sprite stylesheet.")
}

func (a *app) Run(ctx context.Context) error {
	c, err := a.common.Config(cli.GetEnv(ctx).Args)
	if err != nil {
		return err
	}
	c.Stage = a.stage
	c.Bust = a.bust

	res, err := assets.Build(ctx, c)
	if err != nil {
		return err
	}

	attrs := []slog.Attr{
		slog.String("dir", c.Dst),
		slog.Int("svg", len(res.Manifest.SVG)),
		slog.Int("png", len(res.Manifest.PNG)),
	}
	if res.Favicon != nil {
		attrs = append(attrs, slog.String("favicons", res.Favicon.Status.String()))
	}
	if res.Sprite != nil {
		attrs = append(attrs, slog.Int("sprites", len(res.Sprite.IDs)))
	}
	logger.Info(ctx, "built assets", attrs...)
	return nil
}
