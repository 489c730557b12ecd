// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/logokit/internal/assets"
	"go.astrophena.name/logokit/internal/devtools/internal"
)

func main() { cli.Main(new(app)) }

type app struct {
	common internal.Flags
	listen string
}

func (a *app) Flags(fs *flag.FlagSet) {
	a.common.Register(fs)
	fs.StringVar(&a.listen, "listen", "localhost:3000", "Listen on `host:port`.")
}

func (a *app) Run(ctx context.Context) error {
	c, err := a.common.Config(cli.GetEnv(ctx).Args)
	if err != nil {
		return err
	}
	return assets.Serve(ctx, c, a.listen)
}
