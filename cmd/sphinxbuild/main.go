package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sphinxbuild/cmd/sphinxbuild/commands"
	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sphinxbuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("sphinxbuild"),
		kong.Description("Run sphinx-build from a declarative configuration."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
