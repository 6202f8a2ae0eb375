package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/coursebuilder/cmd/coursebuilder/commands"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}

	ctx := kong.Parse(&cli,
		kong.Name("coursebuilder"),
		kong.Description("Convert course exports into a Hugo content tree and mirror them from object storage."),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(&cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
