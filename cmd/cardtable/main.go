package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" help:"Join a table and play in the terminal"`
	History HistoryCmd       `cmd:"" help:"Show past hands played at a table"`
	Info    VersionCmd       `cmd:"version" help:"Print the client version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cardtable"),
		kong.Description("Terminal client for multi-variant card game tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
