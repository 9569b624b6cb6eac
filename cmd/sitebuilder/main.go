package main

import (
	"os"

	"github.com/alecthomas/kong"

	"site-builder-backend/cmd/sitebuilder/commands"
	"site-builder-backend/pkg/logger"
)

var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitebuilder"),
		kong.Description("Offline tools for event page templates and page documents."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	global := &commands.Global{Stdin: os.Stdin, Stdout: os.Stdout}
	if err := ctx.Run(global); err != nil {
		logger.Error(err, "Command failed", map[string]interface{}{"command": ctx.Command()})
		os.Exit(1)
	}
}
