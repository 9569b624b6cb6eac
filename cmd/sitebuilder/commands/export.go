package commands

import (
	"site-builder-backend/internal/codec"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	File   string `arg:"" help:"Page configuration document, '-' for stdin"`
	Format string `short:"f" help:"Output format: config, data or html" default:"html" enum:"config,data,html"`
	Lang   string `help:"Document language of HTML output" default:"es"`
	Output string `short:"o" help:"Output file (prints to stdout if not specified)"`
}

// Run converts a page configuration.
func (cmd *ExportCmd) Run(g *Global) error {
	raw, err := readInput(g, cmd.File)
	if err != nil {
		return err
	}

	page, err := codec.ParsePageConfig(raw)
	if err != nil {
		return err
	}

	out, err := exportPage(page, cmd.Format, cmd.Lang)
	if err != nil {
		return err
	}
	return writeOutput(g, cmd.Output, out)
}
