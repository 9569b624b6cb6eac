package commands

import (
	"fmt"

	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/templates"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	File string `arg:"" help:"Document to validate, '-' for stdin"`
	Kind string `short:"k" help:"Document kind: config, data or template" default:"config" enum:"config,data,template"`
}

// Run parses the document and reports the first problem found.
func (cmd *ValidateCmd) Run(g *Global) error {
	raw, err := readInput(g, cmd.File)
	if err != nil {
		return err
	}

	var summary string
	switch cmd.Kind {
	case "data":
		pageData, err := codec.ParsePageData(raw)
		if err != nil {
			return err
		}
		summary = fmt.Sprintf("page data for %s with %d section payloads", pageData.PageID, len(pageData.SectionData))
	case "template":
		tmpl, err := templates.ParseFile(cmd.File, raw)
		if err != nil {
			return err
		}
		summary = fmt.Sprintf("template %s with %d sections", tmpl.ID, len(tmpl.Sections))
	default:
		page, err := codec.ParsePageConfig(raw)
		if err != nil {
			return err
		}
		summary = fmt.Sprintf("page %s with %d sections", page.ID, len(page.Sections))
	}

	_, err = fmt.Fprintf(g.Stdout, "ok: %s\n", summary)
	return err
}
