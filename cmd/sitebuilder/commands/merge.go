package commands

import (
	"errors"
	"fmt"

	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/models"
	"site-builder-backend/internal/templates"
	"site-builder-backend/pkg/logger"
)

// MergeCmd implements the 'merge' command.
type MergeCmd struct {
	Template     string `short:"t" help:"Catalog template id" xor:"source"`
	TemplateFile string `name:"template-file" help:"Template file (YAML or JSON)" type:"existingfile" xor:"source"`
	Data         string `short:"d" help:"Page data document, '-' for stdin"`
	Format       string `short:"f" help:"Output format: config, data or html" default:"config" enum:"config,data,html"`
	Lang         string `help:"Document language of HTML output" default:"es"`
	Output       string `short:"o" help:"Output file (prints to stdout if not specified)"`
}

// Run merges the template with the page data and writes the export.
func (cmd *MergeCmd) Run(g *Global) error {
	tmpl, err := cmd.loadTemplate(g)
	if err != nil {
		return err
	}

	pageData := &models.PageData{SectionData: models.SectionDataMap{}}
	if cmd.Data != "" {
		raw, err := readInput(g, cmd.Data)
		if err != nil {
			return err
		}
		pageData, err = codec.ParsePageData(raw)
		if err != nil {
			return err
		}
	}
	if pageData.PageID == "" {
		pageData.PageID = templates.NewPageID()
	}

	page, err := templates.Merge(tmpl, pageData)
	if err != nil {
		return fmt.Errorf("failed to merge template %s: %w", tmpl.ID, err)
	}

	logger.Debug("Template merged", map[string]interface{}{
		"template_id": tmpl.ID,
		"page_id":     page.ID,
		"sections":    len(page.Sections),
	})

	out, err := exportPage(page, cmd.Format, cmd.Lang)
	if err != nil {
		return err
	}
	return writeOutput(g, cmd.Output, out)
}

func (cmd *MergeCmd) loadTemplate(g *Global) (*models.Template, error) {
	switch {
	case cmd.TemplateFile != "":
		raw, err := readInput(g, cmd.TemplateFile)
		if err != nil {
			return nil, err
		}
		return templates.ParseFile(cmd.TemplateFile, raw)
	case cmd.Template != "":
		catalog, err := templates.LoadCatalog()
		if err != nil {
			return nil, fmt.Errorf("failed to load template catalog: %w", err)
		}
		return catalog.Get(cmd.Template)
	default:
		return nil, errors.New("either --template or --template-file is required")
	}
}
