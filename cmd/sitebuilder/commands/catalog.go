package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"site-builder-backend/internal/sections"
	"site-builder-backend/internal/templates"
)

// SectionsCmd implements the 'sections' command.
type SectionsCmd struct {
	JSON bool `help:"Print the full definitions as JSON"`
}

// Run lists every registered section type.
func (cmd *SectionsCmd) Run(g *Global) error {
	registry, err := sections.LoadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load section registry: %w", err)
	}
	definitions := registry.All()

	if cmd.JSON {
		return printJSON(g, definitions)
	}

	w := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tCATEGORY\tDESCRIPTION")
	for _, def := range definitions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Type, def.Name, def.Category, def.Description)
	}
	return w.Flush()
}

// TemplatesCmd implements the 'templates' command.
type TemplatesCmd struct {
	Category string `short:"c" help:"Only list templates of this category" default:"all"`
	JSON     bool   `help:"Print the summaries as JSON"`
}

// Run lists the catalog templates.
func (cmd *TemplatesCmd) Run(g *Global) error {
	catalog, err := templates.LoadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load template catalog: %w", err)
	}
	summaries := catalog.Summaries(cmd.Category)

	if cmd.JSON {
		return printJSON(g, summaries)
	}

	w := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSECTIONS")
	for _, summary := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", summary.ID, summary.Name, summary.Category, summary.SectionCount)
	}
	return w.Flush()
}

func printJSON(g *Global, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return writeOutput(g, "", append(data, '\n'))
}
