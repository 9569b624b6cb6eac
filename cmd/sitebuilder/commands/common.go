package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/models"
	"site-builder-backend/pkg/logger"
)

// Global carries the streams shared by every command.
type Global struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// CLI is the root of the sitebuilder command line.
type CLI struct {
	Verbose   bool             `short:"v" help:"Enable debug logging"`
	LogFormat string           `name:"log-format" help:"Log format: text or json" default:"text" enum:"text,json"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Sections  SectionsCmd  `cmd:"" help:"List the section types offered by the builder"`
	Templates TemplatesCmd `cmd:"" help:"List catalog templates"`
	Merge     MergeCmd     `cmd:"" help:"Merge a template with page data into a page"`
	Validate  ValidateCmd  `cmd:"" help:"Validate a page configuration, page data or template document"`
	Export    ExportCmd    `cmd:"" help:"Convert a page configuration to another export format"`
}

// AfterApply configures logging once flags are parsed. Logs go to stderr so
// command output can be piped.
func (c *CLI) AfterApply() error {
	level := "info"
	if c.Verbose {
		level = "debug"
	}
	logger.Configure(logger.Options{Level: level, Format: c.LogFormat, Output: os.Stderr})
	return nil
}

// readInput reads a file, or stdin when name is "-".
func readInput(g *Global, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(g.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// writeOutput writes to a file, or to stdout when name is empty.
func writeOutput(g *Global, name string, data []byte) error {
	if name == "" {
		if _, err := g.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	logger.Info("Output written", map[string]interface{}{"file": name, "bytes": len(data)})
	return nil
}

func exportPage(page *models.PageConfig, format, lang string) ([]byte, error) {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return codec.Export(page, f, codec.WithLang(lang))
}
