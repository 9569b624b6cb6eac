package codec

import (
	"encoding/json"
	"fmt"

	"site-builder-backend/internal/models"
)

// Format selects an export representation.
type Format string

const (
	FormatConfig Format = "config"
	FormatData   Format = "data"
	FormatHTML   Format = "html"
)

// ParseFormat resolves a format name; an empty name means FormatConfig.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatConfig:
		return FormatConfig, nil
	case FormatData:
		return FormatData, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, value)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Extension returns the file extension used when the export is downloaded.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".json"
}

const indent = "  "

// ExportPageConfig pretty-prints the full page document.
func ExportPageConfig(page *models.PageConfig) ([]byte, error) {
	if page == nil {
		return nil, models.ErrNoPage
	}

	out := *page
	if out.Sections == nil {
		out.Sections = []models.Section{}
	}

	data, err := json.MarshalIndent(out, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page configuration: %w", err)
	}
	return data, nil
}

// ToPageData projects a page onto its customisation data keyed by section id.
func ToPageData(page *models.PageConfig) (*models.PageData, error) {
	if page == nil {
		return nil, models.ErrNoPage
	}

	sectionData := make(models.SectionDataMap, len(page.Sections))
	for _, section := range page.Sections {
		raw, err := json.Marshal(section.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode data of section %q: %w", section.ID, err)
		}
		sectionData[section.ID] = raw
	}

	return &models.PageData{
		PageID:      page.ID,
		Metadata:    page.Metadata,
		SectionData: sectionData,
	}, nil
}

// ExportPageData pretty-prints the page data projection of a page.
func ExportPageData(page *models.PageConfig) ([]byte, error) {
	pageData, err := ToPageData(page)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(pageData, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page data: %w", err)
	}
	return data, nil
}

// Export renders the page in the requested format.
func Export(page *models.PageConfig, format Format, opts ...HTMLOption) ([]byte, error) {
	switch format {
	case FormatConfig, "":
		return ExportPageConfig(page)
	case FormatData:
		return ExportPageData(page)
	case FormatHTML:
		return ExportToHTML(page, opts...)
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
}
