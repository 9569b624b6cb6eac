package codec

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"site-builder-backend/internal/models"
)

const (
	DefaultLang           = "es"
	DefaultFontFamily     = `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif`
	DefaultPrimaryColor   = "#ff6b6b"
	DefaultSecondaryColor = "#4ecdc4"
)

var (
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	langPattern     = regexp.MustCompile(`^[A-Za-z]{2,3}(?:-[A-Za-z0-9]{2,8})*$`)
	fontFamilyStrip = regexp.MustCompile(`[^A-Za-z0-9 ,"'\-_.]`)
)

var htmlDocument = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
{{- if .Description}}
  <meta name="description" content="{{.Description}}">
{{- end}}
{{- if .Favicon}}
  <link rel="icon" href="{{.Favicon}}">
{{- end}}
  <style>
    :root {
      --primary-color: {{.PrimaryColor}};
      --secondary-color: {{.SecondaryColor}};
    }
    * {
      margin: 0;
      padding: 0;
      box-sizing: border-box;
    }
    body {
      font-family: {{.FontFamily}};
      line-height: 1.6;
      color: #333;
    }
  </style>
</head>
<body data-theme="{{.Theme}}">
{{- range .Sections}}
  <section id="{{.ID}}" class="{{.Type}}-section" data-section-type="{{.Type}}"{{if not .IsVisible}} hidden{{end}}></section>
{{- end}}
</body>
</html>
`))

type htmlOptions struct {
	lang string
}

// HTMLOption customises ExportToHTML.
type HTMLOption func(*htmlOptions)

// WithLang sets the document language. Invalid tags fall back to DefaultLang.
func WithLang(lang string) HTMLOption {
	return func(o *htmlOptions) {
		lang = strings.TrimSpace(lang)
		if langPattern.MatchString(lang) {
			o.lang = lang
		}
	}
}

type htmlSection struct {
	ID        string
	Type      models.SectionType
	IsVisible bool
}

type htmlPage struct {
	Lang           string
	Title          string
	Description    string
	Favicon        string
	Theme          models.Theme
	PrimaryColor   template.CSS
	SecondaryColor template.CSS
	FontFamily     template.CSS
	Sections       []htmlSection
}

// ExportToHTML produces a standalone HTML document with one placeholder
// container per section in ascending order. Hidden sections keep their
// container with the hidden attribute.
func ExportToHTML(page *models.PageConfig, opts ...HTMLOption) ([]byte, error) {
	if page == nil {
		return nil, models.ErrNoPage
	}

	options := htmlOptions{lang: DefaultLang}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	theme := page.Metadata.Theme
	if theme == "" {
		theme = models.ThemeLight
	}

	view := htmlPage{
		Lang:           options.lang,
		Title:          page.Metadata.Title,
		Description:    page.Metadata.Description,
		Favicon:        page.Metadata.Favicon,
		Theme:          theme,
		PrimaryColor:   template.CSS(colorOr(page.Metadata.PrimaryColor, DefaultPrimaryColor)),
		SecondaryColor: template.CSS(colorOr(page.Metadata.SecondaryColor, DefaultSecondaryColor)),
		FontFamily:     template.CSS(fontFamilyOr(page.Metadata.FontFamily)),
	}

	for _, section := range page.SortedSections() {
		view.Sections = append(view.Sections, htmlSection{
			ID:        section.ID,
			Type:      section.Type,
			IsVisible: section.IsVisible,
		})
	}

	var buf bytes.Buffer
	if err := htmlDocument.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render page html: %w", err)
	}
	return buf.Bytes(), nil
}

func colorOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if hexColorPattern.MatchString(value) {
		return value
	}
	return fallback
}

// fontFamilyOr keeps only characters that can appear in a font stack so the
// value cannot leave the declaration it is written into.
func fontFamilyOr(value string) string {
	cleaned := strings.TrimSpace(fontFamilyStrip.ReplaceAllString(value, ""))
	if cleaned == "" {
		return DefaultFontFamily
	}
	return cleaned
}
