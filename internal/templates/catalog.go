package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/models"
)

//go:embed data/*.yaml
var catalogFS embed.FS

// CategoryAll selects every template when listing.
const CategoryAll = "all"

// Catalog is the read-only set of templates a page can start from.
type Catalog struct {
	order     []string
	templates map[string]*models.Template
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// LoadCatalog parses the embedded template files in file name order.
func LoadCatalog() (*Catalog, error) {
	return LoadFS(catalogFS, "data")
}

// LoadFS parses every .yaml, .yml or .json file in dir. YAML files are
// converted to JSON and validated like any imported template.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	catalog := &Catalog{templates: make(map[string]*models.Template)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}

		tmpl, err := ParseFile(name, data)
		if err != nil {
			return nil, err
		}

		if err := catalog.add(tmpl); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	}

	return catalog, nil
}

// ParseFile parses one template file. Files not ending in .json are read as
// YAML.
func ParseFile(name string, data []byte) (*models.Template, error) {
	if strings.ToLower(path.Ext(name)) != ".json" {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert template %s: %w", name, err)
		}
		data = converted
	}

	tmpl, err := codec.ParseTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return tmpl, nil
}

// Default returns the process-wide embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("failed to load template catalog: %v", defaultErr))
	}
	return defaultCatalog
}

func (c *Catalog) add(tmpl *models.Template) error {
	if _, exists := c.templates[tmpl.ID]; exists {
		return fmt.Errorf("duplicate template id %q", tmpl.ID)
	}
	c.templates[tmpl.ID] = tmpl
	c.order = append(c.order, tmpl.ID)
	return nil
}

// Get returns a copy of the template with the given id.
func (c *Catalog) Get(id string) (*models.Template, error) {
	if c == nil {
		return nil, models.ErrTemplateNotFound
	}
	tmpl, ok := c.templates[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrTemplateNotFound, id)
	}
	return cloneTemplate(tmpl), nil
}

// List returns the templates of a category in catalog order. An empty
// category or CategoryAll lists everything.
func (c *Catalog) List(category string) []*models.Template {
	if c == nil {
		return nil
	}

	category = strings.TrimSpace(strings.ToLower(category))
	result := make([]*models.Template, 0, len(c.order))
	for _, id := range c.order {
		tmpl := c.templates[id]
		if category != "" && category != CategoryAll && string(tmpl.Category) != category {
			continue
		}
		result = append(result, cloneTemplate(tmpl))
	}
	return result
}

// Summaries returns the gallery view of List.
func (c *Catalog) Summaries(category string) []models.TemplateSummary {
	templates := c.List(category)
	summaries := make([]models.TemplateSummary, 0, len(templates))
	for _, tmpl := range templates {
		summaries = append(summaries, models.TemplateSummary{
			ID:           tmpl.ID,
			Name:         tmpl.Name,
			Description:  tmpl.Description,
			Thumbnail:    tmpl.Thumbnail,
			Category:     tmpl.Category,
			SectionCount: len(tmpl.Sections),
		})
	}
	return summaries
}

func cloneTemplate(tmpl *models.Template) *models.Template {
	cloned := *tmpl
	if tmpl.Sections != nil {
		cloned.Sections = append([]models.TemplateSectionConfig{}, tmpl.Sections...)
	}
	if tmpl.DefaultData != nil {
		cloned.DefaultData = make(models.SectionDataMap, len(tmpl.DefaultData))
		for id, raw := range tmpl.DefaultData {
			cloned.DefaultData[id] = append([]byte(nil), raw...)
		}
	}
	return &cloned
}
