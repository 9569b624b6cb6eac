package sections

import (
	"fmt"
	"strings"
	"sync"

	"site-builder-backend/internal/models"
)

// Registry is the catalog of section types offered by the builder. It keeps
// registration order so listings are stable.
type Registry struct {
	mu          sync.RWMutex
	order       []models.SectionType
	definitions map[models.SectionType]*models.SectionDefinition
}

// NewRegistry creates an empty section registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[models.SectionType]*models.SectionDefinition)}
}

func normaliseType(sectionType string) models.SectionType {
	return models.SectionType(strings.TrimSpace(strings.ToLower(sectionType)))
}

// Register adds a definition to the catalog. Registering a type twice is an error.
func (r *Registry) Register(def *models.SectionDefinition) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if def == nil {
		return fmt.Errorf("definition is nil")
	}

	sectionType := normaliseType(string(def.Type))
	if sectionType == "" {
		return fmt.Errorf("section type is empty")
	}
	if def.DefaultData == nil {
		return fmt.Errorf("default data is nil for type %s", sectionType)
	}
	if def.DefaultData.SectionType() != sectionType {
		return fmt.Errorf("default data for type %s has kind %s", sectionType, def.DefaultData.SectionType())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.definitions == nil {
		r.definitions = make(map[models.SectionType]*models.SectionDefinition)
	}
	if _, exists := r.definitions[sectionType]; exists {
		return fmt.Errorf("%w: %s", models.ErrDuplicateSection, sectionType)
	}

	stored := cloneDefinition(*def)
	stored.Type = sectionType
	r.definitions[sectionType] = &stored
	r.order = append(r.order, sectionType)
	return nil
}

// MustRegister registers the definition and panics if registration fails.
func (r *Registry) MustRegister(def *models.SectionDefinition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// All returns every definition in registration order.
func (r *Registry) All() []models.SectionDefinition {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.SectionDefinition, 0, len(r.order))
	for _, sectionType := range r.order {
		result = append(result, cloneDefinition(*r.definitions[sectionType]))
	}
	return result
}

// Get retrieves the definition for a section type if it exists.
func (r *Registry) Get(sectionType string) (models.SectionDefinition, bool) {
	if r == nil {
		return models.SectionDefinition{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[normaliseType(sectionType)]
	if !ok {
		return models.SectionDefinition{}, false
	}
	return cloneDefinition(*def), true
}

// DefaultData returns a fresh copy of the default payload for a section type.
func (r *Registry) DefaultData(sectionType string) (models.SectionData, bool) {
	def, ok := r.Get(sectionType)
	if !ok {
		return nil, false
	}
	return def.DefaultData, true
}

// CreateSection builds a new visible section at order 0 filled with a copy of
// the type's default data. An empty id is replaced by a generated one.
func (r *Registry) CreateSection(sectionType, id string) (models.Section, error) {
	data, ok := r.DefaultData(sectionType)
	if !ok {
		return models.Section{}, fmt.Errorf("%w: %q", models.ErrUnknownSectionType, sectionType)
	}

	normalised := normaliseType(sectionType)
	if strings.TrimSpace(id) == "" {
		id = NewSectionID(normalised)
	}

	return models.Section{
		ID:        id,
		Type:      normalised,
		Order:     0,
		IsVisible: true,
		Data:      data,
	}, nil
}

// IsValidSectionType reports whether the type is registered.
func (r *Registry) IsValidSectionType(sectionType string) bool {
	_, ok := r.Get(sectionType)
	return ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func cloneDefinition(def models.SectionDefinition) models.SectionDefinition {
	cloned := def
	if def.DefaultData != nil {
		cloned.DefaultData = def.DefaultData.CloneData()
	}
	if def.Schema != nil {
		cloned.Schema = make(map[string]models.SectionSchemaField, len(def.Schema))
		for key, field := range def.Schema {
			if field.Options != nil {
				field.Options = append([]string{}, field.Options...)
			}
			cloned.Schema[key] = field
		}
	}
	return cloned
}
