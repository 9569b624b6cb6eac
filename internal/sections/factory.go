package sections

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"site-builder-backend/internal/models"
)

// Blueprint produces the builder for one built-in section type.
type Blueprint func() *DefinitionBuilder

// builtinBlueprints is the static catalog, in the order the sidebar lists it.
var builtinBlueprints = []Blueprint{
	heroDefinition,
	pricingDefinition,
	galleryDefinition,
	aboutDefinition,
	scheduleDefinition,
	contactDefinition,
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// LoadCatalog builds a registry holding every built-in section type. Call it
// once at startup and share the result.
func LoadCatalog() (*Registry, error) {
	return LoadBlueprints(builtinBlueprints...)
}

// LoadBlueprints builds a registry from the given blueprints.
func LoadBlueprints(blueprints ...Blueprint) (*Registry, error) {
	registry := NewRegistry()
	for _, blueprint := range blueprints {
		if blueprint == nil {
			return nil, fmt.Errorf("blueprint is nil")
		}
		def, err := blueprint().Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build section from blueprint: %w", err)
		}
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Default returns the process-wide built-in catalog. Concurrent first calls
// share a single initialisation.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = LoadCatalog()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("failed to load section catalog: %v", defaultErr))
	}
	return defaultRegistry
}

// NewSectionID generates a unique section id for the given type.
func NewSectionID(sectionType models.SectionType) string {
	return fmt.Sprintf("%s-%s", sectionType, uuid.NewString())
}
