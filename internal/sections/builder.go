package sections

import (
	"fmt"

	"site-builder-backend/internal/models"
)

// DefinitionBuilder provides a fluent interface for creating section definitions.
type DefinitionBuilder struct {
	definition *models.SectionDefinition
	errors     []error
}

// NewDefinitionBuilder creates a new builder for the given section type.
func NewDefinitionBuilder(sectionType models.SectionType) *DefinitionBuilder {
	return &DefinitionBuilder{
		definition: &models.SectionDefinition{
			Type:   sectionType,
			Schema: make(map[string]models.SectionSchemaField),
		},
	}
}

// WithName sets the display name of the section.
func (b *DefinitionBuilder) WithName(name string) *DefinitionBuilder {
	b.definition.Name = name
	return b
}

// WithDescription sets the description of the section.
func (b *DefinitionBuilder) WithDescription(desc string) *DefinitionBuilder {
	b.definition.Description = desc
	return b
}

// WithCategory sets the category for grouping sections.
func (b *DefinitionBuilder) WithCategory(category string) *DefinitionBuilder {
	b.definition.Category = category
	return b
}

// WithIcon sets the icon identifier for the section.
func (b *DefinitionBuilder) WithIcon(icon string) *DefinitionBuilder {
	b.definition.Icon = icon
	return b
}

// WithDefaultData sets the payload new sections of this type start with.
func (b *DefinitionBuilder) WithDefaultData(data models.SectionData) *DefinitionBuilder {
	if data == nil {
		b.errors = append(b.errors, fmt.Errorf("default data cannot be nil"))
		return b
	}
	if data.SectionType() != b.definition.Type {
		b.errors = append(b.errors, fmt.Errorf("default data kind %s does not match type %s", data.SectionType(), b.definition.Type))
		return b
	}
	b.definition.DefaultData = data
	return b
}

func (b *DefinitionBuilder) addField(name string, field models.SectionSchemaField) *DefinitionBuilder {
	if name == "" {
		b.errors = append(b.errors, fmt.Errorf("schema field name cannot be empty"))
		return b
	}
	b.definition.Schema[name] = field
	return b
}

// AddStringField adds a single-line text field.
func (b *DefinitionBuilder) AddStringField(name, label string, required bool) *DefinitionBuilder {
	return b.addField(name, models.SectionSchemaField{Type: "string", Label: label, Required: required})
}

// AddTextField adds a multi-line rich text field.
func (b *DefinitionBuilder) AddTextField(name, label string, required bool) *DefinitionBuilder {
	return b.addField(name, models.SectionSchemaField{Type: "textarea", Label: label, Required: required})
}

// AddImageField adds an image URL field.
func (b *DefinitionBuilder) AddImageField(name, label string) *DefinitionBuilder {
	return b.addField(name, models.SectionSchemaField{Type: "image", Label: label})
}

// AddNumberField adds a bounded number field.
func (b *DefinitionBuilder) AddNumberField(name, label string, min, max int) *DefinitionBuilder {
	return b.addField(name, models.SectionSchemaField{Type: "number", Label: label, Min: min, Max: max})
}

// AddBooleanField adds a toggle.
func (b *DefinitionBuilder) AddBooleanField(name, label string) *DefinitionBuilder {
	return b.addField(name, models.SectionSchemaField{Type: "boolean", Label: label})
}

// AddEnumField adds a field restricted to the given options.
func (b *DefinitionBuilder) AddEnumField(name, label string, options ...string) *DefinitionBuilder {
	if len(options) == 0 {
		b.errors = append(b.errors, fmt.Errorf("enum field %s needs at least one option", name))
		return b
	}
	return b.addField(name, models.SectionSchemaField{Type: "select", Label: label, Options: options})
}

// AddArrayField adds a repeated field whose items have the given type.
func (b *DefinitionBuilder) AddArrayField(name, label, itemType string) *DefinitionBuilder {
	return b.addField(name, models.SectionSchemaField{Type: "array", Label: label, ItemType: itemType})
}

// Build constructs the final definition and returns any accumulated errors.
func (b *DefinitionBuilder) Build() (*models.SectionDefinition, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("builder has %d error(s): %v", len(b.errors), b.errors[0])
	}

	if b.definition.Type == "" {
		return nil, fmt.Errorf("section type is required")
	}

	if b.definition.DefaultData == nil {
		return nil, fmt.Errorf("default data is required for type %s", b.definition.Type)
	}

	return b.definition, nil
}

// MustBuild builds the definition and panics if there are errors.
func (b *DefinitionBuilder) MustBuild() *models.SectionDefinition {
	def, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build section definition: %v", err))
	}
	return def
}
