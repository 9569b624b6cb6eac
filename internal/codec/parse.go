package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"site-builder-backend/internal/models"
)

type document map[string]json.RawMessage

func decodeDocument(kind error, data []byte) (document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, models.NewValidationError(kind, "", "document is empty")
	}
	if trimmed[0] != '{' {
		return nil, models.NewValidationError(kind, "", "document must be a JSON object")
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, models.NewValidationError(kind, "", fmt.Sprintf("malformed JSON: %v", err))
	}
	return doc, nil
}

func (d document) requireString(kind error, field string) (string, error) {
	raw, ok := d[field]
	if !ok {
		return "", models.NewValidationError(kind, field, "is required")
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", models.NewValidationError(kind, field, "must be a string")
	}
	if value == "" {
		return "", models.NewValidationError(kind, field, "must not be empty")
	}
	return value, nil
}

func (d document) requireObject(kind error, field string) error {
	raw, ok := d[field]
	if !ok {
		return models.NewValidationError(kind, field, "is required")
	}
	if firstByte(raw) != '{' {
		return models.NewValidationError(kind, field, "must be an object")
	}
	return nil
}

func (d document) requireArray(kind error, field string) ([]json.RawMessage, error) {
	raw, ok := d[field]
	if !ok {
		return nil, models.NewValidationError(kind, field, "is required")
	}
	if firstByte(raw) != '[' {
		return nil, models.NewValidationError(kind, field, "must be an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, models.NewValidationError(kind, field, fmt.Sprintf("malformed array: %v", err))
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// ParsePageConfig decodes and validates a page configuration document. The
// returned error wraps models.ErrInvalidPageConfig and names the first
// offending field.
func ParsePageConfig(data []byte) (*models.PageConfig, error) {
	kind := models.ErrInvalidPageConfig

	doc, err := decodeDocument(kind, data)
	if err != nil {
		return nil, err
	}

	id, err := doc.requireString(kind, "id")
	if err != nil {
		return nil, err
	}
	name, err := doc.requireString(kind, "name")
	if err != nil {
		return nil, err
	}
	if err := doc.requireObject(kind, "metadata"); err != nil {
		return nil, err
	}
	rawSections, err := doc.requireArray(kind, "sections")
	if err != nil {
		return nil, err
	}

	page := &models.PageConfig{ID: id, Name: name}
	if err := json.Unmarshal(doc["metadata"], &page.Metadata); err != nil {
		return nil, models.NewValidationError(kind, "metadata", err.Error())
	}

	page.Sections = make([]models.Section, len(rawSections))
	for i, raw := range rawSections {
		if err := decodeSection(kind, i, raw, &page.Sections[i]); err != nil {
			return nil, err
		}
	}

	for _, field := range []string{"createdAt", "updatedAt"} {
		raw, ok := doc[field]
		if !ok || firstByte(raw) == 'n' {
			continue
		}
		target := &page.CreatedAt
		if field == "updatedAt" {
			target = &page.UpdatedAt
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, models.NewValidationError(kind, field, "must be an ISO-8601 timestamp")
		}
	}

	return page, nil
}

func decodeSection(kind error, index int, raw json.RawMessage, target *models.Section) error {
	field := fmt.Sprintf("sections[%d]", index)
	if firstByte(raw) != '{' {
		return models.NewValidationError(kind, field, "must be an object")
	}

	section, err := decodeDocument(kind, raw)
	if err != nil {
		return models.NewValidationError(kind, field, "must be an object")
	}
	if _, err := section.requireString(kind, "id"); err != nil {
		return models.NewValidationError(kind, field+".id", "must be a non-empty string")
	}
	sectionType, err := section.requireString(kind, "type")
	if err != nil {
		return models.NewValidationError(kind, field+".type", "must be a non-empty string")
	}
	if !models.SectionType(sectionType).IsKnown() {
		return models.NewValidationError(kind, field+".type", fmt.Sprintf("unknown section type %q", sectionType))
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return models.NewValidationError(kind, field, err.Error())
	}
	return nil
}

// ParsePageData decodes and validates a page data document.
func ParsePageData(data []byte) (*models.PageData, error) {
	kind := models.ErrInvalidPageData

	doc, err := decodeDocument(kind, data)
	if err != nil {
		return nil, err
	}

	pageID, err := doc.requireString(kind, "pageId")
	if err != nil {
		return nil, err
	}
	if err := doc.requireObject(kind, "metadata"); err != nil {
		return nil, err
	}
	if err := doc.requireObject(kind, "sectionData"); err != nil {
		return nil, err
	}

	pageData := &models.PageData{PageID: pageID}
	if err := json.Unmarshal(doc["metadata"], &pageData.Metadata); err != nil {
		return nil, models.NewValidationError(kind, "metadata", err.Error())
	}
	if err := json.Unmarshal(doc["sectionData"], &pageData.SectionData); err != nil {
		return nil, models.NewValidationError(kind, "sectionData", err.Error())
	}
	if pageData.SectionData == nil {
		pageData.SectionData = models.SectionDataMap{}
	}

	return pageData, nil
}

// ParseTemplate decodes and validates a template document. Section types are
// checked here so catalog mistakes surface at load time.
func ParseTemplate(data []byte) (*models.Template, error) {
	kind := models.ErrInvalidTemplate

	doc, err := decodeDocument(kind, data)
	if err != nil {
		return nil, err
	}

	if _, err := doc.requireString(kind, "id"); err != nil {
		return nil, err
	}
	if _, err := doc.requireString(kind, "name"); err != nil {
		return nil, err
	}
	rawSections, err := doc.requireArray(kind, "sections")
	if err != nil {
		return nil, err
	}
	if raw, ok := doc["metadata"]; ok && firstByte(raw) != '{' && firstByte(raw) != 'n' {
		return nil, models.NewValidationError(kind, "metadata", "must be an object")
	}
	if raw, ok := doc["defaultData"]; ok && firstByte(raw) != '{' && firstByte(raw) != 'n' {
		return nil, models.NewValidationError(kind, "defaultData", "must be an object")
	}

	var tmpl models.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, models.NewValidationError(kind, "", err.Error())
	}
	if tmpl.Sections == nil {
		tmpl.Sections = make([]models.TemplateSectionConfig, 0, len(rawSections))
	}
	if tmpl.DefaultData == nil {
		tmpl.DefaultData = models.SectionDataMap{}
	}

	for i, section := range tmpl.Sections {
		field := fmt.Sprintf("sections[%d]", i)
		if section.ID == "" {
			return nil, models.NewValidationError(kind, field+".id", "must be a non-empty string")
		}
		if !section.Type.IsKnown() {
			return nil, models.NewValidationError(kind, field+".type", fmt.Sprintf("unknown section type %q", section.Type))
		}
		if section.Order < 0 {
			return nil, models.NewValidationError(kind, field+".order", "must not be negative")
		}
	}

	return &tmpl, nil
}
