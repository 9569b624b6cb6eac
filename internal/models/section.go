package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SectionType is the discriminant of a page section.
type SectionType string

const (
	SectionTypeHero     SectionType = "hero"
	SectionTypePricing  SectionType = "pricing"
	SectionTypeGallery  SectionType = "gallery"
	SectionTypeAbout    SectionType = "about"
	SectionTypeSchedule SectionType = "schedule"
	SectionTypeContact  SectionType = "contact"
)

// SectionTypes lists every known section kind in catalog order.
func SectionTypes() []SectionType {
	return []SectionType{
		SectionTypeHero,
		SectionTypePricing,
		SectionTypeGallery,
		SectionTypeAbout,
		SectionTypeSchedule,
		SectionTypeContact,
	}
}

// IsKnown reports whether t is one of the six section kinds.
func (t SectionType) IsKnown() bool {
	switch t {
	case SectionTypeHero, SectionTypePricing, SectionTypeGallery,
		SectionTypeAbout, SectionTypeSchedule, SectionTypeContact:
		return true
	}
	return false
}

// SectionData is the kind-specific payload of a section. Every implementation
// is a pointer to one of the *Data records below.
type SectionData interface {
	SectionType() SectionType
	CloneData() SectionData
}

// Section is one typed content block of a page.
type Section struct {
	ID        string      `json:"id"`
	Type      SectionType `json:"type"`
	Order     int         `json:"order"`
	IsVisible bool        `json:"isVisible"`
	Data      SectionData `json:"data"`
}

type sectionJSON struct {
	ID        string          `json:"id"`
	Type      SectionType     `json:"type"`
	Order     int             `json:"order"`
	IsVisible *bool           `json:"isVisible,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON writes the section with its data record inline.
func (s Section) MarshalJSON() ([]byte, error) {
	data := s.Data
	if data == nil {
		var err error
		data, err = NewSectionData(s.Type)
		if err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s section data: %w", s.Type, err)
	}

	visible := s.IsVisible
	return json.Marshal(sectionJSON{
		ID:        s.ID,
		Type:      s.Type,
		Order:     s.Order,
		IsVisible: &visible,
		Data:      raw,
	})
}

// UnmarshalJSON decodes the data record according to the section type.
// A missing isVisible field means the section is visible.
func (s *Section) UnmarshalJSON(b []byte) error {
	var aux sectionJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	data, err := DecodeSectionData(aux.Type, aux.Data)
	if err != nil {
		return fmt.Errorf("section %q: %w", aux.ID, err)
	}

	s.ID = aux.ID
	s.Type = aux.Type
	s.Order = aux.Order
	s.IsVisible = aux.IsVisible == nil || *aux.IsVisible
	s.Data = data
	return nil
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	cloned := s
	if s.Data != nil {
		cloned.Data = s.Data.CloneData()
	}
	return cloned
}

// NewSectionData returns an empty data record for the given kind.
func NewSectionData(t SectionType) (SectionData, error) {
	switch t {
	case SectionTypeHero:
		return &HeroData{}, nil
	case SectionTypePricing:
		return &PricingData{}, nil
	case SectionTypeGallery:
		return &GalleryData{}, nil
	case SectionTypeAbout:
		return &AboutData{}, nil
	case SectionTypeSchedule:
		return &ScheduleData{}, nil
	case SectionTypeContact:
		return &ContactData{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSectionType, t)
}

// DecodeSectionData decodes raw into the data record of kind t. An empty or
// null payload yields the empty record.
func DecodeSectionData(t SectionType, raw []byte) (SectionData, error) {
	data, err := NewSectionData(t)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return data, nil
	}

	if err := json.Unmarshal(trimmed, data); err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", t, err)
	}
	return data, nil
}

// HeroData is the payload of a hero banner.
type HeroData struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	CTAText         string `json:"ctaText,omitempty"`
	CTALink         string `json:"ctaLink,omitempty"`
	Layout          string `json:"layout,omitempty"`
	Overlay         bool   `json:"overlay,omitempty"`
}

func (d *HeroData) SectionType() SectionType { return SectionTypeHero }

func (d *HeroData) CloneData() SectionData {
	cloned := *d
	return &cloned
}

// PricingTicket is one purchasable ticket tier.
type PricingTicket struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features"`
	Available   bool     `json:"available"`
}

// PricingData is the payload of a ticket pricing table.
type PricingData struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Tickets     []PricingTicket `json:"tickets"`
	Columns     int             `json:"columns,omitempty"`
}

func (d *PricingData) SectionType() SectionType { return SectionTypePricing }

func (d *PricingData) CloneData() SectionData {
	cloned := *d
	if d.Tickets != nil {
		cloned.Tickets = make([]PricingTicket, len(d.Tickets))
		for i, ticket := range d.Tickets {
			if ticket.Features != nil {
				ticket.Features = cloneSlice(ticket.Features)
			}
			cloned.Tickets[i] = ticket
		}
	}
	return &cloned
}

// GalleryImage is one picture of a gallery.
type GalleryImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// GalleryData is the payload of an image gallery.
type GalleryData struct {
	Title   string         `json:"title,omitempty"`
	Images  []GalleryImage `json:"images"`
	Layout  string         `json:"layout,omitempty"`
	Columns int            `json:"columns,omitempty"`
}

func (d *GalleryData) SectionType() SectionType { return SectionTypeGallery }

func (d *GalleryData) CloneData() SectionData {
	cloned := *d
	if d.Images != nil {
		cloned.Images = cloneSlice(d.Images)
	}
	return &cloned
}

// AboutData is the payload of an about block. Content is rich text.
type AboutData struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Image         string `json:"image,omitempty"`
	ImagePosition string `json:"imagePosition,omitempty"`
}

func (d *AboutData) SectionType() SectionType { return SectionTypeAbout }

func (d *AboutData) CloneData() SectionData {
	cloned := *d
	return &cloned
}

// ScheduleEvent is one slot of an event agenda.
type ScheduleEvent struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
	Location    string `json:"location,omitempty"`
}

// ScheduleData is the payload of an agenda.
type ScheduleData struct {
	Title  string          `json:"title"`
	Events []ScheduleEvent `json:"events"`
	Layout string          `json:"layout,omitempty"`
}

func (d *ScheduleData) SectionType() SectionType { return SectionTypeSchedule }

func (d *ScheduleData) CloneData() SectionData {
	cloned := *d
	if d.Events != nil {
		cloned.Events = cloneSlice(d.Events)
	}
	return &cloned
}

// SocialLink points at an organiser profile on another platform.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ContactData is the payload of a contact block.
type ContactData struct {
	Title       string       `json:"title"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Address     string       `json:"address,omitempty"`
	MapURL      string       `json:"mapUrl,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks"`
}

func (d *ContactData) SectionType() SectionType { return SectionTypeContact }

func (d *ContactData) CloneData() SectionData {
	cloned := *d
	if d.SocialLinks != nil {
		cloned.SocialLinks = cloneSlice(d.SocialLinks)
	}
	return &cloned
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
