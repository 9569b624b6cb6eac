package models

import (
	"time"

	"gorm.io/gorm"
)

// PageRecord is the persisted form of a saved page configuration.
type PageRecord struct {
	ID        string         `gorm:"primaryKey;size:128" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string     `gorm:"not null" json:"name"`
	Title       string     `json:"title"`
	Document    string     `gorm:"type:jsonb;not null" json:"document"`
	Published   bool       `gorm:"default:false;index" json:"published"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
}

func (PageRecord) TableName() string {
	return "builder_pages"
}
