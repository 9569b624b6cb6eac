package repository

import (
	"context"
	"errors"
	"time"

	"site-builder-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PageRepository interface {
	Save(ctx context.Context, page *models.PageRecord) error
	GetByID(ctx context.Context, id string) (*models.PageRecord, error)
	GetAll(ctx context.Context) ([]models.PageRecord, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type pageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

// Save inserts the record or overwrites the document of an existing one.
// Publication state is left alone on update.
func (r *pageRepository) Save(ctx context.Context, page *models.PageRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "title", "document", "updated_at", "deleted_at"}),
	}).Create(page).Error
}

func (r *pageRepository) GetByID(ctx context.Context, id string) (*models.PageRecord, error) {
	var page models.PageRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetAll(ctx context.Context) ([]models.PageRecord, error) {
	var pages []models.PageRecord
	err := r.db.WithContext(ctx).
		Select("id", "name", "title", "published", "published_at", "created_at", "updated_at").
		Order("updated_at DESC").
		Find(&pages).Error
	return pages, err
}

func (r *pageRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.PageRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"published": true, "published_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrPageNotFound
	}
	return nil
}

func (r *pageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PageRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrPageNotFound
	}
	return nil
}
