package repository

import (
	"context"

	"fleamart/internal/models"

	"gorm.io/gorm"
)

// ImageRepository persists stored upload rows.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// UploadLogRepository records the audit trail of accepted uploads.
type UploadLogRepository interface {
	Create(ctx context.Context, entry *models.UploadLog) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.UploadLog, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type uploadLogRepository struct {
	db *gorm.DB
}

// NewUploadLogRepository creates a new upload log repository
func NewUploadLogRepository(db *gorm.DB) UploadLogRepository {
	return &uploadLogRepository{db: db}
}

func (r *uploadLogRepository) Create(ctx context.Context, entry *models.UploadLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *uploadLogRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.UploadLog, error) {
	var entries []*models.UploadLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *uploadLogRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UploadLog{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
