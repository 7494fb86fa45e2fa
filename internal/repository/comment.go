package repository

import (
	"context"
	"time"

	"fleamart/internal/models"

	"gorm.io/gorm"
)

// ArticleCommentRepository defines the interface for article comment data operations
type ArticleCommentRepository interface {
	Create(ctx context.Context, comment *models.ArticleComment) error
	GetByID(ctx context.Context, id uint) (*models.ArticleComment, error)
	ListByArticle(ctx context.Context, articleID uint, before *time.Time, limit int) ([]*models.ArticleComment, error)
	Update(ctx context.Context, comment *models.ArticleComment) error
	Delete(ctx context.Context, id uint) error
}

// ProductCommentRepository defines the interface for product comment data operations
type ProductCommentRepository interface {
	Create(ctx context.Context, comment *models.ProductComment) error
	GetByID(ctx context.Context, id uint) (*models.ProductComment, error)
	ListByProduct(ctx context.Context, productID uint, before *time.Time, limit int) ([]*models.ProductComment, error)
	Update(ctx context.Context, comment *models.ProductComment) error
	Delete(ctx context.Context, id uint) error
}

type articleCommentRepository struct {
	db *gorm.DB
}

// NewArticleCommentRepository creates a new article comment repository
func NewArticleCommentRepository(db *gorm.DB) ArticleCommentRepository {
	return &articleCommentRepository{db: db}
}

func (r *articleCommentRepository) Create(ctx context.Context, comment *models.ArticleComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *articleCommentRepository) GetByID(ctx context.Context, id uint) (*models.ArticleComment, error) {
	var comment models.ArticleComment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *articleCommentRepository) ListByArticle(ctx context.Context, articleID uint, before *time.Time, limit int) ([]*models.ArticleComment, error) {
	var comments []*models.ArticleComment
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("article_id = ?", articleID)
	if before != nil {
		db = db.Where("created_at < ?", *before)
	}
	err := db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *articleCommentRepository) Update(ctx context.Context, comment *models.ArticleComment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *articleCommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ArticleComment{}, id).Error
}

type productCommentRepository struct {
	db *gorm.DB
}

// NewProductCommentRepository creates a new product comment repository
func NewProductCommentRepository(db *gorm.DB) ProductCommentRepository {
	return &productCommentRepository{db: db}
}

func (r *productCommentRepository) Create(ctx context.Context, comment *models.ProductComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *productCommentRepository) GetByID(ctx context.Context, id uint) (*models.ProductComment, error) {
	var comment models.ProductComment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *productCommentRepository) ListByProduct(ctx context.Context, productID uint, before *time.Time, limit int) ([]*models.ProductComment, error) {
	var comments []*models.ProductComment
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID)
	if before != nil {
		db = db.Where("created_at < ?", *before)
	}
	err := db.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *productCommentRepository) Update(ctx context.Context, comment *models.ProductComment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *productCommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProductComment{}, id).Error
}
