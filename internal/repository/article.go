package repository

import (
	"context"
	"strings"

	"fleamart/internal/cache"
	"fleamart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Article, error)
	List(ctx context.Context, keyword string, limit, offset int, currentUserID uint) ([]*models.Article, error)
	Count(ctx context.Context, keyword string) (int64, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Article, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	ListLikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Article, error)
	CountLikedByUser(ctx context.Context, userID uint) (int64, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, articleID uint) (bool, error)
	CountLikes(ctx context.Context, articleID uint) (int64, error)
	LikeUserIDs(ctx context.Context, articleID uint) ([]uint, error)
	Like(ctx context.Context, userID, articleID uint) error
	Unlike(ctx context.Context, userID, articleID uint) error
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// applyArticleDetails adds subqueries to fetch the like count and liked status
// in a single query.
func (r *articleRepository) applyArticleDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "articles.*, " +
		"(SELECT COUNT(*) FROM article_likes WHERE article_likes.article_id = articles.id) AS like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM article_likes WHERE article_likes.article_id = articles.id AND article_likes.user_id = ?) AS liked",
			currentUserID)
	}
	return db.Select(selectQuery + ", 0 AS liked")
}

// applyKeyword adds a case-insensitive substring match over title and content.
func applyKeyword(db *gorm.DB, columns []string, keyword string) *gorm.DB {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return db
	}
	pattern := "%" + strings.ToLower(keyword) + "%"
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

func (r *articleRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Article, error) {
	fetch := func(dest *models.Article) error {
		return r.applyArticleDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(dest, id).Error
	}

	var article models.Article
	// Anonymous reads carry no personalized fields, so they can share a
	// cached copy. Mutations and likes invalidate the key.
	if currentUserID == 0 {
		err := cache.CacheAside(ctx, cache.ArticleKey(id), &article, cache.ArticleTTL, func() error {
			return fetch(&article)
		})
		if err != nil {
			return nil, err
		}
		return &article, nil
	}

	if err := fetch(&article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, keyword string, limit, offset int, currentUserID uint) ([]*models.Article, error) {
	var articles []*models.Article
	base := r.applyArticleDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User")
	err := applyKeyword(base, []string{"articles.title", "articles.content"}, keyword).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepository) Count(ctx context.Context, keyword string) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&models.Article{})
	err := applyKeyword(db, []string{"articles.title", "articles.content"}, keyword).
		Count(&count).Error
	return count, err
}

func (r *articleRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.applyArticleDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Where("articles.user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *articleRepository) ListLikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.applyArticleDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Joins("JOIN article_likes ON article_likes.article_id = articles.id AND article_likes.user_id = ?", userID).
		Order("article_likes.created_at DESC, articles.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) CountLikedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).
		Joins("JOIN article_likes ON article_likes.article_id = articles.id AND article_likes.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return err
	}
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Article{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateArticle(ctx, id)
	return nil
}

func (r *articleRepository) IsLiked(ctx context.Context, userID, articleID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleLike{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *articleRepository) CountLikes(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ArticleLike{}).
		Where("article_id = ?", articleID).
		Count(&count).Error
	return count, err
}

func (r *articleRepository) LikeUserIDs(ctx context.Context, articleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ArticleLike{}).
		Where("article_id = ?", articleID).
		Order("created_at ASC, id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *articleRepository) Like(ctx context.Context, userID, articleID uint) error {
	// ON CONFLICT DO NOTHING makes concurrent double-likes converge on one row.
	like := models.ArticleLike{UserID: userID, ArticleID: articleID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
	if err == nil {
		cache.InvalidateArticle(ctx, articleID)
	}
	return err
}

func (r *articleRepository) Unlike(ctx context.Context, userID, articleID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&models.ArticleLike{}).Error
	if err == nil {
		cache.InvalidateArticle(ctx, articleID)
	}
	return err
}
