package repository

import (
	"context"

	"fleamart/internal/cache"
	"fleamart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	CreateWithImages(ctx context.Context, product *models.Product, imageURLs []string) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Product, error)
	List(ctx context.Context, keyword string, limit, offset int, currentUserID uint) ([]*models.Product, error)
	Count(ctx context.Context, keyword string) (int64, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Product, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	ListLikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Product, error)
	CountLikedByUser(ctx context.Context, userID uint) (int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, productID uint) (bool, error)
	CountLikes(ctx context.Context, productID uint) (int64, error)
	Like(ctx context.Context, userID, productID uint) error
	Unlike(ctx context.Context, userID, productID uint) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// CreateWithImages creates the product, its image rows and the join rows in
// one transaction. A failure on any row rolls back the whole listing.
func (r *productRepository) CreateWithImages(ctx context.Context, product *models.Product, imageURLs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Create(product).Error; err != nil {
			return err
		}
		if len(imageURLs) == 0 {
			return nil
		}
		// Uploads already wrote Image rows; reuse them by URL and only
		// create rows for URLs the upload flow never saw.
		images := make([]models.Image, len(imageURLs))
		for i, url := range imageURLs {
			images[i] = models.Image{URL: url}
			if err := tx.Where("url = ?", url).FirstOrCreate(&images[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(product).Association("Images").Append(images); err != nil {
			return err
		}
		product.Images = images
		return nil
	})
}

// applyProductDetails adds subqueries to fetch the like count and liked status
// in a single query.
func (r *productRepository) applyProductDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "products.*, " +
		"(SELECT COUNT(*) FROM product_likes WHERE product_likes.product_id = products.id) AS like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM product_likes WHERE product_likes.product_id = products.id AND product_likes.user_id = ?) AS liked",
			currentUserID)
	}
	return db.Select(selectQuery + ", 0 AS liked")
}

func (r *productRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Product, error) {
	fetch := func(dest *models.Product) error {
		return r.applyProductDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			Preload("Images").
			First(dest, id).Error
	}

	var product models.Product
	// Anonymous reads carry no personalized fields, so they can share a
	// cached copy. Mutations and likes invalidate the key.
	if currentUserID == 0 {
		err := cache.CacheAside(ctx, cache.ProductKey(id), &product, cache.ProductTTL, func() error {
			return fetch(&product)
		})
		if err != nil {
			return nil, err
		}
		return &product, nil
	}

	if err := fetch(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, keyword string, limit, offset int, currentUserID uint) ([]*models.Product, error) {
	var products []*models.Product
	base := r.applyProductDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Images")
	err := applyKeyword(base, []string{"products.name", "products.description"}, keyword).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Count(ctx context.Context, keyword string) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&models.Product{})
	err := applyKeyword(db, []string{"products.name", "products.description"}, keyword).
		Count(&count).Error
	return count, err
}

func (r *productRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Product, error) {
	var products []*models.Product
	err := r.applyProductDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Preload("Images").
		Where("products.user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) ListLikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Product, error) {
	var products []*models.Product
	err := r.applyProductDetails(r.db.WithContext(ctx), userID).
		Preload("User").
		Preload("Images").
		Joins("JOIN product_likes ON product_likes.product_id = products.id AND product_likes.user_id = ?", userID).
		Order("product_likes.created_at DESC, products.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	return products, err
}

func (r *productRepository) CountLikedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Joins("JOIN product_likes ON product_likes.product_id = products.id AND product_likes.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit("Images").Save(product).Error; err != nil {
		return err
	}
	cache.InvalidateProduct(ctx, product.ID)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateProduct(ctx, id)
	return nil
}

func (r *productRepository) IsLiked(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductLike{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) CountLikes(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductLike{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

func (r *productRepository) Like(ctx context.Context, userID, productID uint) error {
	// ON CONFLICT DO NOTHING makes concurrent double-likes converge on one row.
	like := models.ProductLike{UserID: userID, ProductID: productID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
	if err == nil {
		cache.InvalidateProduct(ctx, productID)
	}
	return err
}

func (r *productRepository) Unlike(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.ProductLike{}).Error
	if err == nil {
		cache.InvalidateProduct(ctx, productID)
	}
	return err
}
