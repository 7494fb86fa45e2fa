// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"fleamart/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Every seeded account logs in with this password.
const seedPassword = "Passw0rd123"

var productTags = []string{
	"electronics", "furniture", "clothing", "books", "sports",
	"music", "vintage", "handmade", "kids", "outdoor", "kitchen",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	hash string
}

// NewFactory creates a Factory bound to the provided Gorm DB. The bcrypt hash
// for the shared password is computed once; hashing per user dominates seed
// time otherwise.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	hashed, _ := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	return &Factory{
		db:   db,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		hash: string(hashed),
	}
}

// CreateUser persists a sample local-credential user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	password := f.hash
	user := &models.User{
		Email:    gofakeit.Email(),
		Nickname: fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), gofakeit.Number(100, 999)),
		Password: &password,
		Provider: models.ProviderLocal,
		Image:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateArticle persists a sample article owned by the given user, with a
// created_at spread over the past days for realistic listings.
func (f *Factory) CreateArticle(user *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	article := &models.Article{
		Title:     gofakeit.Sentence(5),
		Content:   gofakeit.Paragraph(2, 4, 8, "\n"),
		UserID:    user.ID,
		CreatedAt: f.pastTime(60),
	}
	for _, override := range overrides {
		override(article)
	}
	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// CreateProduct persists a sample product listing with tags and images.
func (f *Factory) CreateProduct(user *models.User, overrides ...func(*models.Product)) (*models.Product, error) {
	tags := make([]string, 0, 3)
	for _, i := range f.rng.Perm(len(productTags))[:f.rng.Intn(3)+1] {
		tags = append(tags, productTags[i])
	}

	product := &models.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       int64(gofakeit.Number(1000, 500000)),
		Tags:        tags,
		UserID:      user.ID,
		CreatedAt:   f.pastTime(60),
	}
	for _, override := range overrides {
		override(product)
	}

	imageCount := f.rng.Intn(3)
	for i := 0; i < imageCount; i++ {
		product.Images = append(product.Images, models.Image{
			URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		})
	}

	if err := f.db.Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// CreateArticleComment persists a comment on the article.
func (f *Factory) CreateArticleComment(user *models.User, article *models.Article) (*models.ArticleComment, error) {
	comment := &models.ArticleComment{
		Content:   gofakeit.Sentence(f.rng.Intn(12) + 3),
		ArticleID: article.ID,
		UserID:    user.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateProductComment persists a comment on the product.
func (f *Factory) CreateProductComment(user *models.User, product *models.Product) (*models.ProductComment, error) {
	comment := &models.ProductComment{
		Content:   gofakeit.Sentence(f.rng.Intn(12) + 3),
		ProductID: product.ID,
		UserID:    user.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// LikeArticle writes a like row; duplicate pairs are silently skipped.
func (f *Factory) LikeArticle(user *models.User, article *models.Article) error {
	like := models.ArticleLike{UserID: user.ID, ArticleID: article.ID}
	return f.db.Where(like).FirstOrCreate(&like).Error
}

// LikeProduct writes a like row; duplicate pairs are silently skipped.
func (f *Factory) LikeProduct(user *models.User, product *models.Product) error {
	like := models.ProductLike{UserID: user.ID, ProductID: product.ID}
	return f.db.Where(like).FirstOrCreate(&like).Error
}

func (f *Factory) pastTime(maxDays int) time.Time {
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}
