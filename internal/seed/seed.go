package seed

import (
	"fmt"
	"log"

	"fleamart/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	NumProducts int
	ShouldClean bool
}

// Seed populates the database with demo users, articles, products, comments
// and likes.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users, %d articles, %d products...",
		opts.NumUsers, opts.NumArticles, opts.NumProducts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	factory := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users (password %q)", len(users), seedPassword)

	if len(users) == 0 {
		return nil
	}

	articles := make([]*models.Article, 0, opts.NumArticles)
	for i := 0; i < opts.NumArticles; i++ {
		author := users[factory.rng.Intn(len(users))]
		article, err := factory.CreateArticle(author)
		if err != nil {
			return fmt.Errorf("failed to create article: %w", err)
		}
		articles = append(articles, article)
	}
	log.Printf("Created %d articles", len(articles))

	products := make([]*models.Product, 0, opts.NumProducts)
	for i := 0; i < opts.NumProducts; i++ {
		seller := users[factory.rng.Intn(len(users))]
		product, err := factory.CreateProduct(seller)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		products = append(products, product)
	}
	log.Printf("Created %d products", len(products))

	if err := seedEngagement(factory, users, articles, products); err != nil {
		return err
	}

	log.Println("Seeding complete")
	return nil
}

// seedEngagement sprinkles comments and likes across the content so listings
// and detail pages look lived-in.
func seedEngagement(factory *Factory, users []*models.User, articles []*models.Article, products []*models.Product) error {
	for _, article := range articles {
		for i := 0; i < factory.rng.Intn(4); i++ {
			user := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreateArticleComment(user, article); err != nil {
				return fmt.Errorf("failed to create article comment: %w", err)
			}
		}
		for i := 0; i < factory.rng.Intn(len(users)+1); i++ {
			user := users[factory.rng.Intn(len(users))]
			if err := factory.LikeArticle(user, article); err != nil {
				return fmt.Errorf("failed to like article: %w", err)
			}
		}
	}

	for _, product := range products {
		for i := 0; i < factory.rng.Intn(3); i++ {
			user := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreateProductComment(user, product); err != nil {
				return fmt.Errorf("failed to create product comment: %w", err)
			}
		}
		for i := 0; i < factory.rng.Intn(len(users)+1); i++ {
			user := users[factory.rng.Intn(len(users))]
			if err := factory.LikeProduct(user, product); err != nil {
				return fmt.Errorf("failed to like product: %w", err)
			}
		}
	}
	return nil
}

// clearData hard-deletes every row, children before parents.
func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.UploadLog{},
		&models.ProductComment{},
		&models.ProductLike{},
		&models.ArticleComment{},
		&models.ArticleLike{},
		&models.Product{},
		&models.Image{},
		&models.Article{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
