package seed

import (
	"testing"

	"fleamart/internal/database"
	"fleamart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedPopulates(t *testing.T) {
	db := newTestDB(t)

	err := Seed(db, Options{NumUsers: 4, NumArticles: 6, NumProducts: 5, ShouldClean: false})
	require.NoError(t, err)

	var users, articles, products int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Article{}).Count(&articles).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 6, articles)
	assert.EqualValues(t, 5, products)
}

func TestSeedCleanWipesOldData(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 2, NumArticles: 3, NumProducts: 2, ShouldClean: false}))
	require.NoError(t, Seed(db, Options{NumUsers: 1, NumArticles: 1, NumProducts: 1, ShouldClean: true}))

	var users, articles int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Article{}).Count(&articles).Error)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, articles)
}

func TestFactoryUserLogsInWithSeedPassword(t *testing.T) {
	db := newTestDB(t)
	factory := NewFactory(db)

	user, err := factory.CreateUser()
	require.NoError(t, err)
	require.NotNil(t, user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(seedPassword)))
	assert.Equal(t, models.ProviderLocal, user.Provider)
}

func TestFactoryLikesAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	factory := NewFactory(db)

	user, err := factory.CreateUser()
	require.NoError(t, err)
	article, err := factory.CreateArticle(user)
	require.NoError(t, err)

	require.NoError(t, factory.LikeArticle(user, article))
	require.NoError(t, factory.LikeArticle(user, article))

	var likes int64
	require.NoError(t, db.Model(&models.ArticleLike{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
}
