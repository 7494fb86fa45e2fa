package repository

import (
	"context"
	"testing"
	"time"

	"fleamart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleRepositoryListOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "writer")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		article := &models.Article{
			Title:     "title",
			Content:   "content",
			UserID:    user.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, article))
	}

	articles, err := repo.List(ctx, "", 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	for i := 1; i < len(articles); i++ {
		assert.False(t, articles[i].CreatedAt.After(articles[i-1].CreatedAt),
			"articles must be ordered newest first")
	}
}

func TestArticleRepositoryKeywordSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "writer")

	require.NoError(t, repo.Create(ctx, &models.Article{Title: "Selling my Bicycle", Content: "good shape", UserID: user.ID}))
	require.NoError(t, repo.Create(ctx, &models.Article{Title: "Random", Content: "I love BICYCLES", UserID: user.ID}))
	require.NoError(t, repo.Create(ctx, &models.Article{Title: "Unrelated", Content: "nothing here", UserID: user.ID}))

	// Matching is case-insensitive over title OR content.
	articles, err := repo.List(ctx, "bicycle", 10, 0, 0)
	require.NoError(t, err)
	assert.Len(t, articles, 2)

	count, err := repo.Count(ctx, "bicycle")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.Count(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestArticleRepositoryLikeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")

	article := &models.Article{Title: "t", Content: "c", UserID: author.ID}
	require.NoError(t, repo.Create(ctx, article))

	require.NoError(t, repo.Like(ctx, fan.ID, article.ID))
	require.NoError(t, repo.Like(ctx, fan.ID, article.ID))

	count, err := repo.CountLikes(ctx, article.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "double like must not create a second row")

	liked, err := repo.IsLiked(ctx, fan.ID, article.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.Unlike(ctx, fan.ID, article.ID))
	liked, err = repo.IsLiked(ctx, fan.ID, article.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestArticleRepositoryComputedColumns(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")

	article := &models.Article{Title: "t", Content: "c", UserID: author.ID}
	require.NoError(t, repo.Create(ctx, article))
	require.NoError(t, repo.Like(ctx, fan.ID, article.ID))

	asFan, err := repo.GetByID(ctx, article.ID, fan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, asFan.LikeCount)
	assert.True(t, asFan.Liked)
	assert.Equal(t, "author", asFan.User.Nickname)

	asGuest, err := repo.GetByID(ctx, article.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, asGuest.LikeCount)
	assert.False(t, asGuest.Liked)
}

func TestArticleRepositoryLikedListing(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")

	liked := &models.Article{Title: "liked", Content: "c", UserID: author.ID}
	other := &models.Article{Title: "other", Content: "c", UserID: author.ID}
	require.NoError(t, repo.Create(ctx, liked))
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, repo.Like(ctx, fan.ID, liked.ID))

	articles, err := repo.ListLikedByUser(ctx, fan.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "liked", articles[0].Title)
	assert.True(t, articles[0].Liked)

	count, err := repo.CountLikedByUser(ctx, fan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestArticleRepositorySoftDeleteExcludedFromList(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "writer")

	article := &models.Article{Title: "t", Content: "c", UserID: user.ID}
	require.NoError(t, repo.Create(ctx, article))
	require.NoError(t, repo.Delete(ctx, article.ID))

	articles, err := repo.List(ctx, "", 10, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, articles)

	count, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}
