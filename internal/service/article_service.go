package service

import (
	"context"
	"errors"
	"strings"

	"fleamart/internal/models"
	"fleamart/internal/observability"
	"fleamart/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 200
	maxContentLen = 20000
)

// ArticleService implements the free-board business logic.
type ArticleService struct {
	articleRepo repository.ArticleRepository
}

type CreateArticleInput struct {
	UserID  uint
	Title   string
	Content string
}

type UpdateArticleInput struct {
	UserID    uint
	ArticleID uint
	Title     *string
	Content   *string
}

type ListArticlesInput struct {
	Keyword       string
	Pagination    PageRequest
	CurrentUserID uint
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Liked     bool  `json:"isLiked"`
	LikeCount int64 `json:"likeCount"`
}

func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo}
}

func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 20000 characters)")
	}

	article := &models.Article{
		Title:   title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetArticle(ctx, article.ID, in.UserID)
}

func (s *ArticleService) GetArticle(ctx context.Context, id uint, currentUserID uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", id)
		}
		return nil, models.NewInternalError(err)
	}
	return article, nil
}

func (s *ArticleService) ListArticles(ctx context.Context, in ListArticlesInput) (Page[*models.Article], error) {
	req := in.Pagination.Normalize()

	total, err := s.articleRepo.Count(ctx, in.Keyword)
	if err != nil {
		return Page[*models.Article]{}, models.NewInternalError(err)
	}
	articles, err := s.articleRepo.List(ctx, in.Keyword, req.PageSize, req.Offset(), in.CurrentUserID)
	if err != nil {
		return Page[*models.Article]{}, models.NewInternalError(err)
	}
	return NewPage(articles, total, req), nil
}

func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", in.ArticleID)
		}
		return nil, models.NewInternalError(err)
	}
	if article.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own articles")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		article.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		if len(*in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 20000 characters)")
		}
		article.Content = *in.Content
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetArticle(ctx, article.ID, in.UserID)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, userID, articleID uint) error {
	article, err := s.articleRepo.GetByID(ctx, articleID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Article", articleID)
		}
		return models.NewInternalError(err)
	}
	if article.UserID != userID {
		return models.NewForbiddenError("You can only delete your own articles")
	}
	if err := s.articleRepo.Delete(ctx, articleID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the like state for the user and returns the new state.
func (s *ArticleService) ToggleLike(ctx context.Context, userID, articleID uint) (*LikeResult, error) {
	if _, err := s.GetArticle(ctx, articleID, 0); err != nil {
		return nil, err
	}

	liked, err := s.articleRepo.IsLiked(ctx, userID, articleID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if liked {
		err = s.articleRepo.Unlike(ctx, userID, articleID)
		observability.LikeToggles.WithLabelValues("article", "unlike").Inc()
	} else {
		err = s.articleRepo.Like(ctx, userID, articleID)
		observability.LikeToggles.WithLabelValues("article", "like").Inc()
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	count, err := s.articleRepo.CountLikes(ctx, articleID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LikeResult{Liked: !liked, LikeCount: count}, nil
}
