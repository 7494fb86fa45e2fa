package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleamart/internal/models"
	"fleamart/internal/repository"

	"gorm.io/gorm"
)

const (
	maxCommentLen          = 2000
	defaultCommentPageSize = 10
	maxCommentPageSize     = 50
)

// CommentService implements comments for articles and products. Both targets
// share the same validation, cursor paging and ownership rules.
type CommentService struct {
	articleRepo        repository.ArticleRepository
	productRepo        repository.ProductRepository
	articleCommentRepo repository.ArticleCommentRepository
	productCommentRepo repository.ProductCommentRepository
}

type CreateCommentInput struct {
	UserID   uint
	TargetID uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type ListCommentsInput struct {
	TargetID uint
	Cursor   string
	Limit    int
}

// CommentPage is one cursor-paginated page of comments.
// NextCursor is nil when the page was not full, which signals the end.
type CommentPage[T any] struct {
	Comments   []T     `json:"comments"`
	NextCursor *string `json:"nextCursor"`
}

func NewCommentService(
	articleRepo repository.ArticleRepository,
	productRepo repository.ProductRepository,
	articleCommentRepo repository.ArticleCommentRepository,
	productCommentRepo repository.ProductCommentRepository,
) *CommentService {
	return &CommentService{
		articleRepo:        articleRepo,
		productRepo:        productRepo,
		articleCommentRepo: articleCommentRepo,
		productCommentRepo: productCommentRepo,
	}
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 2000 characters)")
	}
	return nil
}

// parseCursor decodes an RFC 3339 cursor. Unparseable cursors are treated as
// absent rather than rejected.
func parseCursor(cursor string) *time.Time {
	if cursor == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return nil
	}
	return &ts
}

func normalizeCommentLimit(limit int) int {
	if limit < 1 {
		return defaultCommentPageSize
	}
	if limit > maxCommentPageSize {
		return maxCommentPageSize
	}
	return limit
}

func (s *CommentService) CreateArticleComment(ctx context.Context, in CreateCommentInput) (*models.ArticleComment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	if _, err := s.articleRepo.GetByID(ctx, in.TargetID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Article", in.TargetID)
		}
		return nil, models.NewInternalError(err)
	}

	comment := &models.ArticleComment{
		Content:   in.Content,
		ArticleID: in.TargetID,
		UserID:    in.UserID,
	}
	if err := s.articleCommentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.articleCommentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListArticleComments(ctx context.Context, in ListCommentsInput) (CommentPage[*models.ArticleComment], error) {
	if _, err := s.articleRepo.GetByID(ctx, in.TargetID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CommentPage[*models.ArticleComment]{}, models.NewNotFoundError("Article", in.TargetID)
		}
		return CommentPage[*models.ArticleComment]{}, models.NewInternalError(err)
	}

	limit := normalizeCommentLimit(in.Limit)
	comments, err := s.articleCommentRepo.ListByArticle(ctx, in.TargetID, parseCursor(in.Cursor), limit)
	if err != nil {
		return CommentPage[*models.ArticleComment]{}, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.ArticleComment{}
	}

	page := CommentPage[*models.ArticleComment]{Comments: comments}
	if len(comments) == limit {
		cursor := comments[len(comments)-1].CreatedAt.Format(time.RFC3339Nano)
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *CommentService) UpdateArticleComment(ctx context.Context, in UpdateCommentInput) (*models.ArticleComment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment, err := s.articleCommentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, models.NewInternalError(err)
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	comment.Content = in.Content
	if err := s.articleCommentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *CommentService) DeleteArticleComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.articleCommentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.articleCommentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *CommentService) CreateProductComment(ctx context.Context, in CreateCommentInput) (*models.ProductComment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.GetByID(ctx, in.TargetID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Product", in.TargetID)
		}
		return nil, models.NewInternalError(err)
	}

	comment := &models.ProductComment{
		Content:   in.Content,
		ProductID: in.TargetID,
		UserID:    in.UserID,
	}
	if err := s.productCommentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.productCommentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListProductComments(ctx context.Context, in ListCommentsInput) (CommentPage[*models.ProductComment], error) {
	if _, err := s.productRepo.GetByID(ctx, in.TargetID, 0); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CommentPage[*models.ProductComment]{}, models.NewNotFoundError("Product", in.TargetID)
		}
		return CommentPage[*models.ProductComment]{}, models.NewInternalError(err)
	}

	limit := normalizeCommentLimit(in.Limit)
	comments, err := s.productCommentRepo.ListByProduct(ctx, in.TargetID, parseCursor(in.Cursor), limit)
	if err != nil {
		return CommentPage[*models.ProductComment]{}, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.ProductComment{}
	}

	page := CommentPage[*models.ProductComment]{Comments: comments}
	if len(comments) == limit {
		cursor := comments[len(comments)-1].CreatedAt.Format(time.RFC3339Nano)
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *CommentService) UpdateProductComment(ctx context.Context, in UpdateCommentInput) (*models.ProductComment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment, err := s.productCommentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, models.NewInternalError(err)
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	comment.Content = in.Content
	if err := s.productCommentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *CommentService) DeleteProductComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.productCommentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", commentID)
		}
		return models.NewInternalError(err)
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.productCommentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
