package server

import (
	"fleamart/internal/models"
	"fleamart/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetArticles handles GET /articles
func (s *Server) GetArticles(c *fiber.Ctx) error {
	page, err := s.articleService.ListArticles(c.UserContext(), service.ListArticlesInput{
		Keyword:       c.Query("keyword"),
		Pagination:    parsePageRequest(c),
		CurrentUserID: optionalUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetArticle handles GET /articles/:id
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	article, svcErr := s.articleService.GetArticle(c.UserContext(), id, optionalUserID(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}

	// The detail view also exposes who liked the article.
	likedIDs, idsErr := s.articleRepo.LikeUserIDs(c.UserContext(), id)
	if idsErr != nil {
		return respondError(c, models.NewInternalError(idsErr))
	}
	article.LikedUserIDs = likedIDs
	if article.LikedUserIDs == nil {
		article.LikedUserIDs = []uint{}
	}

	return c.JSON(article)
}

// CreateArticle handles POST /articles
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, svcErr := s.articleService.CreateArticle(c.UserContext(), service.CreateArticleInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateArticle handles PATCH /articles/:id
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, svcErr := s.articleService.UpdateArticle(c.UserContext(), service.UpdateArticleInput{
		UserID:    userID,
		ArticleID: id,
		Title:     req.Title,
		Content:   req.Content,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /articles/:id
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.articleService.DeleteArticle(c.UserContext(), userID, id); svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Article deleted"})
}

// ToggleArticleLike handles POST /articles/:id/like
func (s *Server) ToggleArticleLike(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, svcErr := s.articleService.ToggleLike(c.UserContext(), userID, id)
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(result)
}
