package server

import (
	"fleamart/internal/models"
	"fleamart/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetArticleComments handles GET /articles/:articleId/comments
func (s *Server) GetArticleComments(c *fiber.Ctx) error {
	articleID, err := parseID(c, "articleId")
	if err != nil {
		return nil
	}

	page, svcErr := s.commentService.ListArticleComments(c.UserContext(), service.ListCommentsInput{
		TargetID: articleID,
		Cursor:   c.Query("cursor"),
		Limit:    c.QueryInt("limit", 0),
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}

// CreateArticleComment handles POST /articles/:articleId/comments
func (s *Server) CreateArticleComment(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	articleID, err := parseID(c, "articleId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.CreateArticleComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		TargetID: articleID,
		Content:  req.Content,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateArticleComment handles PATCH /articles/:articleId/comments/:commentId
func (s *Server) UpdateArticleComment(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.UpdateArticleComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(comment)
}

// DeleteArticleComment handles DELETE /articles/:articleId/comments/:commentId
func (s *Server) DeleteArticleComment(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.DeleteArticleComment(c.UserContext(), userID, commentID); svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// GetProductComments handles GET /products/:productId/comments
func (s *Server) GetProductComments(c *fiber.Ctx) error {
	productID, err := parseID(c, "productId")
	if err != nil {
		return nil
	}

	page, svcErr := s.commentService.ListProductComments(c.UserContext(), service.ListCommentsInput{
		TargetID: productID,
		Cursor:   c.Query("cursor"),
		Limit:    c.QueryInt("limit", 0),
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}

// CreateProductComment handles POST /products/:productId/comments
func (s *Server) CreateProductComment(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	productID, err := parseID(c, "productId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.CreateProductComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		TargetID: productID,
		Content:  req.Content,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateProductComment handles PATCH /products/:productId/comments/:commentId
func (s *Server) UpdateProductComment(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.UpdateProductComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(comment)
}

// DeleteProductComment handles DELETE /products/:productId/comments/:commentId
func (s *Server) DeleteProductComment(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.DeleteProductComment(c.UserContext(), userID, commentID); svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
