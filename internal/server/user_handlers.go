package server

import (
	"fleamart/internal/models"
	"fleamart/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /users/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetProfile(c.UserContext(), userID)
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfile handles PUT /users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Nickname *string `json:"nickname"`
		Image    *string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, svcErr := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   userID,
		Nickname: req.Nickname,
		Image:    req.Image,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"user": user})
}

// ChangePassword handles PUT /users/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if svcErr := s.userService.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

// DeleteAccount handles DELETE /users/delete. The row is soft-deleted and the
// session cookies are cleared.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	if svcErr := s.userService.DeleteAccount(c.UserContext(), userID); svcErr != nil {
		return respondError(c, svcErr)
	}
	s.clearAuthCookies(c)
	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// GetMyArticles handles GET /users/articles
func (s *Server) GetMyArticles(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	page, svcErr := s.userService.ListOwnArticles(c.UserContext(), userID, parsePageRequest(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}

// GetMyProducts handles GET /users/products
func (s *Server) GetMyProducts(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	page, svcErr := s.userService.ListOwnProducts(c.UserContext(), userID, parsePageRequest(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}

// GetMyUploads handles GET /users/uploads
func (s *Server) GetMyUploads(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	page, svcErr := s.uploadService.ListUserUploads(c.UserContext(), userID, parsePageRequest(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}

// GetLikedProducts handles GET /users/likes/products
func (s *Server) GetLikedProducts(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	page, svcErr := s.userService.ListLikedProducts(c.UserContext(), userID, parsePageRequest(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}

// GetLikedArticles handles GET /users/likes/articles
func (s *Server) GetLikedArticles(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	page, svcErr := s.userService.ListLikedArticles(c.UserContext(), userID, parsePageRequest(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(page)
}
