package server

import (
	"time"

	"fleamart/internal/middleware"
	"fleamart/internal/models"
	"fleamart/internal/service"
	"fleamart/internal/token"

	"github.com/gofiber/fiber/v2"
)

// setAuthCookies writes the token pair as httpOnly session cookies.
func (s *Server) setAuthCookies(c *fiber.Ctx, pair *token.Pair) {
	secure := s.config.IsProduction()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(token.AccessTokenTTL.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(token.RefreshTokenTTL.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearAuthCookies expires both session cookies.
func (s *Server) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   s.config.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}

// Register handles POST /auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.setAuthCookies(c, result.Tokens)
	return c.JSON(fiber.Map{"user": result.User})
}

// Refresh handles POST /auth/refresh. Both cookies are reissued from a valid
// refresh token.
func (s *Server) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(middleware.RefreshTokenCookie)
	if raw == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Refresh token required"))
	}

	result, err := s.authService.Refresh(c.UserContext(), raw)
	if err != nil {
		return respondError(c, err)
	}

	s.setAuthCookies(c, result.Tokens)
	return c.JSON(fiber.Map{"user": result.User})
}

// Logout handles POST /auth/logout. There is no revocation store; logout is
// cookie deletion only.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearAuthCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
