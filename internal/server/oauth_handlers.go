package server

import (
	"encoding/json"
	"time"

	"fleamart/internal/models"
	"fleamart/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth-state"

// googleUserInfoURL is a var so handler tests can point it at a stub server.
var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func (s *Server) googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.config.GoogleClientID,
		ClientSecret: s.config.GoogleClientSecret,
		RedirectURL:  s.config.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// GoogleLogin handles GET /auth/google. It sends the browser to Google's
// consent page with a single-use state value.
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(s.googleOAuthConfig().AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /auth/google/callback: code exchange, profile
// fetch, then find-or-create of the federated account.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Invalid OAuth state"))
	}
	c.Cookie(&fiber.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})

	code := c.Query("code")
	if code == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Missing authorization code"))
	}

	ctx := c.UserContext()
	cfg := s.googleOAuthConfig()
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Code exchange failed"))
	}

	resp, err := cfg.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Failed to fetch Google profile"))
	}
	defer func() { _ = resp.Body.Close() }()

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Malformed Google profile"))
	}

	result, err := s.authService.LoginWithGoogle(ctx, service.GoogleProfile{
		Sub:     profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.setAuthCookies(c, result.Tokens)
	return c.Redirect("/", fiber.StatusFound)
}
