package server

import (
	"errors"

	"fleamart/internal/middleware"
	"fleamart/internal/models"
	"fleamart/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondError maps a service error to its HTTP status and writes the
// standard error body.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePageRequest reads page/pageSize query parameters. Out-of-range values
// are normalized by the service layer.
func parsePageRequest(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", service.DefaultPageSize),
	}
}

// requireUserID returns the authenticated user ID stored by AuthRequired.
// Routes behind AuthRequired always have it; the error branch guards against
// wiring mistakes.
func requireUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Authentication required"))
		return 0, errResponseWritten
	}
	return userID, nil
}

// optionalUserID returns the user ID when OptionalAuth resolved one, zero
// otherwise.
func optionalUserID(c *fiber.Ctx) uint {
	userID, _ := middleware.UserIDFromCtx(c)
	return userID
}
