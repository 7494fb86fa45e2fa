package server

import (
	"fleamart/internal/middleware"
	"fleamart/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImages handles POST /api/images. The route uses OptionalAuth, so the
// audit rows carry a null user for anonymous uploads.
func (s *Server) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}

	files := form.File["images"]
	if len(files) == 0 {
		// Some clients send the files under "files".
		files = form.File["files"]
	}

	var userID *uint
	if uid, ok := middleware.UserIDFromCtx(c); ok {
		userID = &uid
	}

	urls, svcErr := s.uploadService.Process(c.UserContext(), userID, files)
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"urls": urls})
}
