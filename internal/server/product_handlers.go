package server

import (
	"fleamart/internal/models"
	"fleamart/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProducts handles GET /products
func (s *Server) GetProducts(c *fiber.Ctx) error {
	page, err := s.productService.ListProducts(c.UserContext(), service.ListProductsInput{
		Keyword:       c.Query("keyword"),
		Pagination:    parsePageRequest(c),
		CurrentUserID: optionalUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetProduct handles GET /products/:id
func (s *Server) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	product, svcErr := s.productService.GetProduct(c.UserContext(), id, optionalUserID(c))
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(product)
}

// CreateProduct handles POST /products. Image URLs come from a prior
// POST /api/images call; the rows and joins are written in one transaction.
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       int64    `json:"price"`
		Tags        []string `json:"tags"`
		ImageURLs   []string `json:"imageUrls"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	product, svcErr := s.productService.CreateProduct(c.UserContext(), service.CreateProductInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		ImageURLs:   req.ImageURLs,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct handles PATCH /products/:id
func (s *Server) UpdateProduct(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *int64   `json:"price"`
		Tags        []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	product, svcErr := s.productService.UpdateProduct(c.UserContext(), service.UpdateProductInput{
		UserID:      userID,
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
	})
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /products/:id
func (s *Server) DeleteProduct(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.productService.DeleteProduct(c.UserContext(), userID, id); svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ToggleProductLike handles POST /products/:id/like
func (s *Server) ToggleProductLike(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, svcErr := s.productService.ToggleLike(c.UserContext(), userID, id)
	if svcErr != nil {
		return respondError(c, svcErr)
	}
	return c.JSON(result)
}
