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
	maxNameLen        = 120
	maxDescriptionLen = 20000
	maxTags           = 10
	maxTagLen         = 30
	maxProductImages  = 5
)

// ProductService implements the marketplace listing business logic.
type ProductService struct {
	productRepo repository.ProductRepository
}

type CreateProductInput struct {
	UserID      uint
	Name        string
	Description string
	Price       int64
	Tags        []string
	ImageURLs   []string
}

type UpdateProductInput struct {
	UserID      uint
	ProductID   uint
	Name        *string
	Description *string
	Price       *int64
	Tags        []string
}

type ListProductsInput struct {
	Keyword       string
	Pagination    PageRequest
	CurrentUserID uint
}

func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func validateTags(tags []string) ([]string, error) {
	if len(tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(tag) > maxTagLen {
			return nil, models.NewValidationError("Tag too long (max 30 characters)")
		}
		cleaned = append(cleaned, tag)
	}
	return cleaned, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(name) > maxNameLen {
		return nil, models.NewValidationError("Name too long (max 120 characters)")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 20000 characters)")
	}
	if in.Price < 0 {
		return nil, models.NewValidationError("Price cannot be negative")
	}
	if len(in.ImageURLs) > maxProductImages {
		return nil, models.NewValidationError("Too many images (max 5)")
	}
	tags, err := validateTags(in.Tags)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Tags:        tags,
		UserID:      in.UserID,
	}
	// Product, image rows and joins land in one transaction.
	if err := s.productRepo.CreateWithImages(ctx, product, in.ImageURLs); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetProduct(ctx, product.ID, in.UserID)
}

func (s *ProductService) GetProduct(ctx context.Context, id uint, currentUserID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Product", id)
		}
		return nil, models.NewInternalError(err)
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, in ListProductsInput) (Page[*models.Product], error) {
	req := in.Pagination.Normalize()

	total, err := s.productRepo.Count(ctx, in.Keyword)
	if err != nil {
		return Page[*models.Product]{}, models.NewInternalError(err)
	}
	products, err := s.productRepo.List(ctx, in.Keyword, req.PageSize, req.Offset(), in.CurrentUserID)
	if err != nil {
		return Page[*models.Product]{}, models.NewInternalError(err)
	}
	return NewPage(products, total, req), nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, in UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, in.ProductID, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Product", in.ProductID)
		}
		return nil, models.NewInternalError(err)
	}
	if product.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own products")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		if len(name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 120 characters)")
		}
		product.Name = name
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, models.NewValidationError("Description cannot be empty")
		}
		if len(*in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError("Description too long (max 20000 characters)")
		}
		product.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, models.NewValidationError("Price cannot be negative")
		}
		product.Price = *in.Price
	}
	if in.Tags != nil {
		tags, err := validateTags(in.Tags)
		if err != nil {
			return nil, err
		}
		product.Tags = tags
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetProduct(ctx, product.ID, in.UserID)
}

func (s *ProductService) DeleteProduct(ctx context.Context, userID, productID uint) error {
	product, err := s.productRepo.GetByID(ctx, productID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Product", productID)
		}
		return models.NewInternalError(err)
	}
	if product.UserID != userID {
		return models.NewForbiddenError("You can only delete your own products")
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the like state for the user and returns the new state.
func (s *ProductService) ToggleLike(ctx context.Context, userID, productID uint) (*LikeResult, error) {
	if _, err := s.GetProduct(ctx, productID, 0); err != nil {
		return nil, err
	}

	liked, err := s.productRepo.IsLiked(ctx, userID, productID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if liked {
		err = s.productRepo.Unlike(ctx, userID, productID)
		observability.LikeToggles.WithLabelValues("product", "unlike").Inc()
	} else {
		err = s.productRepo.Like(ctx, userID, productID)
		observability.LikeToggles.WithLabelValues("product", "like").Inc()
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	count, err := s.productRepo.CountLikes(ctx, productID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LikeResult{Liked: !liked, LikeCount: count}, nil
}
