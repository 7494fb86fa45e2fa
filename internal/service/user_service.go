package service

import (
	"context"
	"errors"

	"fleamart/internal/models"
	"fleamart/internal/repository"
	"fleamart/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService implements profile management and the current user's listings.
type UserService struct {
	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	productRepo repository.ProductRepository
}

type UpdateProfileInput struct {
	UserID   uint
	Nickname *string
	Image    *string
}

type ChangePasswordInput struct {
	UserID          uint
	CurrentPassword string
	NewPassword     string
}

func NewUserService(
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	productRepo repository.ProductRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		articleRepo: articleRepo,
		productRepo: productRepo,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Nickname != nil {
		if err := validation.ValidateNickname(*in.Nickname); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Nickname = *in.Nickname
	}
	if in.Image != nil {
		user.Image = *in.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, models.NewConflictError("Nickname is already in use")
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.GetProfile(ctx, in.UserID)
	if err != nil {
		return err
	}

	// Social accounts have no password to change.
	if user.Password == nil {
		return models.NewValidationError("This account uses social sign-in and has no password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(in.CurrentPassword)); err != nil {
		return models.NewUnauthenticatedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	hashed := string(hash)
	user.Password = &hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListOwnArticles returns the articles written by the user.
func (s *UserService) ListOwnArticles(ctx context.Context, userID uint, req PageRequest) (Page[*models.Article], error) {
	req = req.Normalize()
	total, err := s.articleRepo.CountByUserID(ctx, userID)
	if err != nil {
		return Page[*models.Article]{}, models.NewInternalError(err)
	}
	articles, err := s.articleRepo.ListByUserID(ctx, userID, req.PageSize, req.Offset())
	if err != nil {
		return Page[*models.Article]{}, models.NewInternalError(err)
	}
	return NewPage(articles, total, req), nil
}

// ListOwnProducts returns the products listed by the user.
func (s *UserService) ListOwnProducts(ctx context.Context, userID uint, req PageRequest) (Page[*models.Product], error) {
	req = req.Normalize()
	total, err := s.productRepo.CountByUserID(ctx, userID)
	if err != nil {
		return Page[*models.Product]{}, models.NewInternalError(err)
	}
	products, err := s.productRepo.ListByUserID(ctx, userID, req.PageSize, req.Offset())
	if err != nil {
		return Page[*models.Product]{}, models.NewInternalError(err)
	}
	return NewPage(products, total, req), nil
}

// ListLikedProducts returns the products the user has liked.
func (s *UserService) ListLikedProducts(ctx context.Context, userID uint, req PageRequest) (Page[*models.Product], error) {
	req = req.Normalize()
	total, err := s.productRepo.CountLikedByUser(ctx, userID)
	if err != nil {
		return Page[*models.Product]{}, models.NewInternalError(err)
	}
	products, err := s.productRepo.ListLikedByUser(ctx, userID, req.PageSize, req.Offset())
	if err != nil {
		return Page[*models.Product]{}, models.NewInternalError(err)
	}
	return NewPage(products, total, req), nil
}

// ListLikedArticles returns the articles the user has liked.
func (s *UserService) ListLikedArticles(ctx context.Context, userID uint, req PageRequest) (Page[*models.Article], error) {
	req = req.Normalize()
	total, err := s.articleRepo.CountLikedByUser(ctx, userID)
	if err != nil {
		return Page[*models.Article]{}, models.NewInternalError(err)
	}
	articles, err := s.articleRepo.ListLikedByUser(ctx, userID, req.PageSize, req.Offset())
	if err != nil {
		return Page[*models.Article]{}, models.NewInternalError(err)
	}
	return NewPage(articles, total, req), nil
}
