package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleamart/internal/models"
	"fleamart/internal/observability"
	"fleamart/internal/repository"
	"fleamart/internal/token"
	"fleamart/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService implements registration, credential login, token refresh and
// social sign-in.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *token.Service
}

type RegisterInput struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

type LoginInput struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// GoogleProfile is the subset of the Google userinfo response we consume.
type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthResult bundles the authenticated user with a fresh token pair.
type AuthResult struct {
	User   *models.User
	Tokens *token.Pair
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Service) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Register creates a local-credential account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hashed := string(hash)
	email := strings.ToLower(in.Email)
	// Local accounts use the email as their provider identity so the
	// (provider, provider_id) index stays meaningful across providers.
	providerID := email
	user := &models.User{
		Email:      email,
		Nickname:   in.Nickname,
		Password:   &hashed,
		Provider:   models.ProviderLocal,
		ProviderID: &providerID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			observability.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return nil, models.NewConflictError("Email or nickname is already in use")
		}
		return nil, models.NewInternalError(err)
	}

	observability.AuthAttempts.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Login authenticates by nickname and password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if in.Nickname == "" || in.Password == "" {
		return nil, models.NewValidationError("Nickname and password are required")
	}

	user, err := s.userRepo.GetByNickname(ctx, in.Nickname)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.AuthAttempts.WithLabelValues("local", "failure").Inc()
			return nil, models.NewUnauthenticatedError("Invalid nickname or password")
		}
		return nil, models.NewInternalError(err)
	}

	// Social accounts carry no password hash and cannot log in locally.
	if user.Password == nil {
		observability.AuthAttempts.WithLabelValues("local", "failure").Inc()
		return nil, models.NewUnauthenticatedError("Invalid nickname or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(in.Password)); err != nil {
		observability.AuthAttempts.WithLabelValues("local", "failure").Inc()
		return nil, models.NewUnauthenticatedError("Invalid nickname or password")
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.AuthAttempts.WithLabelValues("local", "success").Inc()
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, models.NewUnauthenticatedError("Refresh token required")
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, models.NewUnauthenticatedError("Invalid or expired refresh token")
	}

	// The account may have been deleted since the token was issued.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthenticatedError("Invalid or expired refresh token")
		}
		return nil, models.NewInternalError(err)
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// LoginWithGoogle finds or creates the account bound to a Google identity
// and issues a token pair.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*AuthResult, error) {
	// The provider not supplying an identity or email is an authentication
	// failure, not a client input problem.
	if profile.Sub == "" {
		return nil, models.NewUnauthenticatedError("Google profile is missing a subject")
	}
	if profile.Email == "" {
		return nil, models.NewUnauthenticatedError("Google account has no email address")
	}

	user, err := s.userRepo.GetByProvider(ctx, models.ProviderGoogle, profile.Sub)
	switch {
	case err == nil:
		// existing account
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.createGoogleUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, models.NewInternalError(err)
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.AuthAttempts.WithLabelValues("google", "success").Inc()
	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	providerID := profile.Sub
	user := &models.User{
		Email:      strings.ToLower(profile.Email),
		Provider:   models.ProviderGoogle,
		ProviderID: &providerID,
		Image:      profile.Picture,
	}

	// Derive a nickname from the email local part and retry with numeric
	// suffixes until one is free.
	base := nicknameBase(profile.Email, profile.Name)
	for attempt := 0; attempt < 10; attempt++ {
		user.Nickname = base
		if attempt > 0 {
			user.Nickname = fmt.Sprintf("%s%d", base, attempt)
		}
		err := s.userRepo.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, models.NewInternalError(err)
		}
		// A duplicate email means the address is already registered locally.
		if _, emailErr := s.userRepo.GetByEmail(ctx, user.Email); emailErr == nil {
			return nil, models.NewConflictError("Email is already registered with another sign-in method")
		}
	}
	return nil, models.NewConflictError("Could not allocate a free nickname")
}

func nicknameBase(email, name string) string {
	local := email
	if i := strings.Index(email, "@"); i > 0 {
		local = email[:i]
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return -1
		}
	}, local)
	if len(cleaned) < 2 {
		cleaned = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return -1
			}
		}, name)
	}
	if len(cleaned) < 2 {
		cleaned = "member"
	}
	if len(cleaned) > 24 {
		cleaned = cleaned[:24]
	}
	cleaned = strings.Trim(cleaned, "_-")
	if len(cleaned) < 2 {
		cleaned = "member"
	}
	return cleaned
}
