package service

import (
	"context"
	"testing"

	"fleamart/internal/models"
	"fleamart/internal/repository"
	"fleamart/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	repository.UserRepository
	createFn        func(ctx context.Context, user *models.User) error
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByNicknameFn func(ctx context.Context, nickname string) (*models.User, error)
	getByProviderFn func(ctx context.Context, provider, providerID string) (*models.User, error)
	updateFn        func(ctx context.Context, user *models.User) error
	deleteFn        func(ctx context.Context, id uint) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubUserRepo) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return s.getByNicknameFn(ctx, nickname)
}

func (s *stubUserRepo) GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	return s.getByProviderFn(ctx, provider, providerID)
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func (s *stubUserRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func newTestTokens() *token.Service {
	return token.NewService("test-access-secret-1234567890ab", "test-refresh-secret-1234567890a")
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, newTestTokens())
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"Bad email", RegisterInput{Email: "nope", Nickname: "alice", Password: "Sup3rsecret"}},
		{"Bad nickname", RegisterInput{Email: "a@b.co", Nickname: "!", Password: "Sup3rsecret"}},
		{"Weak password", RegisterInput{Email: "a@b.co", Nickname: "alice", Password: "short"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assertAppErrorCode(t, err, models.CodeValidation)
		})
	}
}

func TestRegisterHashesPasswordAndLowercasesEmail(t *testing.T) {
	var created *models.User
	repo := &stubUserRepo{
		createFn: func(ctx context.Context, user *models.User) error {
			created = user
			user.ID = 1
			return nil
		},
	}
	svc := NewAuthService(repo, newTestTokens())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.COM",
		Nickname: "alice",
		Password: "Sup3rsecret",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.ProviderLocal, user.Provider)
	require.NotNil(t, user.Password)
	assert.NotEqual(t, "Sup3rsecret", *user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte("Sup3rsecret")))
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	repo := &stubUserRepo{
		createFn: func(ctx context.Context, user *models.User) error {
			return repository.ErrDuplicateKey
		},
	}
	svc := NewAuthService(repo, newTestTokens())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@b.co",
		Nickname: "alice",
		Password: "Sup3rsecret",
	})
	assertAppErrorCode(t, err, models.CodeConflict)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)

	localUser := &models.User{ID: 5, Nickname: "alice", Password: &hashed, Provider: models.ProviderLocal}
	socialUser := &models.User{ID: 6, Nickname: "googler", Password: nil, Provider: models.ProviderGoogle}

	repo := &stubUserRepo{
		getByNicknameFn: func(ctx context.Context, nickname string) (*models.User, error) {
			switch nickname {
			case "alice":
				return localUser, nil
			case "googler":
				return socialUser, nil
			default:
				return nil, gorm.ErrRecordNotFound
			}
		},
	}
	tokens := newTestTokens()
	svc := NewAuthService(repo, tokens)
	ctx := context.Background()

	t.Run("Success issues token pair", func(t *testing.T) {
		result, err := svc.Login(ctx, LoginInput{Nickname: "alice", Password: "Sup3rsecret"})
		require.NoError(t, err)
		assert.Equal(t, uint(5), result.User.ID)

		uid, err := tokens.VerifyAccess(result.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(5), uid)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Nickname: "alice", Password: "wrong"})
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("Unknown nickname", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Nickname: "nobody", Password: "Sup3rsecret"})
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("Social account has no local login", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Nickname: "googler", Password: "anything"})
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("Missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestRefresh(t *testing.T) {
	tokens := newTestTokens()
	user := &models.User{ID: 9, Nickname: "alice"}
	repo := &stubUserRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			if id == 9 {
				return user, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewAuthService(repo, tokens)
	ctx := context.Background()

	t.Run("Valid refresh issues new pair", func(t *testing.T) {
		pair, err := tokens.GeneratePair(9)
		require.NoError(t, err)

		result, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(9), result.User.ID)
		assert.NotEmpty(t, result.Tokens.AccessToken)
	})

	t.Run("Access token is not a refresh token", func(t *testing.T) {
		pair, err := tokens.GeneratePair(9)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, pair.AccessToken)
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("Deleted account", func(t *testing.T) {
		pair, err := tokens.GeneratePair(404)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})

	t.Run("Empty token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "")
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})
}

func TestLoginWithGoogle(t *testing.T) {
	ctx := context.Background()

	t.Run("Existing provider identity", func(t *testing.T) {
		existing := &models.User{ID: 3, Nickname: "googler", Provider: models.ProviderGoogle}
		repo := &stubUserRepo{
			getByProviderFn: func(ctx context.Context, provider, providerID string) (*models.User, error) {
				assert.Equal(t, models.ProviderGoogle, provider)
				assert.Equal(t, "sub-1", providerID)
				return existing, nil
			},
		}
		svc := NewAuthService(repo, newTestTokens())

		result, err := svc.LoginWithGoogle(ctx, GoogleProfile{Sub: "sub-1", Email: "g@example.com"})
		require.NoError(t, err)
		assert.Equal(t, uint(3), result.User.ID)
	})

	t.Run("Creates account on first sign-in", func(t *testing.T) {
		var created *models.User
		repo := &stubUserRepo{
			getByProviderFn: func(ctx context.Context, provider, providerID string) (*models.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
			createFn: func(ctx context.Context, user *models.User) error {
				created = user
				user.ID = 11
				return nil
			},
		}
		svc := NewAuthService(repo, newTestTokens())

		result, err := svc.LoginWithGoogle(ctx, GoogleProfile{
			Sub:     "sub-2",
			Email:   "New.Person@Example.com",
			Name:    "New Person",
			Picture: "https://img.example/p.png",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "new.person@example.com", created.Email)
		assert.Equal(t, models.ProviderGoogle, created.Provider)
		require.NotNil(t, created.ProviderID)
		assert.Equal(t, "sub-2", *created.ProviderID)
		assert.Nil(t, created.Password)
		assert.NotEmpty(t, created.Nickname)
		assert.Equal(t, uint(11), result.User.ID)
	})

	t.Run("Nickname collision retries with suffix", func(t *testing.T) {
		attempts := 0
		repo := &stubUserRepo{
			getByProviderFn: func(ctx context.Context, provider, providerID string) (*models.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
			createFn: func(ctx context.Context, user *models.User) error {
				attempts++
				if attempts == 1 {
					return repository.ErrDuplicateKey
				}
				user.ID = 12
				return nil
			},
			getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewAuthService(repo, newTestTokens())

		result, err := svc.LoginWithGoogle(ctx, GoogleProfile{Sub: "sub-3", Email: "taken@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, uint(12), result.User.ID)
	})

	t.Run("Email registered with another method", func(t *testing.T) {
		repo := &stubUserRepo{
			getByProviderFn: func(ctx context.Context, provider, providerID string) (*models.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
			createFn: func(ctx context.Context, user *models.User) error {
				return repository.ErrDuplicateKey
			},
			getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
				return &models.User{ID: 1, Email: email, Provider: models.ProviderLocal}, nil
			},
		}
		svc := NewAuthService(repo, newTestTokens())

		_, err := svc.LoginWithGoogle(ctx, GoogleProfile{Sub: "sub-4", Email: "taken@example.com"})
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("Missing email", func(t *testing.T) {
		svc := NewAuthService(&stubUserRepo{}, newTestTokens())
		_, err := svc.LoginWithGoogle(ctx, GoogleProfile{Sub: "sub-5"})
		assertAppErrorCode(t, err, models.CodeUnauthenticated)
	})
}
