package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *db_models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*db_models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*db_models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *db_models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, page, pageSize int) ([]db_models.User, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.User), args.Error(1)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	req := request_models.SignUpRequest{
		Username: "shopper",
		Email:    "shopper@example.com",
		Password: "hunter2hunter2",
	}

	t.Run("creates a customer account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := services.NewUserService(userRepo)

		userRepo.On("FindByEmail", ctx, req.Email).Return(nil, nil)
		userRepo.On("FindByUsername", ctx, req.Username).Return(nil, nil)
		userRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *db_models.User) bool {
			return u.Role == db_models.RoleCustomer &&
				u.PasswordHash != req.Password && u.PasswordHash != ""
		})).Return(nil)

		user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "shopper", user.Username)
		assert.Equal(t, "customer", user.Role)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := services.NewUserService(userRepo)

		userRepo.On("FindByEmail", ctx, req.Email).Return(&db_models.User{Email: req.Email}, nil)

		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	newUser := func() *db_models.User {
		hash, _ := utils.HashPassword("correct-horse")
		u := &db_models.User{
			Username:     "shopper",
			Email:        "shopper@example.com",
			PasswordHash: hash,
			Role:         db_models.RoleCustomer,
			IsActive:     true,
		}
		u.ID = uuid.New()
		return u
	}

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := services.NewUserService(userRepo)
		user := newUser()

		userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

		res, err := svc.Login(ctx, request_models.LoginRequest{
			Email:    user.Email,
			Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, user.Email, res.User.Email)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := services.NewUserService(userRepo)
		user := newUser()

		userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

		_, err := svc.Login(ctx, request_models.LoginRequest{
			Email:    user.Email,
			Password: "wrong",
		})
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	})

	t.Run("rejects a deactivated account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := services.NewUserService(userRepo)
		user := newUser()
		user.IsActive = false

		userRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

		_, err := svc.Login(ctx, request_models.LoginRequest{
			Email:    user.Email,
			Password: "correct-horse",
		})
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	})
}
