package service

import (
	"context"
	"testing"
	"time"

	"blocknote-be/internal/config"
	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (IAuthService, *mockUnitOfWork, *memory.SessionRepository) {
	uow := newMockUnitOfWork()
	sessions := memory.NewSessionRepository(time.Hour)
	svc := NewAuthService(&mockFactory{uow: uow}, sessions, config.AuthConfig{
		JwtSecret:          "test-secret",
		AccessTokenTTLMin:  60,
		RefreshTokenTTLHrs: 24,
	}, noopLogger{})
	return svc, uow, sessions
}

func TestAuthRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, uow, _ := newAuthFixture()

	uow.users.On("FindOne", mock.Anything, mock.Anything).Return(&entity.User{Id: uuid.New()}, nil)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "taken@example.com", FullName: "Tester", Password: "password1",
	})

	assert.ErrorIs(t, err, ErrValidation)
	uow.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthRegisterHashesPassword(t *testing.T) {
	svc, uow, _ := newAuthFixture()

	var created *entity.User
	uow.users.On("FindOne", mock.Anything, mock.Anything).Return(nil, nil)
	uow.users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entity.User)
	}).Return(nil)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "new@example.com", FullName: "Tester", Password: "password1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.NotNil(t, created.PasswordHash)
	assert.NotEqual(t, "password1", *created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte("password1")))
}

func TestAuthLoginIssuesTokenAndSession(t *testing.T) {
	svc, uow, sessions := newAuthFixture()
	userId := uuid.New()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	hashStr := string(hash)
	uow.users.On("FindOne", mock.Anything, mock.Anything).Return(&entity.User{
		Id: userId, Email: "login@example.com", PasswordHash: &hashStr,
	}, nil)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "login@example.com", Password: "password1",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// The access token carries the user id under the expected claim.
	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, userId.String(), claims["user_id"])

	// The refresh token is a live server-side session.
	session, found := sessions.Get(resp.RefreshToken)
	assert.True(t, found)
	assert.Equal(t, userId, session.UserID)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, uow, _ := newAuthFixture()

	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)
	hashStr := string(hash)
	uow.users.On("FindOne", mock.Anything, mock.Anything).Return(&entity.User{
		Id: uuid.New(), Email: "login@example.com", PasswordHash: &hashStr,
	}, nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "login@example.com", Password: "wrongpassword",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	svc, uow, sessions := newAuthFixture()
	userId := uuid.New()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	hashStr := string(hash)
	uow.users.On("FindOne", mock.Anything, mock.Anything).Return(&entity.User{
		Id: userId, Email: "logout@example.com", PasswordHash: &hashStr,
	}, nil)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "logout@example.com", Password: "password1",
	})
	assert.NoError(t, err)

	err = svc.Logout(context.Background(), &dto.LogoutRequest{RefreshToken: resp.RefreshToken})
	assert.NoError(t, err)

	_, found := sessions.Get(resp.RefreshToken)
	assert.False(t, found)
}
