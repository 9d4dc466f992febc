package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/motopark/api/internal/auth"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/validation"
)

func newTestAuthService() (*authService, *MockUserRepository, *MockTokenIssuer) {
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	svc := NewAuthService(users, tokens, logger.Nop()).(*authService)
	return svc, users, tokens
}

func hashed(t *testing.T, password string) *string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &hash
}

func requireKind(t *testing.T, err error, kind apierrors.Kind) {
	t.Helper()
	var appErr *apierrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
}

func TestRegister_Success(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()

	created := &models.User{ID: "u1", Email: "rider@example.com", IsActive: true}
	users.On("Create", ctx, mock.MatchedBy(func(u models.NewUser) bool {
		return u.Email == "rider@example.com" &&
			u.PasswordHash != nil &&
			auth.ComparePassword(*u.PasswordHash, "Secret123") == nil &&
			!u.IsAnonymous && !u.IsAdmin
	})).Return(created, nil)
	tokens.On("Issue", "u1", "rider@example.com", false, false).Return("signed", nil)

	result, err := svc.Register(ctx, "  Rider@Example.com ", "Secret123")

	require.NoError(t, err)
	assert.Equal(t, created, result.User)
	assert.Equal(t, "signed", result.Token)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()

	users.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23505"})

	result, err := svc.Register(ctx, "rider@example.com", "Secret123")

	assert.Nil(t, result)
	assert.Equal(t, apierrors.KindConflict, apierrors.Classify(err).Kind)
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, users, tokens := newTestAuthService()
		user := &models.User{ID: "u1", Email: "rider@example.com", PasswordHash: hashed(t, "Secret123"), IsActive: true}
		users.On("FindByEmail", ctx, "rider@example.com").Return(user, nil)
		tokens.On("Issue", "u1", "rider@example.com", false, false).Return("signed", nil)

		result, err := svc.Login(ctx, "RIDER@example.com", "Secret123")

		require.NoError(t, err)
		assert.Equal(t, "signed", result.Token)
		assert.Equal(t, "u1", result.User.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

		_, err := svc.Login(ctx, "ghost@example.com", "Secret123")

		requireKind(t, err, apierrors.KindUnauthorized)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		user := &models.User{ID: "u1", Email: "rider@example.com", PasswordHash: hashed(t, "Secret123"), IsActive: true}
		users.On("FindByEmail", ctx, "rider@example.com").Return(user, nil)

		_, err := svc.Login(ctx, "rider@example.com", "Wrong1234")

		requireKind(t, err, apierrors.KindUnauthorized)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("anonymous account has no password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		user := &models.User{ID: "u2", Email: AnonymousEmail(time.Now()), IsAnonymous: true, IsActive: true}
		users.On("FindByEmail", ctx, user.Email).Return(user, nil)

		_, err := svc.Login(ctx, user.Email, "anything")

		requireKind(t, err, apierrors.KindUnauthorized)
	})

	t.Run("disabled account checked before password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		user := &models.User{ID: "u1", Email: "rider@example.com", PasswordHash: hashed(t, "Secret123"), IsActive: false}
		users.On("FindByEmail", ctx, "rider@example.com").Return(user, nil)

		_, err := svc.Login(ctx, "rider@example.com", "Wrong1234")

		requireKind(t, err, apierrors.KindForbidden)
		assert.Equal(t, "Account is disabled", err.Error())
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByEmail", ctx, "rider@example.com").Return(nil, errors.New("connection reset"))

		_, err := svc.Login(ctx, "rider@example.com", "Secret123")

		require.Error(t, err)
		assert.Equal(t, apierrors.KindInternal, apierrors.Classify(err).Kind)
	})
}

func TestLoginAnonymous(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()
	fixed := time.Unix(1700000000, 123)
	svc.now = func() time.Time { return fixed }

	wantEmail := "anonymous_1700000000000000123@motorbike-parking.app"
	created := &models.User{ID: "anon", Email: wantEmail, IsAnonymous: true, IsActive: true}
	users.On("Create", ctx, models.NewUser{Email: wantEmail, IsAnonymous: true}).Return(created, nil)
	tokens.On("Issue", "anon", wantEmail, true, false).Return("anon-token", nil)

	result, err := svc.LoginAnonymous(ctx)

	require.NoError(t, err)
	assert.True(t, result.User.IsAnonymous)
	assert.Nil(t, result.User.PasswordHash)
	assert.Equal(t, "anon-token", result.Token)
	users.AssertExpectations(t)
}

func TestAnonymousEmail(t *testing.T) {
	email := AnonymousEmail(time.Now())
	assert.True(t, strings.HasPrefix(email, "anonymous_"))
	assert.True(t, strings.HasSuffix(email, "@"+models.AnonymousEmailDomain))
}

func TestMe(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByID", ctx, "u1").Return(&models.User{ID: "u1"}, nil)

		user, err := svc.Me(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("deleted user", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByID", ctx, "u1").Return(nil, nil)

		_, err := svc.Me(ctx, "u1")

		requireKind(t, err, apierrors.KindNotFound)
		assert.Equal(t, "User not found", err.Error())
	})
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByEmail", ctx, "admin@example.com").Return(nil, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u models.NewUser) bool {
			return u.IsAdmin && u.PasswordHash != nil && u.Email == "admin@example.com"
		})).Return(&models.User{ID: "a1", Email: "admin@example.com", IsAdmin: true}, nil)

		user, err := svc.CreateAdmin(ctx, "Admin@Example.com", "Secret123")

		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		users.AssertExpectations(t)
	})

	t.Run("existing email", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByEmail", ctx, "admin@example.com").Return(&models.User{ID: "a1"}, nil)

		_, err := svc.CreateAdmin(ctx, "admin@example.com", "Secret123")

		assert.ErrorIs(t, err, ErrUserExists)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()

		_, err := svc.CreateAdmin(ctx, "admin@example.com", "password")

		assert.ErrorIs(t, err, validation.ErrPasswordWeak)
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}
