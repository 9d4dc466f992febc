package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/motopark/api/internal/auth"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/metrics"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/repository"
	"github.com/stwalsh4118/motopark/api/internal/validation"
)

// Service-level errors
var (
	ErrInvalidCredentials = apierrors.New(apierrors.KindUnauthorized, "Invalid email or password")
	ErrAccountDisabled    = apierrors.New(apierrors.KindForbidden, "Account is disabled")
	ErrUserNotFound       = apierrors.New(apierrors.KindNotFound, "User not found")
	ErrUserExists         = errors.New("user already exists")
)

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(id, email string, isAnonymous, isAdmin bool) (string, error)
}

// AuthResult is a user with a freshly issued token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService defines account and login operations.
type AuthService interface {
	// Register creates a password account. A taken email fails with the
	// store's unique violation.
	Register(ctx context.Context, email, password string) (*AuthResult, error)

	// Login checks credentials. Unknown email and wrong password are
	// indistinguishable; a disabled account is reported before the
	// password is checked.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// LoginAnonymous creates a password-less account with a synthesized
	// email.
	LoginAnonymous(ctx context.Context) (*AuthResult, error)

	// Me returns the user by id or ErrUserNotFound.
	Me(ctx context.Context, userID string) (*models.User, error)

	// CreateAdmin creates an active admin account. It returns
	// ErrUserExists when the email is taken.
	CreateAdmin(ctx context.Context, email, password string) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	log    *logger.Logger
	now    func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, log *logger.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AnonymousEmail synthesizes the placeholder email for an anonymous account.
func AnonymousEmail(t time.Time) string {
	return fmt.Sprintf("anonymous_%d@%s", t.UnixNano(), models.AnonymousEmailDomain)
}

func (s *authService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, models.NewUser{Email: email, PasswordHash: &hash})
	if err != nil {
		metrics.AuthEvents.WithLabelValues("register", metrics.OutcomeFailure).Inc()
		return nil, err
	}

	s.log.Info("User registered", map[string]interface{}{"user_id": user.ID})
	metrics.AuthEvents.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		metrics.AuthEvents.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.Warn("Login attempt on disabled account", map[string]interface{}{"user_id": user.ID})
		metrics.AuthEvents.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		return nil, ErrAccountDisabled
	}

	if err := auth.ComparePassword(*user.PasswordHash, password); err != nil {
		metrics.AuthEvents.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	metrics.AuthEvents.WithLabelValues("login", metrics.OutcomeSuccess).Inc()
	return s.issue(user)
}

func (s *authService) LoginAnonymous(ctx context.Context) (*AuthResult, error) {
	user, err := s.users.Create(ctx, models.NewUser{
		Email:       AnonymousEmail(s.now()),
		IsAnonymous: true,
	})
	if err != nil {
		metrics.AuthEvents.WithLabelValues("anonymous", metrics.OutcomeFailure).Inc()
		return nil, err
	}

	s.log.Debug("Anonymous user created", map[string]interface{}{"user_id": user.ID})
	metrics.AuthEvents.WithLabelValues("anonymous", metrics.OutcomeSuccess).Inc()
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validation.CheckPassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, models.NewUser{Email: email, PasswordHash: &hash, IsAdmin: true})
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin user created", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.IsAnonymous, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
