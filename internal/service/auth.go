// Package service implements Inkwell's application logic on top of the
// store. Services validate requests, enforce the access rules, and return
// coded domain errors for handlers to translate.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// AuthService handles registration, login, and session resolution.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials and client information.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"` // Extracted from request by handler
	UserAgent string `json:"-"` // Extracted from request by handler
}

// LoginResult contains the authenticated user and the session token the
// handler turns into a cookie.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new user account.
//
// The duplicate-username check, the user count, and the insert are three
// separate store calls. Two concurrent registrations of the same username
// (or two concurrent first registrations) can both pass their checks; that
// window is a known limitation carried over from the storage model.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	// Validate request
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	// Exact-match existence check, usernames are case-sensitive
	_, err := s.store.GetUserByUsername(ctx, req.Username)
	if err == nil {
		return nil, domainerrors.DuplicateUsername("username already taken")
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	// First account ever registered becomes the admin
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		IsAdmin:      count == 0,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered",
			"user_id", userID,
			"username", user.Username,
			"is_admin", user.IsAdmin,
		)
	}

	return user, nil
}

// Login authenticates a user and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	// Validate request
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Don't leak whether the username exists
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         sessionID,
		UserID:     user.ID,
		ExpiresAt:  now.Add(s.tokenService.SessionDuration()),
		CreatedAt:  now,
		LastSeenAt: now,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokenService.GenerateSessionToken(session.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in",
			"user_id", user.ID,
			"session_id", session.ID,
		)
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes a session. Revoking an already-gone session succeeds.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LogoutToken revokes the session a token points at. A token that no
// longer verifies is treated as already logged out.
func (s *AuthService) LogoutToken(ctx context.Context, token string) error {
	claims, err := s.tokenService.VerifySessionToken(token)
	if err != nil {
		return nil
	}
	return s.Logout(ctx, claims.SessionID)
}

// ResolveSession verifies a session token and returns the identity of the
// user it belongs to. Used by the authentication middleware. Any failure
// (bad token, missing or expired session, deleted user) means the request
// is unauthenticated.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.tokenService.VerifySessionToken(token)
	if err != nil {
		return domain.Identity{}, domainerrors.Unauthenticated("invalid session token").WithCause(err)
	}

	session, err := s.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return domain.Identity{}, domainerrors.Unauthenticated("session is no longer valid")
		}
		return domain.Identity{}, fmt.Errorf("get session: %w", err)
	}

	// The token must match the session it points at
	if session.UserID != claims.UserID {
		return domain.Identity{}, domainerrors.Unauthenticated("session is no longer valid")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.Identity{}, domainerrors.Unauthenticated("account no longer exists")
		}
		return domain.Identity{}, fmt.Errorf("get user: %w", err)
	}

	// Best-effort last seen tracking
	session.Touch()
	if err := s.store.UpdateSession(ctx, session); err != nil && s.logger != nil {
		s.logger.Warn("Failed to update session last seen",
			"session_id", session.ID,
			"error", err,
		)
	}

	return domain.IdentityOf(user), nil
}

// GetUser returns the full user record for an identity.
func (s *AuthService) GetUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.Unauthenticated("account no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// formatValidationError converts validator errors to user-friendly domain errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return first validation error as a domain error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return domainerrors.Validationf("%s is required", field)
			case "min":
				return domainerrors.Validationf("%s must be at least %s characters", field, e.Param())
			case "max":
				return domainerrors.Validationf("%s exceeds maximum length of %s characters", field, e.Param())
			default:
				return domainerrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}
