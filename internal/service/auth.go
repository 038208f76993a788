package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/auth"
	"github.com/sakif/creatorverse/internal/metrics"
	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
	"github.com/sakif/creatorverse/internal/session"
)

const (
	msgInvalidUser  = "Invalid username or password"
	msgInvalidAdmin = "Invalid admin credentials"
)

// RegisterInput is the signup form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthService registers accounts and checks credentials for both roles.
//
// DEPENDENCIES:
//   - users, admins  → the credential store, one table per role
//   - passwords      → bcrypt hashing
//   - sessions       → the session store Logout clears
type AuthService struct {
	users     repository.UserRepository
	admins    repository.AdminRepository
	passwords *auth.PasswordService
	sessions  session.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// dummyHash is compared against when a username is unknown, so a miss
	// costs the same bcrypt work as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	passwords *auth.PasswordService,
	sessions session.Store,
	logger *slog.Logger,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		users:     users,
		admins:    admins,
		passwords: passwords,
		sessions:  sessions,
		logger:    logger,
		metrics:   m,
	}
}

// Register creates a creator account. It does not log the new user in.
//
// Checks run in this order, and the first failure is returned:
//  1. password and confirmation match
//  2. password is at least MinPasswordLength characters and at most
//     auth.MaxPasswordBytes bytes
//  3. username is free
//  4. email is free
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username, err := required("username", in.Username, "Username is required")
	if err != nil {
		return nil, err
	}
	email, err := required("email", in.Email, "Email is required")
	if err != nil {
		return nil, err
	}
	if err := checkNewPassword(in.Password, in.ConfirmPassword); err != nil {
		s.metrics.ObserveRegistration(resultFailure)
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.metrics.ObserveRegistration(resultFailure)
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.metrics.ObserveRegistration(resultSuccess)
	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks credentials against the table for role and returns the
// principal to store in the session. A user account cannot log in as an
// admin or the other way round, even with the same username and password.
//
// Every failure is the same generic ErrUnauthorized error for the role.
func (s *AuthService) Login(ctx context.Context, username, password string, role session.Role) (session.Principal, error) {
	// Register and CreateAdmin store usernames trimmed.
	username = strings.TrimSpace(username)

	var (
		p   session.Principal
		err error
	)
	switch role {
	case session.RoleUser:
		p, err = s.loginUser(ctx, username, password)
	case session.RoleAdmin:
		p, err = s.loginAdmin(ctx, username, password)
	default:
		return session.Anonymous(), apperror.ValidationFailed("role", "role must be user or admin")
	}

	if err != nil {
		s.metrics.ObserveLogin(string(role), resultFailure)
		if errors.Is(err, apperror.ErrUnauthorized) {
			s.logger.Info("login rejected",
				slog.String("role", string(role)),
				slog.String("username", username),
			)
		}
		return session.Anonymous(), err
	}

	s.metrics.ObserveLogin(string(role), resultSuccess)
	s.logger.Info("login succeeded",
		slog.String("role", string(role)),
		slog.String("id", p.ID),
	)
	return p, nil
}

func (s *AuthService) loginUser(ctx context.Context, username, password string) (session.Principal, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.burnDummyCompare(password)
			return session.Principal{}, apperror.Unauthorized(msgInvalidUser)
		}
		return session.Principal{}, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.checkPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return session.Principal{}, apperror.Unauthorized(msgInvalidUser)
		}
		return session.Principal{}, err
	}
	return session.NewUser(user.ID, user.Username), nil
}

func (s *AuthService) loginAdmin(ctx context.Context, username, password string) (session.Principal, error) {
	admin, err := s.admins.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.burnDummyCompare(password)
			return session.Principal{}, apperror.Unauthorized(msgInvalidAdmin)
		}
		return session.Principal{}, fmt.Errorf("service/auth: looking up admin: %w", err)
	}

	if err := s.checkPassword(admin.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return session.Principal{}, apperror.Unauthorized(msgInvalidAdmin)
		}
		return session.Principal{}, err
	}
	return session.NewAdmin(admin.ID, admin.Username), nil
}

func (s *AuthService) checkPassword(hash, password string) error {
	err := s.passwords.Verify(hash, password)
	if err != nil && !errors.Is(err, auth.ErrPasswordMismatch) {
		return fmt.Errorf("service/auth: verifying password: %w", err)
	}
	return err
}

func (s *AuthService) burnDummyCompare(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.passwords.Hash("creatorverse-dummy-password")
		if err != nil {
			s.logger.Error("building dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_ = s.passwords.Verify(s.dummyHash, password)
	}
}

// Logout removes the session slot for handle. An empty or unknown handle is
// not an error, so calling Logout twice is harmless.
func (s *AuthService) Logout(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, handle); err != nil {
		return fmt.Errorf("service/auth: deleting session: %w", err)
	}
	s.logger.Debug("session cleared", slog.String("handle", handle))
	return nil
}

// CreateAdmin adds an operator account.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "Username is required")
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing admin password: %w", err)
	}

	admin := &model.Admin{Username: username, PasswordHash: hash}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating admin %q: %w", username, err)
	}

	s.logger.Info("admin created", slog.String("username", username))
	return admin, nil
}

// EnsureDefaultAdmin creates the given admin account when no admin exists
// yet. It reports whether an account was created.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.admins.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("service/auth: counting admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.CreateAdmin(ctx, username, password); err != nil {
		return false, err
	}
	s.logger.Warn("created default admin account; change its password",
		slog.String("username", username),
	)
	return true, nil
}
