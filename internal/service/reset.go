package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/auth"
	"github.com/sakif/creatorverse/internal/metrics"
	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
)

// ResetTokenTTL is how long a reset link stays usable.
const ResetTokenTTL = time.Hour

const (
	msgInvalidToken = "Invalid or expired reset token."
	msgExpiredToken = "Reset token has expired."

	stageIssue    = "issue"
	stageValidate = "validate"
	stageConsume  = "consume"
)

// ResetIssue is a freshly issued reset link. Token is the only copy of the
// plaintext; the store keeps its digest.
type ResetIssue struct {
	Token     string
	URL       string
	ExpiresAt time.Time
}

// PasswordResetService runs the reset-token lifecycle:
//
//	no token ──IssueReset──▶ pending ──ConsumeReset──▶ no token
//
// A pending token past its expiry is rejected but left in place; issuing a
// new one overwrites it.
type PasswordResetService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	baseURL   string
	now       func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// ResetOption configures a PasswordResetService.
type ResetOption func(*PasswordResetService)

// WithClock replaces time.Now, so tests can move past the expiry.
func WithClock(now func() time.Time) ResetOption {
	return func(s *PasswordResetService) {
		s.now = now
	}
}

// NewPasswordResetService creates the service. baseURL is the public origin
// reset links point at, e.g. "https://creatorverse.example".
func NewPasswordResetService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	baseURL string,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...ResetOption,
) *PasswordResetService {
	s := &PasswordResetService{
		users:     users,
		passwords: passwords,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueReset creates a token for the account registered under email and
// returns the link. An unknown email is reported as ErrNotFound.
func (s *PasswordResetService) IssueReset(ctx context.Context, email string) (*ResetIssue, error) {
	email, err := required("email", email, "Email is required")
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.ObservePasswordReset(stageIssue, resultFailure)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/reset: looking up email: %w", err)
	}

	token, digest, err := auth.NewResetToken()
	if err != nil {
		return nil, fmt.Errorf("service/reset: %w", err)
	}
	expiresAt := s.now().Add(ResetTokenTTL).UTC()

	if err := s.users.SetResetToken(ctx, user.ID, digest, expiresAt); err != nil {
		return nil, fmt.Errorf("service/reset: storing token for user %s: %w", user.ID, err)
	}

	s.metrics.ObservePasswordReset(stageIssue, resultSuccess)
	s.logger.Info("password reset issued",
		slog.String("userID", user.ID),
		slog.Time("expiresAt", expiresAt),
	)

	return &ResetIssue{
		Token:     token,
		URL:       s.baseURL + "/reset-password/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken returns the account a pending, unexpired token belongs to.
// Expiry is checked on every call.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	user, err := s.validate(ctx, token)
	if err != nil {
		s.metrics.ObservePasswordReset(stageValidate, resultFailure)
		return nil, err
	}
	s.metrics.ObservePasswordReset(stageValidate, resultSuccess)
	return user, nil
}

func (s *PasswordResetService) validate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.InvalidOrExpired(msgInvalidToken)
	}

	user, err := s.users.GetUserByResetToken(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidOrExpired(msgInvalidToken)
		}
		return nil, fmt.Errorf("service/reset: looking up token: %w", err)
	}

	if !user.HasPendingReset() {
		return nil, apperror.InvalidOrExpired(msgInvalidToken)
	}
	if user.ResetTokenExpiry.Before(s.now()) {
		return nil, apperror.InvalidOrExpired(msgExpiredToken)
	}
	return user, nil
}

// ConsumeReset sets a new password and retires the token. The token is
// checked first, then the new password. The final write is conditional on
// the token still being pending and unexpired, so of two concurrent calls
// with the same token only one succeeds.
func (s *PasswordResetService) ConsumeReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	err := s.consume(ctx, token, newPassword, confirmPassword)
	if err != nil {
		s.metrics.ObservePasswordReset(stageConsume, resultFailure)
		return err
	}
	s.metrics.ObservePasswordReset(stageConsume, resultSuccess)
	return nil
}

func (s *PasswordResetService) consume(ctx context.Context, token, newPassword, confirmPassword string) error {
	user, err := s.validate(ctx, token)
	if err != nil {
		return err
	}

	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)
	if newPassword == "" || confirmPassword == "" {
		return apperror.ValidationFailed("password", "Please fill in all fields.")
	}
	if err := checkNewPassword(newPassword, confirmPassword); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/reset: hashing password: %w", err)
	}

	if err := s.users.ConsumeResetToken(ctx, auth.HashResetToken(token), hash, s.now()); err != nil {
		if errors.Is(err, apperror.ErrInvalidOrExpired) {
			return err
		}
		return fmt.Errorf("service/reset: consuming token: %w", err)
	}

	s.logger.Info("password reset completed", slog.String("userID", user.ID))
	return nil
}
