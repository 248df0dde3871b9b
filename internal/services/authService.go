package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/auth"
	"github.com/arzan03/DineRate/internal/metrics"
	"github.com/arzan03/DineRate/internal/models"
)

// AuthService handles signup, signin and the password-reset lifecycle.
type AuthService struct {
	users  UserStore
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source of the service and its token manager.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	s.tokens.WithClock(now)
	return s
}

// SignupInput holds the fields of a new account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Session is a signed-in user and their session token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, in SignupInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.InvalidInput("username, email and password are required")
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("User already exists")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		ID:          primitive.NewObjectID(),
		Username:    in.Username,
		Email:       in.Email,
		Password:    hashed,
		Preferences: models.Preferences{EmailNotifications: true},
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateSession(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID.Hex()),
		slog.String("username", user.Username),
	)
	return &Session{User: user, Token: token}, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.InvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("find user for login: %w", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.GenerateSession(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID.Hex()))
	return &Session{User: user, Token: token}, nil
}

// ForgotPassword starts a reset for the account registered under email
// and returns the plaintext reset token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		metrics.PasswordReset("request", apperrors.Code(err))
		return "", err
	}
	return s.RequestPasswordReset(ctx, user.ID.Hex())
}

// RequestPasswordReset issues a reset token for the user and stores its
// hash with an expiry, superseding any earlier token. The plaintext token
// is returned and never stored.
func (s *AuthService) RequestPasswordReset(ctx context.Context, userID string) (token string, err error) {
	defer func() { metrics.PasswordReset("request", outcome(err)) }()

	id, err := parseObjectID("user", userID)
	if err != nil {
		return "", err
	}

	token, expiresAt, err := s.tokens.GenerateReset(id.Hex())
	if err != nil {
		return "", err
	}

	if err := s.users.SetResetCredential(ctx, id, auth.HashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("request password reset: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", id.Hex()),
		slog.Time("expires_at", expiresAt),
	)
	return token, nil
}

// ResetPassword consumes a reset token and replaces the user's password.
// Checks run in order: signature, user, expiry, stored hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	defer func() { metrics.PasswordReset("consume", outcome(err)) }()

	if newPassword == "" {
		return apperrors.InvalidInput("new password is required")
	}

	claims, err := s.tokens.ParseReset(token)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected reset token", slog.String("error", err.Error()))
		return apperrors.InvalidToken("Invalid token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return apperrors.InvalidToken("Invalid token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !user.HasPendingReset() {
		return apperrors.InvalidToken("Invalid or expired password reset token")
	}
	now := s.now().UTC()
	if !now.Before(*user.ResetExpiresAt) {
		return apperrors.TokenExpired("Password reset token has expired")
	}
	if !auth.TokenMatches(token, user.ResetTokenHash) {
		return apperrors.InvalidToken("Invalid or expired password reset token")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.ConsumeResetCredential(ctx, id, user.ResetTokenHash, now, hashed); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", id.Hex()))
	return nil
}

// Authenticate validates a session token and returns its claims.
func (s *AuthService) Authenticate(token string) (*auth.SessionClaims, error) {
	return s.tokens.ValidateSession(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperrors.Code(err)
}
