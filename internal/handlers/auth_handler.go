package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/DineRate/internal/middleware"
	"github.com/arzan03/DineRate/internal/services"
)

// AccountService is the account surface used by AuthHandler.
type AccountService interface {
	Register(ctx context.Context, in services.SignupInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthHandler struct {
	accounts         AccountService
	sessionTTL       time.Duration
	exposeResetToken bool
	logger           *slog.Logger
}

func NewAuthHandler(accounts AccountService, sessionTTL time.Duration, exposeResetToken bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:         accounts,
		sessionTTL:       sessionTTL,
		exposeResetToken: exposeResetToken,
		logger:           logger,
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// Signup handles POST /api/users/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	sess, err := h.accounts.Register(c.UserContext(), services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.setSessionCookie(c, sess.Token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"_id":      sess.User.ID,
		"username": sess.User.Username,
		"email":    sess.User.Email,
	})
}

// Signin handles POST /api/users/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req signinRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	sess, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.setSessionCookie(c, sess.Token)
	return c.JSON(fiber.Map{
		"_id":      sess.User.ID,
		"username": sess.User.Username,
		"email":    sess.User.Email,
		"token":    sess.Token,
	})
}

// ForgotPassword handles POST /api/users/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	token, err := h.accounts.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := fiber.Map{"message": "Password reset token generated successfully"}
	if h.exposeResetToken {
		resp["resetToken"] = token
	}
	return c.JSON(resp)
}

// ResetPassword handles POST /api/users/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.accounts.ResetPassword(c.UserContext(), req.ResetToken, req.NewPassword); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Password has been reset successfully"})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.sessionTTL),
	})
}
