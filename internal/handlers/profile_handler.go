package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/middleware"
	"github.com/arzan03/DineRate/internal/models"
	"github.com/arzan03/DineRate/internal/services"
)

// ProfileEditor is the profile surface used by ProfileHandler.
type ProfileEditor interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
	UploadProfilePicture(ctx context.Context, userID string, up services.Upload) (string, error)
}

type ProfileHandler struct {
	profiles ProfileEditor
	logger   *slog.Logger
}

func NewProfileHandler(profiles ProfileEditor, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// updateProfileRequest mirrors the profile document. Absent fields are
// left untouched.
type updateProfileRequest struct {
	Username    *string `json:"username"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Location    *string `json:"location"`
	PhoneNumber *string `json:"phoneNumber"`
	SocialLinks *struct {
		Twitter   *string `json:"twitter"`
		Instagram *string `json:"instagram"`
		Facebook  *string `json:"facebook"`
	} `json:"socialLinks"`
	Preferences *struct {
		EmailNotifications *bool `json:"emailNotifications"`
		DarkMode           *bool `json:"darkMode"`
	} `json:"preferences"`
}

func (r updateProfileRequest) toUpdate() models.ProfileUpdate {
	upd := models.ProfileUpdate{
		Username:    r.Username,
		Bio:         r.Bio,
		Location:    r.Location,
		PhoneNumber: r.PhoneNumber,
	}
	if r.SocialLinks != nil {
		upd.Twitter = r.SocialLinks.Twitter
		upd.Instagram = r.SocialLinks.Instagram
		upd.Facebook = r.SocialLinks.Facebook
	}
	if r.Preferences != nil {
		upd.EmailNotifications = r.Preferences.EmailNotifications
		upd.DarkMode = r.Preferences.DarkMode
	}
	return upd
}

// GetProfile handles GET /api/users/profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.profiles.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles POST /api/users/profile.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	user, err := h.profiles.UpdateProfile(c.UserContext(), middleware.UserID(c), req.toUpdate())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

// UploadPicture handles POST /api/users/profile/picture.
func (h *ProfileHandler) UploadPicture(c *fiber.Ctx) error {
	up, closeFn, err := formUpload(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer closeFn()

	url, err := h.profiles.UploadProfilePicture(c.UserContext(), middleware.UserID(c), up)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"profilePicture": url})
}

// formUpload opens the multipart "file" field.
func formUpload(c *fiber.Ctx) (services.Upload, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return services.Upload{}, nil, apperrors.InvalidInput("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, nil, apperrors.Internal(err)
	}
	return services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
