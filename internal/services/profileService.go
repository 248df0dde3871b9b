package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
	"github.com/arzan03/DineRate/internal/storage"
)

const maxBioLength = 500

// ProfileService reads and edits the signed-in user's profile.
type ProfileService struct {
	users  UserStore
	media  MediaStore
	logger *slog.Logger
	now    func() time.Time
}

func NewProfileService(users UserStore, media MediaStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, media: media, logger: logger, now: time.Now}
}

// GetProfile returns the user. Password and reset fields are never
// serialized.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseObjectID("user", userID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// UpdateProfile applies a partial update and returns the stored result.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	id, err := parseObjectID("user", userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		if trimmed == "" {
			return nil, apperrors.InvalidInput("username cannot be empty")
		}
		upd.Username = &trimmed
	}
	if upd.Bio != nil && utf8.RuneCountInString(*upd.Bio) > maxBioLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("bio must be at most %d characters", maxBioLength))
	}

	user, err := s.users.UpdateProfile(ctx, id, upd, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))
	return user, nil
}

// UploadProfilePicture stores the image and points the profile at it.
func (s *ProfileService) UploadProfilePicture(ctx context.Context, userID string, up Upload) (string, error) {
	id, err := parseObjectID("user", userID)
	if err != nil {
		return "", err
	}
	if err := checkImage(up); err != nil {
		return "", err
	}

	key := storage.ObjectKey("profiles", id.Hex(), up.Filename)
	url, err := s.media.Upload(ctx, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload profile picture: %w", err)
	}
	if err := s.users.SetProfilePicture(ctx, id, url, s.now().UTC()); err != nil {
		discardUpload(ctx, s.media, s.logger, key)
		return "", err
	}
	return url, nil
}

// discardUpload removes an object whose owning document could not be
// updated. Failures are only logged.
func discardUpload(ctx context.Context, media MediaStore, logger *slog.Logger, key string) {
	if err := media.Remove(ctx, key); err != nil {
		logger.WarnContext(ctx, "failed to remove orphaned upload",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func checkImage(up Upload) error {
	if up.Size <= 0 {
		return apperrors.InvalidInput("file is empty")
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return apperrors.InvalidInput("file must be an image")
	}
	return nil
}
