package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newProfileFixture(t *testing.T) (*ProfileService, *memUserStore, *mockMediaStore, primitive.ObjectID) {
	t.Helper()
	users := newMemUserStore()
	media := new(mockMediaStore)
	u := &models.User{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "$2a$04$hash",
		Preferences: models.Preferences{EmailNotifications: true},
	}
	require.NoError(t, users.Create(context.Background(), u))
	return NewProfileService(users, media, newTestLogger()), users, media, u.ID
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	svc, _, _, id := newProfileFixture(t)

	user, err := svc.UpdateProfile(context.Background(), id.Hex(), models.ProfileUpdate{
		Bio:      strPtr("Pho hunter"),
		Twitter:  strPtr("@alice"),
		DarkMode: boolPtr(true),
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Pho hunter", user.Bio)
	assert.Equal(t, "@alice", user.SocialLinks.Twitter)
	assert.True(t, user.Preferences.DarkMode)
	assert.True(t, user.Preferences.EmailNotifications)
	assert.False(t, user.LastUpdated.IsZero())
}

func TestUpdateProfile_BioTooLong(t *testing.T) {
	svc, _, _, id := newProfileFixture(t)

	_, err := svc.UpdateProfile(context.Background(), id.Hex(), models.ProfileUpdate{
		Bio: strPtr(strings.Repeat("é", 501)),
	})

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	svc, users, _, id := newProfileFixture(t)
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "bob", Email: "bob@example.com"}))

	_, err := svc.UpdateProfile(context.Background(), id.Hex(), models.ProfileUpdate{Username: strPtr("bob")})

	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestUpdateProfile_EmptyUsername(t *testing.T) {
	svc, _, _, id := newProfileFixture(t)

	_, err := svc.UpdateProfile(context.Background(), id.Hex(), models.ProfileUpdate{Username: strPtr("  ")})

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _, _ := newProfileFixture(t)

	_, err := svc.GetProfile(context.Background(), primitive.NewObjectID().Hex())

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUploadProfilePicture(t *testing.T) {
	svc, users, media, id := newProfileFixture(t)
	body := strings.NewReader("png")
	media.On("Upload", mock.Anything, "profiles/"+id.Hex()+"_me.png", body, int64(3), "image/png").
		Return("http://minio/restaurant-media/profiles/me.png", nil)

	url, err := svc.UploadProfilePicture(context.Background(), id.Hex(), Upload{
		Filename: "me.png", ContentType: "image/png", Size: 3, Body: body,
	})

	require.NoError(t, err)
	assert.Equal(t, url, users.get(id).ProfilePicture)
	media.AssertExpectations(t)
}

func TestUploadProfilePicture_RemovesOrphanWhenUserMissing(t *testing.T) {
	svc, _, media, _ := newProfileFixture(t)
	ghost := primitive.NewObjectID().Hex()
	key := "profiles/" + ghost + "_me.png"
	media.On("Upload", mock.Anything, key, mock.Anything, int64(3), "image/png").
		Return("http://minio/restaurant-media/"+key, nil)
	media.On("Remove", mock.Anything, key).Return(nil)

	_, err := svc.UploadProfilePicture(context.Background(), ghost, Upload{
		Filename: "me.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png"),
	})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	media.AssertExpectations(t)
}
