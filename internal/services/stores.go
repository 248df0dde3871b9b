package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
)

// UserStore is the identity collaborator. Implemented by db.UserStore.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)

	// SetResetCredential replaces the user's reset credential in a single
	// update. NotFound if the user does not exist.
	SetResetCredential(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error

	// ConsumeResetCredential swaps in passwordHash and clears the reset
	// credential in a single update, conditional on the stored hash still
	// being tokenHash and unexpired at now. InvalidToken otherwise.
	ConsumeResetCredential(ctx context.Context, id primitive.ObjectID, tokenHash string, now time.Time, passwordHash string) error

	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate, now time.Time) (*models.User, error)
	SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string, now time.Time) error
}

// RestaurantStore is the review/restaurant collaborator. Implemented by
// db.RestaurantStore.
type RestaurantStore interface {
	Create(ctx context.Context, r *models.Restaurant) error
	List(ctx context.Context) ([]models.Restaurant, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error)
	AppendReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Restaurant, error)
	SetAverageRating(ctx context.Context, id primitive.ObjectID, reviewCount int, average float64) (bool, error)
	SetPhotoURL(ctx context.Context, id primitive.ObjectID, url string) error
}

// MediaStore uploads images. Implemented by storage.MediaStore.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func parseObjectID(kind, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidInput(fmt.Sprintf("invalid %s id %q", kind, hex))
	}
	return id, nil
}
