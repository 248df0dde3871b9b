package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
)

// UserStore persists users in a MongoDB collection.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(database *mongo.Database) *UserStore {
	return &UserStore{coll: database.Collection(UsersCollection)}
}

// Create inserts a new user. A unique-index violation is reported as
// AlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("User already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID returns the user with the given id.
func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

// FindByEmail returns the user registered under email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, email)
}

// ExistsByEmailOrUsername reports whether either value is already taken.
func (s *UserStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// Usernames resolves user ids to usernames. Unknown ids are omitted.
func (s *UserStore) Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find usernames: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode usernames: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r.Username
	}
	return out, nil
}

// SetResetCredential stores a reset token hash and expiry for the user,
// replacing any credential already there.
func (s *UserStore) SetResetCredential(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"resetPasswordToken":   tokenHash,
			"resetPasswordExpires": expiresAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("store reset credential: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user", id.Hex())
	}
	return nil
}

// ConsumeResetCredential sets the new password hash and clears the reset
// credential in one update, provided the stored credential still equals
// tokenHash and has not expired at now. If another request replaced or
// consumed the credential first, nothing is written and InvalidToken is
// returned.
func (s *UserStore) ConsumeResetCredential(ctx context.Context, id primitive.ObjectID, tokenHash string, now time.Time, passwordHash string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{
			"_id":                  id,
			"resetPasswordToken":   tokenHash,
			"resetPasswordExpires": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{
				"password":    passwordHash,
				"lastUpdated": now,
			},
			"$unset": bson.M{
				"resetPasswordToken":   "",
				"resetPasswordExpires": "",
			},
		},
	)
	if err != nil {
		return fmt.Errorf("consume reset credential: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.InvalidToken("Invalid or expired password reset token")
	}
	return nil
}

// UpdateProfile applies the non-nil fields of upd and returns the updated user.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate, now time.Time) (*models.User, error) {
	set := bson.M{"lastUpdated": now}
	setIf := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setIf("username", upd.Username)
	setIf("bio", upd.Bio)
	setIf("location", upd.Location)
	setIf("phoneNumber", upd.PhoneNumber)
	setIf("socialLinks.twitter", upd.Twitter)
	setIf("socialLinks.instagram", upd.Instagram)
	setIf("socialLinks.facebook", upd.Facebook)
	if upd.EmailNotifications != nil {
		set["preferences.emailNotifications"] = *upd.EmailNotifications
	}
	if upd.DarkMode != nil {
		set["preferences.darkMode"] = *upd.DarkMode
	}

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, apperrors.NotFound("user", id.Hex())
	case mongo.IsDuplicateKeyError(err):
		return nil, apperrors.AlreadyExists("Username already taken")
	case err != nil:
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

// SetProfilePicture records the URL of the user's uploaded picture.
func (s *UserStore) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string, now time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"profilePicture": url, "lastUpdated": now}},
	)
	if err != nil {
		return fmt.Errorf("set profile picture: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user", id.Hex())
	}
	return nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
