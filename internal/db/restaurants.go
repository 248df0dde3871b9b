package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
)

// RestaurantStore persists restaurants and their embedded reviews.
type RestaurantStore struct {
	coll *mongo.Collection
}

func NewRestaurantStore(database *mongo.Database) *RestaurantStore {
	return &RestaurantStore{coll: database.Collection(RestaurantsCollection)}
}

func (s *RestaurantStore) Create(ctx context.Context, r *models.Restaurant) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Reviews == nil {
		r.Reviews = []models.Review{}
	}
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

func (s *RestaurantStore) List(ctx context.Context) ([]models.Restaurant, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	restaurants := []models.Restaurant{}
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, fmt.Errorf("decode restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *RestaurantStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("restaurant", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant: %w", err)
	}
	return &r, nil
}

// AppendReview pushes review onto the restaurant and returns the document
// as it is after the push.
func (s *RestaurantStore) AppendReview(ctx context.Context, id primitive.ObjectID, review models.Review) (*models.Restaurant, error) {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}

	var r models.Restaurant
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"reviews": review}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("restaurant", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("append review: %w", err)
	}
	return &r, nil
}

// SetAverageRating writes the cached average computed from reviewCount
// reviews. The write only lands while the restaurant still holds exactly
// that many reviews, so a slower writer cannot overwrite the average of a
// newer review list. It reports whether the cache was updated.
func (s *RestaurantStore) SetAverageRating(ctx context.Context, id primitive.ObjectID, reviewCount int, average float64) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "reviews": bson.M{"$size": reviewCount}},
		bson.M{"$set": bson.M{"averageRating": average}},
	)
	if err != nil {
		return false, fmt.Errorf("set average rating: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *RestaurantStore) SetPhotoURL(ctx context.Context, id primitive.ObjectID, url string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"photoUrl": url}},
	)
	if err != nil {
		return fmt.Errorf("set photo url: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("restaurant", id.Hex())
	}
	return nil
}
