package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/metrics"
	"github.com/arzan03/DineRate/internal/models"
	"github.com/arzan03/DineRate/internal/rating"
	"github.com/arzan03/DineRate/internal/storage"
	"github.com/arzan03/DineRate/internal/utils"
)

// RestaurantService serves restaurant listings and review submission.
type RestaurantService struct {
	restaurants RestaurantStore
	users       UserStore
	media       MediaStore
	workers     int
	logger      *slog.Logger
	now         func() time.Time
}

func NewRestaurantService(restaurants RestaurantStore, users UserStore, media MediaStore, workers int, logger *slog.Logger) *RestaurantService {
	return &RestaurantService{
		restaurants: restaurants,
		users:       users,
		media:       media,
		workers:     workers,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateRestaurantInput holds the fields of a new restaurant. All are required.
type CreateRestaurantInput struct {
	RestaurantName string
	CuisineType    string
	Description    string
	Address        string
	PhoneNumber    string
	PhotoURL       string
}

// RestaurantInfo is a restaurant without its reviews.
type RestaurantInfo struct {
	ID             primitive.ObjectID `json:"_id"`
	RestaurantName string             `json:"restaurantName"`
	CuisineType    string             `json:"cuisineType"`
	Description    string             `json:"description"`
	Address        string             `json:"address"`
	PhoneNumber    string             `json:"phoneNumber"`
	PhotoURL       string             `json:"photoUrl"`
	AverageRating  float64            `json:"averageRating"`
}

// PopulatedReview shows the reviewer as an embedded object.
type PopulatedReview struct {
	ID        primitive.ObjectID `json:"_id"`
	User      models.Reviewer    `json:"user"`
	Rating    int                `json:"rating"`
	Comment   string             `json:"comment"`
	CreatedAt time.Time          `json:"createdAt"`
}

// FlatReview shows the reviewer id and username side by side.
type FlatReview struct {
	ID        primitive.ObjectID `json:"_id"`
	User      primitive.ObjectID `json:"user"`
	Username  string             `json:"username"`
	Rating    int                `json:"rating"`
	Comment   string             `json:"comment"`
	CreatedAt time.Time          `json:"createdAt"`
}

// RestaurantView is a restaurant as returned by the listing and by review
// submission.
type RestaurantView struct {
	RestaurantInfo
	Reviews     []PopulatedReview `json:"reviews"`
	RatingStats rating.Summary    `json:"ratingStats"`
}

// RestaurantReviewsView is a restaurant as returned by the reviews endpoint.
type RestaurantReviewsView struct {
	RestaurantInfo
	Reviews     []FlatReview   `json:"reviews"`
	RatingStats rating.Summary `json:"ratingStats"`
}

// CreateRestaurant stores a new restaurant with no reviews.
func (s *RestaurantService) CreateRestaurant(ctx context.Context, in CreateRestaurantInput) (*models.Restaurant, error) {
	required := []struct{ name, value string }{
		{"restaurantName", in.RestaurantName},
		{"cuisineType", in.CuisineType},
		{"description", in.Description},
		{"address", in.Address},
		{"phoneNumber", in.PhoneNumber},
		{"photoUrl", in.PhotoURL},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperrors.InvalidInput(f.name + " is required")
		}
	}

	r := &models.Restaurant{
		ID:             primitive.NewObjectID(),
		RestaurantName: in.RestaurantName,
		CuisineType:    in.CuisineType,
		Description:    in.Description,
		Address:        in.Address,
		PhoneNumber:    in.PhoneNumber,
		PhotoURL:       in.PhotoURL,
		Reviews:        []models.Review{},
	}
	if err := s.restaurants.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "restaurant created",
		slog.String("restaurant_id", r.ID.Hex()),
		slog.String("name", r.RestaurantName),
	)
	return r, nil
}

// ListRestaurants returns every restaurant with reviewer names and a
// freshly computed rating summary.
func (s *RestaurantService) ListRestaurants(ctx context.Context) ([]RestaurantView, error) {
	list, err := s.restaurants.List(ctx)
	if err != nil {
		return nil, err
	}

	names, err := s.usernames(ctx, list...)
	if err != nil {
		return nil, err
	}

	return utils.MapParallel(ctx, list, s.workers, func(_ context.Context, r models.Restaurant) (RestaurantView, error) {
		return populatedView(&r, names)
	})
}

// GetRestaurantReviews returns one restaurant with flattened reviews.
func (s *RestaurantService) GetRestaurantReviews(ctx context.Context, restaurantID string) (*RestaurantReviewsView, error) {
	id, err := parseObjectID("restaurant", restaurantID)
	if err != nil {
		return nil, err
	}

	r, err := s.restaurants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := rating.Summarize(r.Reviews)
	if err != nil {
		return nil, err
	}

	names, err := s.usernames(ctx, *r)
	if err != nil {
		return nil, err
	}

	reviews := make([]FlatReview, len(r.Reviews))
	for i, rv := range r.Reviews {
		reviews[i] = FlatReview{
			ID:        rv.ID,
			User:      rv.User,
			Username:  names[rv.User],
			Rating:    rv.Rating,
			Comment:   rv.Comment,
			CreatedAt: rv.CreatedAt,
		}
	}

	return &RestaurantReviewsView{
		RestaurantInfo: infoOf(r),
		Reviews:        reviews,
		RatingStats:    summary,
	}, nil
}

// AddReview appends a review, refreshes the cached average and returns
// the restaurant with a recomputed summary.
func (s *RestaurantService) AddReview(ctx context.Context, restaurantID, userID string, stars int, comment string) (*RestaurantView, error) {
	id, err := parseObjectID("restaurant", restaurantID)
	if err != nil {
		return nil, err
	}
	uid, err := parseObjectID("user", userID)
	if err != nil {
		return nil, err
	}
	if stars < rating.MinStars || stars > rating.MaxStars {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", rating.MinStars, rating.MaxStars))
	}
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}

	r, err := s.restaurants.AppendReview(ctx, id, models.Review{
		ID:        primitive.NewObjectID(),
		User:      uid,
		Rating:    stars,
		Comment:   comment,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	metrics.ReviewCreated()

	summary, err := rating.Summarize(r.Reviews)
	if err != nil {
		return nil, err
	}

	updated, err := s.restaurants.SetAverageRating(ctx, id, len(r.Reviews), summary.AverageRating)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.logger.DebugContext(ctx, "average rating superseded by a newer review",
			slog.String("restaurant_id", id.Hex()),
		)
	}
	r.AverageRating = summary.AverageRating

	names, err := s.usernames(ctx, *r)
	if err != nil {
		return nil, err
	}
	view, err := populatedView(r, names)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("restaurant_id", id.Hex()),
		slog.String("user_id", uid.Hex()),
		slog.Int("rating", stars),
	)
	return &view, nil
}

// UploadRestaurantPhoto stores the image and points the restaurant at it.
func (s *RestaurantService) UploadRestaurantPhoto(ctx context.Context, restaurantID string, up Upload) (string, error) {
	id, err := parseObjectID("restaurant", restaurantID)
	if err != nil {
		return "", err
	}
	if err := checkImage(up); err != nil {
		return "", err
	}
	if _, err := s.restaurants.FindByID(ctx, id); err != nil {
		return "", err
	}

	key := storage.ObjectKey("restaurants", id.Hex(), up.Filename)
	url, err := s.media.Upload(ctx, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload restaurant photo: %w", err)
	}
	if err := s.restaurants.SetPhotoURL(ctx, id, url); err != nil {
		discardUpload(ctx, s.media, s.logger, key)
		return "", err
	}
	return url, nil
}

func (s *RestaurantService) usernames(ctx context.Context, list ...models.Restaurant) (map[primitive.ObjectID]string, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, r := range list {
		for _, rv := range r.Reviews {
			if _, ok := seen[rv.User]; !ok {
				seen[rv.User] = struct{}{}
				ids = append(ids, rv.User)
			}
		}
	}
	return s.users.Usernames(ctx, ids)
}

func populatedView(r *models.Restaurant, names map[primitive.ObjectID]string) (RestaurantView, error) {
	summary, err := rating.Summarize(r.Reviews)
	if err != nil {
		return RestaurantView{}, err
	}

	reviews := make([]PopulatedReview, len(r.Reviews))
	for i, rv := range r.Reviews {
		reviews[i] = PopulatedReview{
			ID:        rv.ID,
			User:      models.Reviewer{ID: rv.User, Username: names[rv.User]},
			Rating:    rv.Rating,
			Comment:   rv.Comment,
			CreatedAt: rv.CreatedAt,
		}
	}

	return RestaurantView{
		RestaurantInfo: infoOf(r),
		Reviews:        reviews,
		RatingStats:    summary,
	}, nil
}

func infoOf(r *models.Restaurant) RestaurantInfo {
	return RestaurantInfo{
		ID:             r.ID,
		RestaurantName: r.RestaurantName,
		CuisineType:    r.CuisineType,
		Description:    r.Description,
		Address:        r.Address,
		PhoneNumber:    r.PhoneNumber,
		PhotoURL:       r.PhotoURL,
		AverageRating:  r.AverageRating,
	}
}
