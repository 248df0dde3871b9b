package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
)

// memUserStore mirrors the conditional-update semantics of db.UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return apperrors.AlreadyExists("User already exists")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id.Hex())
	}
	return &u, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (s *memUserStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Usernames(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]string)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

func (s *memUserStore) SetResetCredential(_ context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.NotFound("user", id.Hex())
	}
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = &expiresAt
	s.users[id] = u
	return nil
}

func (s *memUserStore) ConsumeResetCredential(_ context.Context, id primitive.ObjectID, tokenHash string, now time.Time, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.ResetTokenHash != tokenHash || u.ResetExpiresAt == nil || !u.ResetExpiresAt.After(now) {
		return apperrors.InvalidToken("Invalid or expired password reset token")
	}
	u.Password = passwordHash
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
	u.LastUpdated = now
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, upd models.ProfileUpdate, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id.Hex())
	}
	if upd.Username != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Username == *upd.Username {
				return nil, apperrors.AlreadyExists("Username already taken")
			}
		}
		u.Username = *upd.Username
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&u.Bio, upd.Bio)
	apply(&u.Location, upd.Location)
	apply(&u.PhoneNumber, upd.PhoneNumber)
	apply(&u.SocialLinks.Twitter, upd.Twitter)
	apply(&u.SocialLinks.Instagram, upd.Instagram)
	apply(&u.SocialLinks.Facebook, upd.Facebook)
	if upd.EmailNotifications != nil {
		u.Preferences.EmailNotifications = *upd.EmailNotifications
	}
	if upd.DarkMode != nil {
		u.Preferences.DarkMode = *upd.DarkMode
	}
	u.LastUpdated = now
	s.users[id] = u
	return &u, nil
}

func (s *memUserStore) SetProfilePicture(_ context.Context, id primitive.ObjectID, url string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.NotFound("user", id.Hex())
	}
	u.ProfilePicture = url
	u.LastUpdated = now
	s.users[id] = u
	return nil
}

func (s *memUserStore) get(id primitive.ObjectID) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// memRestaurantStore mirrors db.RestaurantStore.
type memRestaurantStore struct {
	mu          sync.Mutex
	restaurants map[primitive.ObjectID]models.Restaurant
	order       []primitive.ObjectID
}

func newMemRestaurantStore() *memRestaurantStore {
	return &memRestaurantStore{restaurants: make(map[primitive.ObjectID]models.Restaurant)}
}

func (s *memRestaurantStore) Create(_ context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.restaurants[r.ID] = cloneRestaurant(*r)
	s.order = append(s.order, r.ID)
	return nil
}

func (s *memRestaurantStore) List(_ context.Context) ([]models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Restaurant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRestaurant(s.restaurants[id]))
	}
	return out, nil
}

func (s *memRestaurantStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant", id.Hex())
	}
	r = cloneRestaurant(r)
	return &r, nil
}

func (s *memRestaurantStore) AppendReview(_ context.Context, id primitive.ObjectID, review models.Review) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant", id.Hex())
	}
	r.Reviews = append(r.Reviews, review)
	s.restaurants[id] = r
	out := cloneRestaurant(r)
	return &out, nil
}

func (s *memRestaurantStore) SetAverageRating(_ context.Context, id primitive.ObjectID, reviewCount int, average float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok || len(r.Reviews) != reviewCount {
		return false, nil
	}
	r.AverageRating = average
	s.restaurants[id] = r
	return true, nil
}

func (s *memRestaurantStore) SetPhotoURL(_ context.Context, id primitive.ObjectID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return apperrors.NotFound("restaurant", id.Hex())
	}
	r.PhotoURL = url
	s.restaurants[id] = r
	return nil
}

func (s *memRestaurantStore) get(id primitive.ObjectID) models.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRestaurant(s.restaurants[id])
}

func cloneRestaurant(r models.Restaurant) models.Restaurant {
	r.Reviews = append([]models.Review{}, r.Reviews...)
	return r
}

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockMediaStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
