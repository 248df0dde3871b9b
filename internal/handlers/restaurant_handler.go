package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/DineRate/internal/middleware"
	"github.com/arzan03/DineRate/internal/models"
	"github.com/arzan03/DineRate/internal/services"
)

// RestaurantCatalog is the restaurant surface used by RestaurantHandler.
type RestaurantCatalog interface {
	CreateRestaurant(ctx context.Context, in services.CreateRestaurantInput) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]services.RestaurantView, error)
	GetRestaurantReviews(ctx context.Context, restaurantID string) (*services.RestaurantReviewsView, error)
	AddReview(ctx context.Context, restaurantID, userID string, stars int, comment string) (*services.RestaurantView, error)
	UploadRestaurantPhoto(ctx context.Context, restaurantID string, up services.Upload) (string, error)
}

type RestaurantHandler struct {
	restaurants RestaurantCatalog
	logger      *slog.Logger
}

func NewRestaurantHandler(restaurants RestaurantCatalog, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, logger: logger}
}

type createRestaurantRequest struct {
	RestaurantName string `json:"restaurantName" validate:"required"`
	CuisineType    string `json:"cuisineType" validate:"required"`
	Description    string `json:"description" validate:"required"`
	Address        string `json:"address" validate:"required"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	PhotoURL       string `json:"photoUrl" validate:"required"`
}

type addReviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

// Create handles POST /api/restaurants.
func (h *RestaurantHandler) Create(c *fiber.Ctx) error {
	var req createRestaurantRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	r, err := h.restaurants.CreateRestaurant(c.UserContext(), services.CreateRestaurantInput(req))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// List handles GET /api/restaurants.
func (h *RestaurantHandler) List(c *fiber.Ctx) error {
	list, err := h.restaurants.ListRestaurants(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(list)
}

// Reviews handles GET /api/restaurants/:restaurantId/reviews.
func (h *RestaurantHandler) Reviews(c *fiber.Ctx) error {
	view, err := h.restaurants.GetRestaurantReviews(c.UserContext(), c.Params("restaurantId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(view)
}

// AddReview handles POST /api/restaurants/:restaurantId/reviews.
func (h *RestaurantHandler) AddReview(c *fiber.Ctx) error {
	var req addReviewRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	view, err := h.restaurants.AddReview(c.UserContext(), c.Params("restaurantId"), middleware.UserID(c), req.Rating, req.Comment)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// UploadPhoto handles POST /api/restaurants/:restaurantId/photo.
func (h *RestaurantHandler) UploadPhoto(c *fiber.Ctx) error {
	up, closeFn, err := formUpload(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer closeFn()

	url, err := h.restaurants.UploadRestaurantPhoto(c.UserContext(), c.Params("restaurantId"), up)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"photoUrl": url})
}
