package handlers

import "github.com/gofiber/fiber/v2"

// Routes bundles the handlers mounted under /api.
type Routes struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Restaurants *RestaurantHandler
	RequireAuth fiber.Handler
}

// Mount registers the user and restaurant routes on router.
func (r Routes) Mount(router fiber.Router) {
	users := router.Group("/users")
	users.Post("/signup", r.Auth.Signup)
	users.Post("/signin", r.Auth.Signin)
	users.Post("/forgot-password", r.Auth.ForgotPassword)
	users.Post("/reset-password", r.Auth.ResetPassword)
	users.Get("/profile", r.RequireAuth, r.Profile.GetProfile)
	users.Post("/profile", r.RequireAuth, r.Profile.UpdateProfile)
	users.Post("/profile/picture", r.RequireAuth, r.Profile.UploadPicture)

	restaurants := router.Group("/restaurants")
	restaurants.Get("/", r.Restaurants.List)
	restaurants.Post("/", r.RequireAuth, r.Restaurants.Create)
	restaurants.Get("/:restaurantId/reviews", r.Restaurants.Reviews)
	restaurants.Post("/:restaurantId/reviews", r.RequireAuth, r.Restaurants.AddReview)
	restaurants.Post("/:restaurantId/photo", r.RequireAuth, r.Restaurants.UploadPhoto)
}
