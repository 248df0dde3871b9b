package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is embedded in a Restaurant and never edited after insertion.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Restaurant struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RestaurantName string             `bson:"restaurantName" json:"restaurantName"`
	CuisineType    string             `bson:"cuisineType" json:"cuisineType"`
	Description    string             `bson:"description" json:"description"`
	Address        string             `bson:"address" json:"address"`
	PhoneNumber    string             `bson:"phoneNumber" json:"phoneNumber"`
	PhotoURL       string             `bson:"photoUrl" json:"photoUrl"`
	Reviews        []Review           `bson:"reviews" json:"reviews"`
	// AverageRating caches the rounded mean of Reviews.
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
}

// Reviewer is the public slice of a User shown next to a review.
type Reviewer struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
}
