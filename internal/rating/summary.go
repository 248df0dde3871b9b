package rating

import (
	"fmt"

	"github.com/arzan03/DineRate/internal/apperrors"
	"github.com/arzan03/DineRate/internal/models"
)

const (
	MinStars = 1
	MaxStars = 5
)

// Summary is the derived view of a restaurant's reviews. It is never stored.
type Summary struct {
	AverageRating      float64     `json:"averageRating"`
	TotalReviews       int         `json:"totalReviews"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

// Summarize computes the mean rating, count and per-star histogram of
// reviews. Any rating outside [MinStars, MaxStars] aborts the computation.
func Summarize(reviews []models.Review) (Summary, error) {
	dist := make(map[int]int, MaxStars)
	for stars := MinStars; stars <= MaxStars; stars++ {
		dist[stars] = 0
	}

	total := 0
	for i, r := range reviews {
		if r.Rating < MinStars || r.Rating > MaxStars {
			return Summary{}, apperrors.DataIntegrity(
				fmt.Sprintf("review %d (%s) has rating %d outside [%d,%d]", i, r.ID.Hex(), r.Rating, MinStars, MaxStars))
		}
		dist[r.Rating]++
		total += r.Rating
	}

	return Summary{
		AverageRating:      Average(total, len(reviews)),
		TotalReviews:       len(reviews),
		RatingDistribution: dist,
	}, nil
}

// Average returns sum/count rounded half away from zero to one decimal,
// or 0 when count is 0. The rounding is done on integer tenths so values
// like 2.25 round up instead of falling victim to binary representation.
func Average(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	// floor((20*sum + count) / (2*count)) == round(10*sum/count) for sum >= 0.
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}
