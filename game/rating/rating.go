// Package rating computes Elo rating adjustments at the end of a game.
package rating

import "math"

// KFactor is the fixed K used for all rating adjustments.
const KFactor = 32

// Outcome identifies which side won a finished game.
type Outcome int

const (
	OutcomeAWins Outcome = iota
	OutcomeBWins
	OutcomeDraw
)

// Result holds the post-game ratings and the signed change for each side.
type Result struct {
	NewA   int `json:"new_a"`
	NewB   int `json:"new_b"`
	DeltaA int `json:"delta_a"`
	DeltaB int `json:"delta_b"`
}

// Compute returns both players' new ratings for the given outcome.
// Ratings are not clamped and may go negative.
func Compute(ratingA, ratingB int, outcome Outcome) Result {
	expectedA := 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
	expectedB := 1 - expectedA

	var actualA, actualB float64
	switch outcome {
	case OutcomeAWins:
		actualA, actualB = 1, 0
	case OutcomeBWins:
		actualA, actualB = 0, 1
	default:
		actualA, actualB = 0.5, 0.5
	}

	newA := int(math.Round(float64(ratingA) + KFactor*(actualA-expectedA)))
	newB := int(math.Round(float64(ratingB) + KFactor*(actualB-expectedB)))

	return Result{
		NewA:   newA,
		NewB:   newB,
		DeltaA: newA - ratingA,
		DeltaB: newB - ratingB,
	}
}
