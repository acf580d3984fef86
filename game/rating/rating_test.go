package rating

import "testing"

func TestCompute(t *testing.T) {
	t.Run("equal ratings, decisive", func(t *testing.T) {
		result := Compute(1200, 1200, OutcomeAWins)
		if result.NewA != 1216 {
			t.Errorf("Expected winner rating 1216, got %d", result.NewA)
		}
		if result.NewB != 1184 {
			t.Errorf("Expected loser rating 1184, got %d", result.NewB)
		}
		if result.DeltaA+result.DeltaB != 0 {
			t.Errorf("Expected deltas to cancel for equal ratings, got %d and %d", result.DeltaA, result.DeltaB)
		}
	})

	t.Run("equal ratings, draw", func(t *testing.T) {
		result := Compute(1500, 1500, OutcomeDraw)
		if result.DeltaA != 0 || result.DeltaB != 0 {
			t.Errorf("Expected no change on draw between equals, got %d and %d", result.DeltaA, result.DeltaB)
		}
	})

	t.Run("underdog wins", func(t *testing.T) {
		// A at 1400 loses to B at 1300: expectedB = 1/(1+10^(100/400)) ~= 0.36,
		// so B gains round(K*(1-0.36)) = 20.
		result := Compute(1400, 1300, OutcomeBWins)
		if result.DeltaB != 20 {
			t.Errorf("Expected underdog to gain 20, got %d", result.DeltaB)
		}
		if result.DeltaA != -20 {
			t.Errorf("Expected favorite to lose 20, got %d", result.DeltaA)
		}
		if result.NewB != 1320 || result.NewA != 1380 {
			t.Errorf("Expected 1320/1380, got %d/%d", result.NewB, result.NewA)
		}
	})

	t.Run("underdog draw still gains", func(t *testing.T) {
		result := Compute(1000, 1400, OutcomeDraw)
		if result.DeltaA <= 0 {
			t.Errorf("Expected underdog to gain on a draw, got %d", result.DeltaA)
		}
		if result.DeltaB >= 0 {
			t.Errorf("Expected favorite to lose on a draw, got %d", result.DeltaB)
		}
	})

	t.Run("ratings are not clamped", func(t *testing.T) {
		result := Compute(5, 5, OutcomeBWins)
		if result.NewA != -11 {
			t.Errorf("Expected loser rating to go negative, got %d", result.NewA)
		}
	})
}
