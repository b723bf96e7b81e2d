// Package scoring holds the pure point arithmetic: the logistic base score,
// the streak multiplier and the difficulty display normalization. All rounding
// is round-half-away-from-zero (math.Round) so results are reproducible across
// the whole pipeline.
package scoring

import "math"

// BaseScore is a logistic curve centered at rating == difficulty, which is
// worth exactly 250. Harder problems approach 500, easier ones approach 0.
func BaseScore(rating, difficulty int) int {
	exponent := float64(rating-difficulty) / 400.0
	return int(math.Round(500.0 / (1.0 + math.Exp(exponent))))
}

// StreakMultiplier grows 5% per consecutive day, capped at 1.35 from day 7 on.
func StreakMultiplier(streak int) float64 {
	if streak > 7 {
		streak = 7
	}
	return 1.0 + float64(streak)*0.05
}

// FinalScore applies the streak multiplier to a base score.
func FinalScore(base int, mult float64) int {
	return int(math.Round(float64(base) * mult))
}

// DisplayDifficulty maps a raw difficulty estimate to the display value.
// Estimates below 400 (including negative ones) are compressed exponentially
// into (0, 400); everything else rounds as-is.
func DisplayDifficulty(raw float64) int {
	if raw < 400 {
		return int(math.Round(400.0 / math.Exp(1.0-raw/400.0)))
	}
	return int(math.Round(raw))
}

// ColorKey classifies a rating or display difficulty into the standard
// 400-point color bands.
func ColorKey(value int) string {
	switch {
	case value <= 0:
		return "gray"
	case value < 400:
		return "gray"
	case value < 800:
		return "brown"
	case value < 1200:
		return "green"
	case value < 1600:
		return "cyan"
	case value < 2000:
		return "blue"
	case value < 2400:
		return "yellow"
	case value < 2800:
		return "orange"
	default:
		return "red"
	}
}
