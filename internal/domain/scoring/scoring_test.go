package scoring

import (
	"math"
	"testing"
)

func TestBaseScoreMidpoint(t *testing.T) {
	for _, rating := range []int{0, 400, 1000, 2800} {
		if got := BaseScore(rating, rating); got != 250 {
			t.Fatalf("BaseScore(%d, %d) = %d, want 250", rating, rating, got)
		}
	}
}

func TestBaseScoreHarderIsHigher(t *testing.T) {
	harder := BaseScore(1000, 1200)
	easier := BaseScore(1000, 800)
	if harder <= 250 {
		t.Fatalf("BaseScore(1000, 1200) = %d, want > 250", harder)
	}
	if easier >= 250 {
		t.Fatalf("BaseScore(1000, 800) = %d, want < 250", easier)
	}
}

func TestBaseScoreSaturates(t *testing.T) {
	if got := BaseScore(0, 4000); got != 500 {
		t.Fatalf("BaseScore(0, 4000) = %d, want 500", got)
	}
	if got := BaseScore(4000, 0); got != 0 {
		t.Fatalf("BaseScore(4000, 0) = %d, want 0", got)
	}
}

func TestStreakMultiplierCaps(t *testing.T) {
	cases := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{1, 1.05},
		{7, 1.35},
		{10, 1.35},
	}
	for _, c := range cases {
		got := StreakMultiplier(c.streak)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("StreakMultiplier(%d) = %v, want %v", c.streak, got, c.want)
		}
	}
}

func TestFinalScoreRounding(t *testing.T) {
	// 250 * 1.05 lands a hair above 262.5 in float64 and must round up.
	if got := FinalScore(250, 1.05); got != 263 {
		t.Fatalf("FinalScore(250, 1.05) = %d, want 263", got)
	}
	if got := FinalScore(250, 1.0); got != 250 {
		t.Fatalf("FinalScore(250, 1.0) = %d, want 250", got)
	}
}

func TestDisplayDifficultyAbove400(t *testing.T) {
	for _, raw := range []float64{400, 401, 1234.4, 3199.6} {
		want := int(math.Round(raw))
		if got := DisplayDifficulty(raw); got != want {
			t.Fatalf("DisplayDifficulty(%v) = %d, want %d", raw, got, want)
		}
	}
}

func TestDisplayDifficultyBelow400(t *testing.T) {
	// Pinned values for the exponential compression branch.
	cases := []struct {
		raw  float64
		want int
	}{
		{0, 147},
		{399, 399},
		{-400, 54},
		{-1200, 7},
	}
	for _, c := range cases {
		if got := DisplayDifficulty(c.raw); got != c.want {
			t.Fatalf("DisplayDifficulty(%v) = %d, want %d", c.raw, got, c.want)
		}
	}

	// Strictly increasing and always below 400 on the compressed branch.
	prev := DisplayDifficulty(-2000)
	for raw := -1999.0; raw < 400; raw += 1.0 {
		cur := DisplayDifficulty(raw)
		if cur < prev {
			t.Fatalf("DisplayDifficulty not monotonic at raw=%v: %d < %d", raw, cur, prev)
		}
		if cur >= 400 {
			t.Fatalf("DisplayDifficulty(%v) = %d, want < 400", raw, cur)
		}
		prev = cur
	}
}

func TestColorKeyBands(t *testing.T) {
	cases := []struct {
		value int
		want  string
	}{
		{-5, "gray"},
		{0, "gray"},
		{399, "gray"},
		{400, "brown"},
		{799, "brown"},
		{800, "green"},
		{1200, "cyan"},
		{1600, "blue"},
		{2000, "yellow"},
		{2400, "orange"},
		{2800, "red"},
		{3600, "red"},
	}
	for _, c := range cases {
		if got := ColorKey(c.value); got != c.want {
			t.Fatalf("ColorKey(%d) = %q, want %q", c.value, got, c.want)
		}
	}
}
