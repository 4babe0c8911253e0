package scoring

import "testing"

func TestStarsForAttempts(t *testing.T) {
	tests := []struct {
		name        string
		attempts    int
		maxAttempts int
		want        int
	}{
		{"first try", 1, 3, 3},
		{"second try", 2, 3, 2},
		{"third try", 3, 3, 1},
		{"zero attempts", 0, 3, 0},
		{"negative attempts", -1, 3, 0},
		{"over max", 4, 3, 0},
		{"custom max allows fourth try", 4, 5, 1},
		{"zero max falls back to default", 2, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StarsForAttempts(tt.attempts, tt.maxAttempts); got != tt.want {
				t.Errorf("StarsForAttempts(%d, %d) = %d; want %d", tt.attempts, tt.maxAttempts, got, tt.want)
			}
		})
	}
}

func TestLevelForStars(t *testing.T) {
	thresholds := []LevelThreshold{
		{Level: 3, StarsRequired: 30},
		{Level: 2, StarsRequired: 10},
		{Level: 1, StarsRequired: 0},
	}

	tests := []struct {
		stars int
		want  int
	}{
		{0, 1},
		{9, 1},
		{10, 2},
		{29, 2},
		{30, 3},
		{1000, 3},
	}

	for _, tt := range tests {
		if got := LevelForStars(tt.stars, thresholds); got != tt.want {
			t.Errorf("LevelForStars(%d) = %d; want %d", tt.stars, got, tt.want)
		}
	}
}

func TestLevelForStars_NoThresholds(t *testing.T) {
	if got := LevelForStars(50, nil); got != 1 {
		t.Errorf("LevelForStars with no thresholds = %d; want 1", got)
	}
}

func TestLevelProgress(t *testing.T) {
	p := LevelProgress(8, 10, nil)

	if p.CurrentLevel != 1 {
		t.Errorf("CurrentLevel = %d; want 1", p.CurrentLevel)
	}
	if p.CurrentStars != 8 {
		t.Errorf("CurrentStars = %d; want 8", p.CurrentStars)
	}
	if p.StarsToNextLevel != 2 {
		t.Errorf("StarsToNextLevel = %d; want 2", p.StarsToNextLevel)
	}
	if p.ProgressPercentage != 80 {
		t.Errorf("ProgressPercentage = %d; want 80", p.ProgressPercentage)
	}
	if p.JustLeveledUp {
		t.Error("JustLeveledUp should be false without previousLevel")
	}
}

func TestLevelProgress_LevelUpEdge(t *testing.T) {
	prev := 1
	p := LevelProgress(11, 10, &prev)

	if p.CurrentLevel != 2 {
		t.Errorf("CurrentLevel = %d; want 2", p.CurrentLevel)
	}
	if !p.JustLeveledUp {
		t.Error("JustLeveledUp should be true when level changed")
	}

	// Same level supplied: no edge.
	prev = 2
	p = LevelProgress(11, 10, &prev)
	if p.JustLeveledUp {
		t.Error("JustLeveledUp should be false when level unchanged")
	}
}

func TestLevelProgress_NegativeStarsClamped(t *testing.T) {
	p := LevelProgress(-5, 10, nil)
	if p.CurrentLevel != 1 || p.CurrentStars != 0 {
		t.Errorf("got level %d stars %d; want level 1 stars 0", p.CurrentLevel, p.CurrentStars)
	}
}
