package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/lernwerk/trainer/internal/badge"
	"github.com/lernwerk/trainer/internal/domain"
)

// fakeAccessor serves the live profile on every read, like the real
// store-backed accessor does.
type fakeAccessor struct {
	profile *domain.UserProfile
	saves   int
}

func (a *fakeAccessor) Profile(ctx context.Context) (*domain.UserProfile, error) {
	if a.profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return a.profile, nil
}

func (a *fakeAccessor) Save(ctx context.Context, p *domain.UserProfile) error {
	a.profile = p
	a.saves++
	return nil
}

func newTestOrchestrator(p *domain.UserProfile) (*Orchestrator, *fakeAccessor) {
	acc := &fakeAccessor{profile: p}
	o := NewOrchestrator(acc, DefaultConfig(), nil)
	o.now = func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) }
	return o, acc
}

func TestProcessExerciseCompletion_LevelUpEdge(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.TotalStars = 8
	o, _ := newTestOrchestrator(p)

	result, err := o.ProcessExerciseCompletion(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if result.StarsEarned != 3 {
		t.Errorf("StarsEarned = %d; want 3", result.StarsEarned)
	}
	if !result.LeveledUp {
		t.Error("LeveledUp should be true (8+3 crosses 10)")
	}
	if result.NewLevel != 2 {
		t.Errorf("NewLevel = %d; want 2", result.NewLevel)
	}
	if p.TotalStars != 11 {
		t.Errorf("TotalStars = %d; want 11", p.TotalStars)
	}
}

func TestProcessExerciseCompletion_NoLevelUpWithinLevel(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.TotalStars = 2
	o, _ := newTestOrchestrator(p)

	result, err := o.ProcessExerciseCompletion(context.Background(), 2)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if result.LeveledUp {
		t.Error("LeveledUp should be false (2+2 stays below 10)")
	}
	if result.StarsEarned != 2 {
		t.Errorf("StarsEarned = %d; want 2", result.StarsEarned)
	}
}

func TestProcessExerciseCompletion_NoProfileIsZeroEffect(t *testing.T) {
	o, acc := newTestOrchestrator(nil)

	result, err := o.ProcessExerciseCompletion(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if result.StarsEarned != 0 || result.LeveledUp || len(result.NewBadges) != 0 {
		t.Errorf("result = %+v; want zero-effect", result)
	}
	if acc.saves != 0 {
		t.Error("no profile may be created or saved")
	}
}

func TestProcessExerciseCompletion_StreakAdvance(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.CurrentStreak = 2
	p.LongestStreak = 5
	p.LastActiveDate = "2025-03-09" // yesterday relative to fixed now
	o, _ := newTestOrchestrator(p)

	result, err := o.ProcessExerciseCompletion(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if result.Streak.Current != 3 || !result.Streak.Extended {
		t.Errorf("streak = %+v; want extended to 3", result.Streak)
	}
	if p.LastActiveDate != "2025-03-10" {
		t.Errorf("LastActiveDate = %q; want 2025-03-10", p.LastActiveDate)
	}
}

func TestProcessExerciseCompletion_SameDayStreakNoOp(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.CurrentStreak = 2
	p.LongestStreak = 5
	p.LastActiveDate = "2025-03-10"
	o, _ := newTestOrchestrator(p)

	result, err := o.ProcessExerciseCompletion(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if result.Streak.Current != 2 || result.Streak.Extended || result.Streak.Reset {
		t.Errorf("streak = %+v; want unchanged", result.Streak)
	}
}

func TestProcessExerciseCompletion_BadgesAwardedOnce(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	o, _ := newTestOrchestrator(p)

	first, err := o.ProcessExerciseCompletion(context.Background(), 1)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}

	if !hasBadgeID(first.NewBadges, "first-star") {
		t.Errorf("first completion badges = %v; want first-star", first.NewBadges)
	}

	second, err := o.ProcessExerciseCompletion(context.Background(), 1)
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if hasBadgeID(second.NewBadges, "first-star") {
		t.Error("first-star must not be awarded twice")
	}
	if countBadgeID(p.Badges, "first-star") != 1 {
		t.Errorf("profile holds %d first-star badges; want 1", countBadgeID(p.Badges, "first-star"))
	}
}

func TestProcessExerciseCompletion_FailedAttemptStillCountsActivity(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	o, _ := newTestOrchestrator(p)

	// Attempts over the max earn zero stars but the day still counts.
	result, err := o.ProcessExerciseCompletion(context.Background(), 4)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if result.StarsEarned != 0 {
		t.Errorf("StarsEarned = %d; want 0", result.StarsEarned)
	}
	if result.Streak.Current != 1 {
		t.Errorf("streak = %+v; want started at 1", result.Streak)
	}
}

func TestUpdateThemeProgress(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	o, _ := newTestOrchestrator(p)
	o.SetThemeTotals(map[string]int{"fractions": 12})

	ex := domain.Exercise{ID: "ex-1", AreaID: "math", ThemeID: "fractions", Level: 2}
	if err := o.UpdateThemeProgress(context.Background(), ex, 3); err != nil {
		t.Fatalf("UpdateThemeProgress() error = %v", err)
	}

	tp := p.ThemeProgress["fractions"]
	if tp.ExercisesCompleted != 1 || tp.StarsEarned != 3 {
		t.Errorf("theme progress = %+v", tp)
	}
	if tp.ExercisesTotal != 12 || tp.MaxStars != 36 {
		t.Errorf("totals = %d/%d; want 12/36", tp.ExercisesTotal, tp.MaxStars)
	}
	if p.CurrentLevels["math"] != 2 {
		t.Errorf("area level = %d; want 2", p.CurrentLevels["math"])
	}
}

func TestUpdateThemeProgress_AreaLevelNeverDecreases(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.CurrentLevels["math"] = 5
	o, _ := newTestOrchestrator(p)

	ex := domain.Exercise{ID: "ex-1", AreaID: "math", ThemeID: "fractions", Level: 2}
	if err := o.UpdateThemeProgress(context.Background(), ex, 1); err != nil {
		t.Fatalf("UpdateThemeProgress() error = %v", err)
	}

	if p.CurrentLevels["math"] != 5 {
		t.Errorf("area level = %d; want still 5", p.CurrentLevels["math"])
	}
}

func TestLevelStanding_NoProfile(t *testing.T) {
	o, _ := newTestOrchestrator(nil)

	standing, err := o.LevelStanding(context.Background())
	if err != nil {
		t.Fatalf("LevelStanding() error = %v", err)
	}
	if standing.CurrentLevel != 1 {
		t.Errorf("CurrentLevel = %d; want 1", standing.CurrentLevel)
	}
}

func TestBadgeEvaluationUsesCustomDefinitions(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	acc := &fakeAccessor{profile: p}
	cfg := DefaultConfig()
	cfg.Badges = []badge.Definition{
		{ID: "quick", Name: "Quick", Type: badge.TypeStars, Threshold: 2},
	}
	o := NewOrchestrator(acc, cfg, nil)

	result, err := o.ProcessExerciseCompletion(context.Background(), 2)
	if err != nil {
		t.Fatalf("ProcessExerciseCompletion() error = %v", err)
	}

	if !hasBadgeID(result.NewBadges, "quick") {
		t.Errorf("badges = %v; want quick", result.NewBadges)
	}
}

func hasBadgeID(badges []domain.Badge, id string) bool {
	return countBadgeID(badges, id) > 0
}

func countBadgeID(badges []domain.Badge, id string) int {
	n := 0
	for _, b := range badges {
		if b.ID == id {
			n++
		}
	}
	return n
}
