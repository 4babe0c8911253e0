package badge

import (
	"testing"
	"time"

	"github.com/lernwerk/trainer/internal/domain"
)

func testDefs() []Definition {
	return []Definition{
		{ID: "first-star", Name: "First", Type: TypeStars, Threshold: 1},
		{ID: "stars-10", Name: "Ten", Type: TypeStars, Threshold: 10},
		{ID: "streak-3", Name: "Streak", Type: TypeStreak, Threshold: 3},
		{ID: "level-5", Name: "Level", Type: TypeLevel, Threshold: 5},
	}
}

func TestEvaluate_NewlyQualified(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.TotalStars = 12
	p.CurrentStreak = 1

	earned := Evaluate(p, SnapshotOf(p, 2), testDefs())

	if len(earned) != 2 {
		t.Fatalf("earned %d badges; want 2", len(earned))
	}
	if earned[0].ID != "first-star" || earned[1].ID != "stars-10" {
		t.Errorf("earned order = %s, %s; want first-star, stars-10", earned[0].ID, earned[1].ID)
	}
}

func TestEvaluate_SkipsOwned(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.TotalStars = 12
	p.AddBadge(domain.Badge{ID: "first-star", Name: "First", EarnedAt: time.Now()})

	earned := Evaluate(p, SnapshotOf(p, 1), testDefs())

	if len(earned) != 1 || earned[0].ID != "stars-10" {
		t.Fatalf("earned = %v; want only stars-10", earned)
	}
}

func TestEvaluate_IdempotentAfterRecording(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.TotalStars = 3
	p.CurrentStreak = 4
	snap := SnapshotOf(p, 1)

	first := Evaluate(p, snap, testDefs())
	for _, d := range first {
		p.AddBadge(domain.Badge{ID: d.ID, Name: d.Name, EarnedAt: time.Now()})
	}

	second := Evaluate(p, snap, testDefs())
	if len(second) != 0 {
		t.Errorf("second evaluation returned %d badges; want 0", len(second))
	}
}

func TestEvaluate_NoSideEffects(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.TotalStars = 100
	snap := SnapshotOf(p, 10)

	Evaluate(p, snap, testDefs())
	Evaluate(p, snap, testDefs())

	if len(p.Badges) != 0 {
		t.Errorf("evaluator mutated profile badges: %v", p.Badges)
	}
}

func TestEvaluate_LevelAndStreakTypes(t *testing.T) {
	p := domain.NewUserProfile("kim", "fox")
	p.CurrentStreak = 3

	earned := Evaluate(p, SnapshotOf(p, 5), testDefs())

	ids := make(map[string]bool)
	for _, d := range earned {
		ids[d.ID] = true
	}
	if !ids["streak-3"] || !ids["level-5"] {
		t.Errorf("earned = %v; want streak-3 and level-5", earned)
	}
}

func TestValidateDefinition(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{"valid", Definition{ID: "a", Name: "A", Type: TypeStars, Threshold: 1}, false},
		{"missing id", Definition{Name: "A", Type: TypeStars, Threshold: 1}, true},
		{"missing name", Definition{ID: "a", Type: TypeStars, Threshold: 1}, true},
		{"bad type", Definition{ID: "a", Name: "A", Type: "xp", Threshold: 1}, true},
		{"zero threshold", Definition{ID: "a", Name: "A", Type: TypeStars}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDefinition(tt.def)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDefinition() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultDefinitions_Valid(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range DefaultDefinitions() {
		if err := validateDefinition(d); err != nil {
			t.Errorf("default badge %s invalid: %v", d.ID, err)
		}
		if seen[d.ID] {
			t.Errorf("duplicate default badge id %s", d.ID)
		}
		seen[d.ID] = true
	}
}
