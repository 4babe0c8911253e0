package badge

import "github.com/lernwerk/trainer/internal/domain"

// Snapshot is the slice of profile state badge predicates read. Level is
// supplied by the caller because deriving it needs the scoring config,
// which the evaluator deliberately knows nothing about.
type Snapshot struct {
	TotalStars    int
	CurrentStreak int
	Level         int
}

// SnapshotOf builds a Snapshot from a profile and a precomputed level.
func SnapshotOf(p *domain.UserProfile, level int) Snapshot {
	return Snapshot{
		TotalStars:    p.TotalStars,
		CurrentStreak: p.CurrentStreak,
		Level:         level,
	}
}

// Evaluate returns the definitions whose predicate holds for the snapshot
// and whose ID the profile does not own yet, in definition order. It never
// mutates anything; recording the returned badges is the caller's job, so
// calling twice without an intervening mutation returns nothing the
// second time only once the caller has recorded the first batch.
func Evaluate(p *domain.UserProfile, snap Snapshot, defs []Definition) []Definition {
	var earned []Definition
	for _, d := range defs {
		if p.HasBadge(d.ID) {
			continue
		}
		if qualifies(d, snap) {
			earned = append(earned, d)
		}
	}
	return earned
}

func qualifies(d Definition, snap Snapshot) bool {
	switch d.Type {
	case TypeStars:
		return snap.TotalStars >= d.Threshold
	case TypeStreak:
		return snap.CurrentStreak >= d.Threshold
	case TypeLevel:
		return snap.Level >= d.Threshold
	default:
		return false
	}
}
