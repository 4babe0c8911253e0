// Package scoring contains the pure rating rules: attempts to stars,
// total stars to level, and level-progress derivation. Nothing in here
// touches state or a clock.
package scoring

// Defaults used when a trainer config does not override them.
const (
	DefaultMaxAttempts   = 3
	DefaultStarsPerLevel = 10
)

// StarsForAttempts maps the attempt count on which an exercise was solved
// to a star rating: first try earns 3, second 2, third 1. Out-of-range
// attempt counts (including unsolved, attempts <= 0) earn 0.
func StarsForAttempts(attempts, maxAttempts int) int {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if attempts <= 0 || attempts > maxAttempts {
		return 0
	}
	switch attempts {
	case 1:
		return 3
	case 2:
		return 2
	default:
		return 1
	}
}

// LevelThreshold declares the star total required to reach a level.
type LevelThreshold struct {
	Level         int `json:"level" yaml:"level"`
	StarsRequired int `json:"starsRequired" yaml:"stars_required"`
}

// LevelForStars returns the highest level whose threshold is satisfied by
// the given star total. Thresholds are checked highest-level first; if
// none match, level 1 is returned.
func LevelForStars(totalStars int, thresholds []LevelThreshold) int {
	best := 1
	for _, th := range thresholds {
		if totalStars >= th.StarsRequired && th.Level > best {
			best = th.Level
		}
	}
	return best
}

// Progress describes where a star total sits within the linear
// stars-per-level progression.
type Progress struct {
	CurrentLevel       int  `json:"currentLevel"`
	CurrentStars       int  `json:"currentStars"` // stars into the current level
	StarsToNextLevel   int  `json:"starsToNextLevel"`
	ProgressPercentage int  `json:"progressPercentage"` // 0-100
	JustLeveledUp      bool `json:"justLeveledUp"`
}

// LevelProgress derives level standing from a star total under a linear
// stars-per-level scheme. previousLevel, when supplied, is compared
// against the freshly computed level to detect a level-up edge; callers
// pass nil when no edge detection is wanted.
func LevelProgress(totalStars, starsPerLevel int, previousLevel *int) Progress {
	if starsPerLevel <= 0 {
		starsPerLevel = DefaultStarsPerLevel
	}
	if totalStars < 0 {
		totalStars = 0
	}

	level := totalStars/starsPerLevel + 1
	into := totalStars % starsPerLevel

	p := Progress{
		CurrentLevel:       level,
		CurrentStars:       into,
		StarsToNextLevel:   starsPerLevel - into,
		ProgressPercentage: into * 100 / starsPerLevel,
	}
	if previousLevel != nil && *previousLevel != level {
		p.JustLeveledUp = true
	}
	return p
}
