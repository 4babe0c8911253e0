package savegame

import (
	"fmt"
	"strings"
	"time"
)

// Gate names the pipeline stage an import was rejected at.
type Gate string

const (
	GateShape     Gate = "shape"
	GateTenant    Gate = "tenant"
	GateIntegrity Gate = "integrity"
	GateRange     Gate = "range"
)

// ImportError is the typed rejection for a failed import. The reason is
// specific and user-facing; range-gate rejections additionally carry the
// full issue list.
type ImportError struct {
	Gate   Gate
	Reason string
	Issues []Issue
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import rejected at %s gate: %s", e.Gate, e.Reason)
}

// Issue is one structured range-validation finding.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// Plausibility bounds enforced on import. They exist to stop a manually
// edited or corrupted file from granting implausible progress.
const (
	MaxTotalStars    = 1_000_000
	MaxStreak        = 365
	MaxAreaLevel     = 100
	MinAreaLevel     = 1
	MaxThemeLevel    = 10
	MaxThemeCounters = 10_000
	MaxResultScore   = 3
)

// validateRanges enforces gate 4 over every numeric field and every
// badge of the payload. It collects all findings instead of stopping at
// the first.
func validateRanges(p *Payload, now time.Time) []Issue {
	var issues []Issue
	add := func(code, path, format string, args ...any) {
		issues = append(issues, Issue{
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Path:    path,
		})
	}

	profile := p.Profile

	if profile.TotalStars < 0 || profile.TotalStars > MaxTotalStars {
		add("out_of_range", "profile.totalStars",
			"totalStars %d outside 0..%d", profile.TotalStars, MaxTotalStars)
	}
	if profile.CurrentStreak < 0 || profile.CurrentStreak > MaxStreak {
		add("out_of_range", "profile.currentStreak",
			"currentStreak %d outside 0..%d", profile.CurrentStreak, MaxStreak)
	}
	if profile.LongestStreak < 0 || profile.LongestStreak > MaxStreak {
		add("out_of_range", "profile.longestStreak",
			"longestStreak %d outside 0..%d", profile.LongestStreak, MaxStreak)
	}
	if profile.LongestStreak < profile.CurrentStreak {
		add("inconsistent", "profile.longestStreak",
			"longestStreak %d below currentStreak %d", profile.LongestStreak, profile.CurrentStreak)
	}

	for areaID, level := range profile.CurrentLevels {
		if level < MinAreaLevel || level > MaxAreaLevel {
			add("out_of_range", "profile.currentLevels."+areaID,
				"level %d for area %q outside %d..%d", level, areaID, MinAreaLevel, MaxAreaLevel)
		}
	}

	for themeID, level := range profile.ThemeLevels {
		if level < 0 || level > MaxThemeLevel {
			add("out_of_range", "profile.themeLevels."+themeID,
				"theme level %d for %q outside 0..%d", level, themeID, MaxThemeLevel)
		}
	}

	for themeID, tp := range profile.ThemeProgress {
		path := "profile.themeProgress." + themeID
		if tp.ExercisesCompleted < 0 || tp.ExercisesCompleted > MaxThemeCounters {
			add("out_of_range", path+".exercisesCompleted",
				"exercisesCompleted %d outside 0..%d", tp.ExercisesCompleted, MaxThemeCounters)
		}
		if tp.ExercisesTotal < 0 || tp.ExercisesTotal > MaxThemeCounters {
			add("out_of_range", path+".exercisesTotal",
				"exercisesTotal %d outside 0..%d", tp.ExercisesTotal, MaxThemeCounters)
		}
		if tp.StarsEarned < 0 || tp.StarsEarned > MaxThemeCounters {
			add("out_of_range", path+".starsEarned",
				"starsEarned %d outside 0..%d", tp.StarsEarned, MaxThemeCounters)
		}
		if tp.MaxStars < 0 || tp.MaxStars > MaxThemeCounters {
			add("out_of_range", path+".maxStars",
				"maxStars %d outside 0..%d", tp.MaxStars, MaxThemeCounters)
		}
	}

	seenBadges := make(map[string]bool)
	for i, b := range profile.Badges {
		path := fmt.Sprintf("profile.badges[%d]", i)
		if strings.TrimSpace(b.ID) == "" {
			add("missing_field", path+".id", "badge %d has no id", i)
		}
		if strings.TrimSpace(b.Name) == "" {
			add("missing_field", path+".name", "badge %q has no name", b.ID)
		}
		if b.EarnedAt.IsZero() {
			add("invalid_timestamp", path+".earnedAt", "badge %q has no earnedAt timestamp", b.ID)
		} else if b.EarnedAt.After(now) {
			add("future_timestamp", path+".earnedAt", "badge %q was earned in the future", b.ID)
		}
		if b.ID != "" && seenBadges[b.ID] {
			add("duplicate", path+".id", "badge id %q appears more than once", b.ID)
		}
		seenBadges[b.ID] = true
	}

	for i, r := range p.ExerciseResults {
		path := fmt.Sprintf("exerciseResults[%d]", i)
		if r.Score < 0 || r.Score > MaxResultScore {
			add("out_of_range", path+".score",
				"score %d outside 0..%d", r.Score, MaxResultScore)
		}
		if r.Attempts < 1 {
			add("out_of_range", path+".attempts", "attempts %d below 1", r.Attempts)
		}
		if r.TimeSpentSeconds < 0 {
			add("out_of_range", path+".timeSpentSeconds",
				"timeSpentSeconds %d is negative", r.TimeSpentSeconds)
		}
	}

	return issues
}
