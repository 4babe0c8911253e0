package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the single mutable progress root per device. Aggregate
// counters (stars, streak, badges) are only ever written by the
// gamification orchestrator; the save-game codec may replace the whole
// profile after a validated import.
type UserProfile struct {
	ID             string                   `json:"id"`
	Nickname       string                   `json:"nickname"`
	AvatarID       string                   `json:"avatarId"`
	CreatedAt      time.Time                `json:"createdAt"`
	CurrentLevels  map[string]int           `json:"currentLevels"`
	TotalStars     int                      `json:"totalStars"`
	CurrentStreak  int                      `json:"currentStreak"`
	LongestStreak  int                      `json:"longestStreak"`
	LastActiveDate string                   `json:"lastActiveDate"` // YYYY-MM-DD, empty before first activity
	ThemeProgress  map[string]ThemeProgress `json:"themeProgress"`
	ThemeLevels    map[string]int           `json:"themeLevels"`
	Badges         []Badge                  `json:"badges"`
}

// ThemeProgress tracks completion within one theme.
type ThemeProgress struct {
	Unlocked           bool `json:"unlocked"`
	ExercisesCompleted int  `json:"exercisesCompleted"`
	ExercisesTotal     int  `json:"exercisesTotal"`
	StarsEarned        int  `json:"starsEarned"`
	MaxStars           int  `json:"maxStars"`
}

// Badge is an earned award. Earning is append-only and deduplicated by ID.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// NewUserProfile creates a fresh profile with empty progress maps.
func NewUserProfile(nickname, avatarID string) *UserProfile {
	return &UserProfile{
		ID:            uuid.New().String(),
		Nickname:      nickname,
		AvatarID:      avatarID,
		CreatedAt:     time.Now(),
		CurrentLevels: make(map[string]int),
		ThemeProgress: make(map[string]ThemeProgress),
		ThemeLevels:   make(map[string]int),
		Badges:        []Badge{},
	}
}

// HasBadge reports whether a badge with the given ID has been earned.
func (p *UserProfile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// AddBadge appends a badge unless one with the same ID already exists.
// Returns true if the badge was added.
func (p *UserProfile) AddBadge(b Badge) bool {
	if p.HasBadge(b.ID) {
		return false
	}
	p.Badges = append(p.Badges, b)
	return true
}

// SetAreaLevel raises the stored level for an area. Levels never decrease.
func (p *UserProfile) SetAreaLevel(areaID string, level int) {
	if p.CurrentLevels == nil {
		p.CurrentLevels = make(map[string]int)
	}
	if level > p.CurrentLevels[areaID] {
		p.CurrentLevels[areaID] = level
	}
}

// EnsureThemeProgress returns the progress entry for a theme, creating an
// unlocked zero entry if none exists yet.
func (p *UserProfile) EnsureThemeProgress(themeID string) ThemeProgress {
	if p.ThemeProgress == nil {
		p.ThemeProgress = make(map[string]ThemeProgress)
	}
	tp, ok := p.ThemeProgress[themeID]
	if !ok {
		tp = ThemeProgress{Unlocked: true}
		p.ThemeProgress[themeID] = tp
	}
	return tp
}
