// Package gamification derives stars, levels, streaks and badge unlocks
// from accumulated progress. The orchestrator is the only writer of the
// profile's aggregate counters.
package gamification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lernwerk/trainer/internal/badge"
	"github.com/lernwerk/trainer/internal/domain"
	"github.com/lernwerk/trainer/internal/events"
	"github.com/lernwerk/trainer/internal/scoring"
	"github.com/lernwerk/trainer/internal/streak"
)

// ProfileAccessor reads and writes the persistent profile. The
// orchestrator reads through it at the moment of mutation, never from a
// snapshot captured earlier, so a caller holding a stale copy cannot
// corrupt the aggregates.
type ProfileAccessor interface {
	Profile(ctx context.Context) (*domain.UserProfile, error)
	Save(ctx context.Context, p *domain.UserProfile) error
}

// Config holds the scoring parameters the orchestrator applies.
type Config struct {
	StarsPerLevel int
	MaxAttempts   int
	MaxThemeLevel int
	Badges        []badge.Definition
}

// DefaultConfig returns the built-in gamification parameters.
func DefaultConfig() Config {
	return Config{
		StarsPerLevel: scoring.DefaultStarsPerLevel,
		MaxAttempts:   scoring.DefaultMaxAttempts,
		MaxThemeLevel: 10,
		Badges:        badge.DefaultDefinitions(),
	}
}

// CompletionResult reports the effects of one exercise completion. The
// one-shot LeveledUp edge lets the UI time a celebration without the
// profile storing transient flags.
type CompletionResult struct {
	StarsEarned int            `json:"starsEarned"`
	LeveledUp   bool           `json:"leveledUp"`
	NewLevel    int            `json:"newLevel,omitempty"`
	NewBadges   []domain.Badge `json:"newBadges"`
	Streak      streak.Update  `json:"streakUpdate"`
}

// Orchestrator wraps the pure rules around the profile mutation surface.
type Orchestrator struct {
	profiles  ProfileAccessor
	cfg       Config
	publisher *events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	themeTotals map[string]int
}

// NewOrchestrator creates an orchestrator over the given profile accessor.
func NewOrchestrator(profiles ProfileAccessor, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.StarsPerLevel <= 0 {
		cfg.StarsPerLevel = scoring.DefaultStarsPerLevel
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = scoring.DefaultMaxAttempts
	}
	if cfg.MaxThemeLevel <= 0 {
		cfg.MaxThemeLevel = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		profiles:    profiles,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		themeTotals: make(map[string]int),
	}
}

// SetPublisher wires an optional progress-event publisher.
func (o *Orchestrator) SetPublisher(p *events.Publisher) {
	o.publisher = p
}

// SetThemeTotals supplies per-theme exercise counts from the loaded packs
// so theme progress can report totals and max stars.
func (o *Orchestrator) SetThemeTotals(totals map[string]int) {
	o.themeTotals = totals
}

// ProcessExerciseCompletion applies the gamification side effects for one
// completed exercise: star award, level-up edge detection, streak advance
// and badge evaluation, in that order. When no profile exists it returns
// a zero-effect result rather than failing, so it is safe to call before
// onboarding has created one.
func (o *Orchestrator) ProcessExerciseCompletion(ctx context.Context, attempts int) (CompletionResult, error) {
	p, err := o.profiles.Profile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, domain.ErrNoActiveProfile) {
			return CompletionResult{NewBadges: []domain.Badge{}}, nil
		}
		return CompletionResult{}, err
	}
	// Accessors may report a missing profile as (nil, nil) rather than
	// a sentinel; both mean guest play.
	if p == nil {
		return CompletionResult{NewBadges: []domain.Badge{}}, nil
	}

	stars := scoring.StarsForAttempts(attempts, o.cfg.MaxAttempts)

	// Previous level is derived from the pre-mutation star total right
	// here, never from state captured in an earlier render cycle.
	previousLevel := scoring.LevelProgress(p.TotalStars, o.cfg.StarsPerLevel, nil).CurrentLevel

	p.TotalStars += stars
	progress := scoring.LevelProgress(p.TotalStars, o.cfg.StarsPerLevel, &previousLevel)

	update := streak.Advance(p.CurrentStreak, p.LongestStreak, p.LastActiveDate, streak.Today(o.now()))
	p.CurrentStreak = update.Current
	p.LongestStreak = update.Longest
	p.LastActiveDate = update.LastActive

	if err := o.profiles.Save(ctx, p); err != nil {
		return CompletionResult{}, err
	}

	result := CompletionResult{
		StarsEarned: stars,
		LeveledUp:   progress.JustLeveledUp,
		Streak:      update,
		NewBadges:   []domain.Badge{},
	}
	if progress.JustLeveledUp {
		result.NewLevel = progress.CurrentLevel
	}

	// Badges are evaluated against the freshly persisted state.
	p, err = o.profiles.Profile(ctx)
	if err != nil {
		return result, err
	}

	snap := badge.SnapshotOf(p, progress.CurrentLevel)
	earnedAt := o.now()
	for _, def := range badge.Evaluate(p, snap, o.cfg.Badges) {
		b := domain.Badge{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			EarnedAt:    earnedAt,
		}
		if p.AddBadge(b) {
			result.NewBadges = append(result.NewBadges, b)
		}
	}

	if len(result.NewBadges) > 0 {
		if err := o.profiles.Save(ctx, p); err != nil {
			return result, err
		}
	}

	o.publishCompletion(ctx, p.ID, result)

	o.logger.Info("exercise completion processed",
		"stars", stars,
		"leveled_up", result.LeveledUp,
		"new_badges", len(result.NewBadges),
		"streak", update.Current,
	)
	return result, nil
}

// publishCompletion fires progress events; failures are logged, never
// surfaced, since the broker is an optional bystander.
func (o *Orchestrator) publishCompletion(ctx context.Context, profileID string, result CompletionResult) {
	if result.LeveledUp {
		if err := o.publisher.LevelUp(ctx, profileID, result.NewLevel); err != nil {
			o.logger.Warn("failed to publish level up", "error", err)
		}
	}
	for _, b := range result.NewBadges {
		if err := o.publisher.BadgeEarned(ctx, profileID, b.ID); err != nil {
			o.logger.Warn("failed to publish badge earned", "error", err)
		}
	}
}

// UpdateThemeProgress records a completed exercise against its theme and
// area: completion count, theme stars, derived theme level and the
// never-decreasing area level.
func (o *Orchestrator) UpdateThemeProgress(ctx context.Context, ex domain.Exercise, stars int) error {
	p, err := o.profiles.Profile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, domain.ErrNoActiveProfile) {
			return nil
		}
		return err
	}
	if p == nil {
		return nil
	}

	tp := p.EnsureThemeProgress(ex.ThemeID)
	tp.ExercisesCompleted++
	tp.StarsEarned += stars
	if total, ok := o.themeTotals[ex.ThemeID]; ok && total > tp.ExercisesTotal {
		tp.ExercisesTotal = total
	}
	tp.MaxStars = tp.ExercisesTotal * 3
	p.ThemeProgress[ex.ThemeID] = tp

	themeLevel := tp.StarsEarned / o.cfg.StarsPerLevel
	if themeLevel > o.cfg.MaxThemeLevel {
		themeLevel = o.cfg.MaxThemeLevel
	}
	if p.ThemeLevels == nil {
		p.ThemeLevels = make(map[string]int)
	}
	if themeLevel > p.ThemeLevels[ex.ThemeID] {
		p.ThemeLevels[ex.ThemeID] = themeLevel
	}

	p.SetAreaLevel(ex.AreaID, ex.Level)

	if err := o.profiles.Save(ctx, p); err != nil {
		return err
	}

	if err := o.publisher.ExerciseCompleted(ctx, p.ID, ex.ID, ex.ThemeID, stars); err != nil {
		o.logger.Warn("failed to publish exercise completed", "error", err)
	}
	return nil
}

// LevelStanding returns the profile's current level standing, or a
// level-1 zero standing when no profile exists.
func (o *Orchestrator) LevelStanding(ctx context.Context) (scoring.Progress, error) {
	p, err := o.profiles.Profile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, domain.ErrNoActiveProfile) {
			return scoring.LevelProgress(0, o.cfg.StarsPerLevel, nil), nil
		}
		return scoring.Progress{}, err
	}
	if p == nil {
		return scoring.LevelProgress(0, o.cfg.StarsPerLevel, nil), nil
	}
	return scoring.LevelProgress(p.TotalStars, o.cfg.StarsPerLevel, nil), nil
}
