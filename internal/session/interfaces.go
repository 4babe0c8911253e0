package session

import (
	"context"

	"github.com/lernwerk/trainer/internal/domain"
)

// Store is the structured-storage collaborator the engine flushes results
// to. Both the SQLite store and the Postgres store implement this.
type Store interface {
	// SaveExerciseResult persists one result. Implementations reject a
	// second correct result for the same (profile, exercise) pair with
	// domain.ErrDuplicateResult.
	SaveExerciseResult(ctx context.Context, r domain.ExerciseResult) error
	GetAllExerciseResults(ctx context.Context) ([]domain.ExerciseResult, error)
	GetExerciseResultsByTheme(ctx context.Context, themeID string) ([]domain.ExerciseResult, error)
	HasExerciseBeenCompleted(ctx context.Context, profileID, exerciseID string) (bool, error)

	SaveProfile(ctx context.Context, p *domain.UserProfile) error
	GetProfile(ctx context.Context) (*domain.UserProfile, error)

	ClearAllExerciseResults(ctx context.Context) error
	// ReplaceAll atomically clears existing results, bulk-inserts the
	// imported ones and replaces the profile. Used only by save-game import.
	ReplaceAll(ctx context.Context, p *domain.UserProfile, results []domain.ExerciseResult) error

	TrainerID() string
}
