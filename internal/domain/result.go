package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseResult records one correctly-completed exercise. Results are
// immutable once created; at most one correct result exists per
// (profile, exercise) pair.
type ExerciseResult struct {
	ID               string    `json:"id"`
	ProfileID        string    `json:"profileId"`
	ExerciseID       string    `json:"exerciseId"`
	AreaID           string    `json:"areaId"`
	ThemeID          string    `json:"themeId"`
	Level            int       `json:"level"`
	Correct          bool      `json:"correct"`
	Score            int       `json:"score"`    // stars, 0-3
	Attempts         int       `json:"attempts"` // >= 1
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	CompletedAt      time.Time `json:"completedAt"`
}

// NewExerciseResult creates a result for a completed exercise.
func NewExerciseResult(profileID string, ex Exercise, correct bool, score, attempts, timeSpentSeconds int) ExerciseResult {
	return ExerciseResult{
		ID:               uuid.New().String(),
		ProfileID:        profileID,
		ExerciseID:       ex.ID,
		AreaID:           ex.AreaID,
		ThemeID:          ex.ThemeID,
		Level:            ex.Level,
		Correct:          correct,
		Score:            score,
		Attempts:         attempts,
		TimeSpentSeconds: timeSpentSeconds,
		CompletedAt:      time.Now(),
	}
}
