package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/lernwerk/trainer/internal/domain"
)

// Store implements profile and result persistence backed by SQLite.
// A correct result is stored at most once per (profile, exercise) pair;
// the partial unique index enforces this at the schema level.
type Store struct {
	db        *DB
	trainerID string
}

// NewStore creates a new SQLite-backed store bound to one trainer identity.
func NewStore(db *DB, trainerID string) *Store {
	return &Store{db: db, trainerID: trainerID}
}

// TrainerID returns the identity this store was opened for.
func (s *Store) TrainerID() string {
	return s.trainerID
}

// SaveProfile persists a profile (insert or update).
func (s *Store) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	currentLevels, err := json.Marshal(p.CurrentLevels)
	if err != nil {
		return fmt.Errorf("marshal current_levels: %w", err)
	}
	themeProgress, err := json.Marshal(p.ThemeProgress)
	if err != nil {
		return fmt.Errorf("marshal theme_progress: %w", err)
	}
	themeLevels, err := json.Marshal(p.ThemeLevels)
	if err != nil {
		return fmt.Errorf("marshal theme_levels: %w", err)
	}
	badges, err := json.Marshal(p.Badges)
	if err != nil {
		return fmt.Errorf("marshal badges: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, nickname, avatar_id, created_at,
			current_levels, total_stars, current_streak, longest_streak,
			last_active_date, theme_progress, theme_levels, badges, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nickname=excluded.nickname,
			avatar_id=excluded.avatar_id,
			current_levels=excluded.current_levels,
			total_stars=excluded.total_stars,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_active_date=excluded.last_active_date,
			theme_progress=excluded.theme_progress,
			theme_levels=excluded.theme_levels,
			badges=excluded.badges,
			updated_at=excluded.updated_at`,
		p.ID, p.Nickname, p.AvatarID, p.CreatedAt,
		string(currentLevels), p.TotalStars, p.CurrentStreak, p.LongestStreak,
		p.LastActiveDate, string(themeProgress), string(themeLevels),
		string(badges), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile retrieves the active profile, which is the most recently
// updated one. Returns domain.ErrProfileNotFound when none exists.
func (s *Store) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, nickname, avatar_id, created_at,
			current_levels, total_stars, current_streak, longest_streak,
			last_active_date, theme_progress, theme_levels, badges
		FROM profiles ORDER BY updated_at DESC LIMIT 1`)

	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var currentLevels, themeProgress, themeLevels, badges string

	err := row.Scan(&p.ID, &p.Nickname, &p.AvatarID, &p.CreatedAt,
		&currentLevels, &p.TotalStars, &p.CurrentStreak, &p.LongestStreak,
		&p.LastActiveDate, &themeProgress, &themeLevels, &badges)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if err := json.Unmarshal([]byte(currentLevels), &p.CurrentLevels); err != nil {
		return nil, fmt.Errorf("unmarshal current_levels: %w", err)
	}
	if err := json.Unmarshal([]byte(themeProgress), &p.ThemeProgress); err != nil {
		return nil, fmt.Errorf("unmarshal theme_progress: %w", err)
	}
	if err := json.Unmarshal([]byte(themeLevels), &p.ThemeLevels); err != nil {
		return nil, fmt.Errorf("unmarshal theme_levels: %w", err)
	}
	if err := json.Unmarshal([]byte(badges), &p.Badges); err != nil {
		return nil, fmt.Errorf("unmarshal badges: %w", err)
	}

	return &p, nil
}

// SaveExerciseResult persists one result. A second correct result for the
// same (profile, exercise) pair is rejected with domain.ErrDuplicateResult.
func (s *Store) SaveExerciseResult(ctx context.Context, r domain.ExerciseResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exercise_results (id, profile_id, exercise_id, area_id,
			theme_id, level, correct, score, attempts, time_spent_seconds,
			completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProfileID, r.ExerciseID, r.AreaID,
		r.ThemeID, r.Level, r.Correct, r.Score, r.Attempts,
		r.TimeSpentSeconds, r.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateResult
		}
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// GetAllExerciseResults returns every stored result ordered by completion time.
func (s *Store) GetAllExerciseResults(ctx context.Context) ([]domain.ExerciseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, exercise_id, area_id, theme_id, level,
			correct, score, attempts, time_spent_seconds, completed_at
		FROM exercise_results ORDER BY completed_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetExerciseResultsByTheme returns results for one theme ordered by completion time.
func (s *Store) GetExerciseResultsByTheme(ctx context.Context, themeID string) ([]domain.ExerciseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, exercise_id, area_id, theme_id, level,
			correct, score, attempts, time_spent_seconds, completed_at
		FROM exercise_results WHERE theme_id = ? ORDER BY completed_at ASC`, themeID)
	if err != nil {
		return nil, fmt.Errorf("query results by theme: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]domain.ExerciseResult, error) {
	var results []domain.ExerciseResult
	for rows.Next() {
		var r domain.ExerciseResult
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.ExerciseID, &r.AreaID,
			&r.ThemeID, &r.Level, &r.Correct, &r.Score, &r.Attempts,
			&r.TimeSpentSeconds, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// HasExerciseBeenCompleted reports whether a correct result exists for the
// given profile and exercise.
func (s *Store) HasExerciseBeenCompleted(ctx context.Context, profileID, exerciseID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exercise_results
		WHERE profile_id = ? AND exercise_id = ? AND correct = 1`,
		profileID, exerciseID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return n > 0, nil
}

// ClearAllExerciseResults removes every stored result.
func (s *Store) ClearAllExerciseResults(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM exercise_results"); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the stored profile and all results.
// Used by save-game import after the payload passed every validation gate.
func (s *Store) ReplaceAll(ctx context.Context, p *domain.UserProfile, results []domain.ExerciseResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM exercise_results"); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	currentLevels, err := json.Marshal(p.CurrentLevels)
	if err != nil {
		return fmt.Errorf("marshal current_levels: %w", err)
	}
	themeProgress, err := json.Marshal(p.ThemeProgress)
	if err != nil {
		return fmt.Errorf("marshal theme_progress: %w", err)
	}
	themeLevels, err := json.Marshal(p.ThemeLevels)
	if err != nil {
		return fmt.Errorf("marshal theme_levels: %w", err)
	}
	badges, err := json.Marshal(p.Badges)
	if err != nil {
		return fmt.Errorf("marshal badges: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, nickname, avatar_id, created_at,
			current_levels, total_stars, current_streak, longest_streak,
			last_active_date, theme_progress, theme_levels, badges, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Nickname, p.AvatarID, p.CreatedAt,
		string(currentLevels), p.TotalStars, p.CurrentStreak, p.LongestStreak,
		p.LastActiveDate, string(themeProgress), string(themeLevels),
		string(badges), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exercise_results (id, profile_id, exercise_id, area_id,
			theme_id, level, correct, score, attempts, time_spent_seconds,
			completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, r.ID, r.ProfileID, r.ExerciseID,
			r.AreaID, r.ThemeID, r.Level, r.Correct, r.Score, r.Attempts,
			r.TimeSpentSeconds, r.CompletedAt); err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
