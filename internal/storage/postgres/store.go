// Package postgres implements profile and result persistence on PostgreSQL.
// It mirrors the SQLite store semantics so a trainer deployment can choose
// either backend via configuration.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lernwerk/trainer/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id               TEXT PRIMARY KEY,
	nickname         TEXT NOT NULL,
	avatar_id        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	current_levels   JSONB NOT NULL DEFAULT '{}',
	total_stars      INTEGER NOT NULL DEFAULT 0,
	current_streak   INTEGER NOT NULL DEFAULT 0,
	longest_streak   INTEGER NOT NULL DEFAULT 0,
	last_active_date TEXT NOT NULL DEFAULT '',
	theme_progress   JSONB NOT NULL DEFAULT '{}',
	theme_levels     JSONB NOT NULL DEFAULT '{}',
	badges           JSONB NOT NULL DEFAULT '[]',
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS exercise_results (
	id                 TEXT PRIMARY KEY,
	profile_id         TEXT NOT NULL,
	exercise_id        TEXT NOT NULL,
	area_id            TEXT NOT NULL DEFAULT '',
	theme_id           TEXT NOT NULL DEFAULT '',
	level              INTEGER NOT NULL DEFAULT 1,
	correct            BOOLEAN NOT NULL DEFAULT FALSE,
	score              INTEGER NOT NULL DEFAULT 0,
	attempts           INTEGER NOT NULL DEFAULT 1,
	time_spent_seconds INTEGER NOT NULL DEFAULT 0,
	completed_at       TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_results_correct_once
	ON exercise_results (profile_id, exercise_id)
	WHERE correct;

CREATE INDEX IF NOT EXISTS idx_results_theme
	ON exercise_results (theme_id);
`

// Store implements profile and result persistence backed by PostgreSQL.
type Store struct {
	pool      *pgxpool.Pool
	trainerID string
}

// Connect creates a pgx connection pool and ensures the schema exists.
func Connect(ctx context.Context, databaseURL, trainerID string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool, trainerID: trainerID}, nil
}

// NewStore wraps an existing connection pool. The schema must already exist.
func NewStore(pool *pgxpool.Pool, trainerID string) *Store {
	return &Store{pool: pool, trainerID: trainerID}
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// TrainerID returns the identity this store was opened for.
func (s *Store) TrainerID() string {
	return s.trainerID
}

// SaveProfile persists a profile (insert or update).
func (s *Store) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	currentLevels, themeProgress, themeLevels, badges, err := marshalProfileColumns(p)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO profiles (id, nickname, avatar_id, created_at,
			current_levels, total_stars, current_streak, longest_streak,
			last_active_date, theme_progress, theme_levels, badges, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
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
		currentLevels, p.TotalStars, p.CurrentStreak, p.LongestStreak,
		p.LastActiveDate, themeProgress, themeLevels, badges, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func marshalProfileColumns(p *domain.UserProfile) (currentLevels, themeProgress, themeLevels, badges []byte, err error) {
	if currentLevels, err = json.Marshal(p.CurrentLevels); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal current_levels: %w", err)
	}
	if themeProgress, err = json.Marshal(p.ThemeProgress); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal theme_progress: %w", err)
	}
	if themeLevels, err = json.Marshal(p.ThemeLevels); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal theme_levels: %w", err)
	}
	if badges, err = json.Marshal(p.Badges); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal badges: %w", err)
	}
	return currentLevels, themeProgress, themeLevels, badges, nil
}

// GetProfile retrieves the active profile, which is the most recently
// updated one. Returns domain.ErrProfileNotFound when none exists.
func (s *Store) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, nickname, avatar_id, created_at,
			current_levels, total_stars, current_streak, longest_streak,
			last_active_date, theme_progress, theme_levels, badges
		FROM profiles ORDER BY updated_at DESC LIMIT 1`)

	var p domain.UserProfile
	var currentLevels, themeProgress, themeLevels, badges []byte

	err := row.Scan(&p.ID, &p.Nickname, &p.AvatarID, &p.CreatedAt,
		&currentLevels, &p.TotalStars, &p.CurrentStreak, &p.LongestStreak,
		&p.LastActiveDate, &themeProgress, &themeLevels, &badges)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if err := json.Unmarshal(currentLevels, &p.CurrentLevels); err != nil {
		return nil, fmt.Errorf("unmarshal current_levels: %w", err)
	}
	if err := json.Unmarshal(themeProgress, &p.ThemeProgress); err != nil {
		return nil, fmt.Errorf("unmarshal theme_progress: %w", err)
	}
	if err := json.Unmarshal(themeLevels, &p.ThemeLevels); err != nil {
		return nil, fmt.Errorf("unmarshal theme_levels: %w", err)
	}
	if err := json.Unmarshal(badges, &p.Badges); err != nil {
		return nil, fmt.Errorf("unmarshal badges: %w", err)
	}

	return &p, nil
}

// SaveExerciseResult persists one result. A second correct result for the
// same (profile, exercise) pair is rejected with domain.ErrDuplicateResult.
func (s *Store) SaveExerciseResult(ctx context.Context, r domain.ExerciseResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO exercise_results (id, profile_id, exercise_id, area_id,
			theme_id, level, correct, score, attempts, time_spent_seconds,
			completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
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
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// GetAllExerciseResults returns every stored result ordered by completion time.
func (s *Store) GetAllExerciseResults(ctx context.Context) ([]domain.ExerciseResult, error) {
	rows, err := s.pool.Query(ctx, `
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
	rows, err := s.pool.Query(ctx, `
		SELECT id, profile_id, exercise_id, area_id, theme_id, level,
			correct, score, attempts, time_spent_seconds, completed_at
		FROM exercise_results WHERE theme_id = $1 ORDER BY completed_at ASC`, themeID)
	if err != nil {
		return nil, fmt.Errorf("query results by theme: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]domain.ExerciseResult, error) {
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
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM exercise_results
		WHERE profile_id = $1 AND exercise_id = $2 AND correct`,
		profileID, exerciseID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return n > 0, nil
}

// ClearAllExerciseResults removes every stored result.
func (s *Store) ClearAllExerciseResults(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM exercise_results"); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the stored profile and all results.
// Used by save-game import after the payload passed every validation gate.
func (s *Store) ReplaceAll(ctx context.Context, p *domain.UserProfile, results []domain.ExerciseResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM exercise_results"); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	currentLevels, themeProgress, themeLevels, badges, err := marshalProfileColumns(p)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, nickname, avatar_id, created_at,
			current_levels, total_stars, current_streak, longest_streak,
			last_active_date, theme_progress, theme_levels, badges, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Nickname, p.AvatarID, p.CreatedAt,
		currentLevels, p.TotalStars, p.CurrentStreak, p.LongestStreak,
		p.LastActiveDate, themeProgress, themeLevels, badges, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	for _, r := range results {
		if _, err := tx.Exec(ctx, `
			INSERT INTO exercise_results (id, profile_id, exercise_id, area_id,
				theme_id, level, correct, score, attempts, time_spent_seconds,
				completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			r.ID, r.ProfileID, r.ExerciseID, r.AreaID, r.ThemeID, r.Level,
			r.Correct, r.Score, r.Attempts, r.TimeSpentSeconds,
			r.CompletedAt); err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
