// Package session implements the per-level exercise session state
// machine: attempts, retry limits, exactly-once completion and the
// buffered result flush at session end.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/lernwerk/trainer/internal/domain"
	"github.com/lernwerk/trainer/internal/scoring"
)

// Rejection reasons returned in SubmitOutcome and AdvanceOutcome.
const (
	ReasonDuplicate = "duplicate"
	ReasonNoSession = "no_session"
	ReasonLocked    = "locked"
)

// Answer is the session-scoped attempt state for the current exercise.
// It is created on the first attempt, mutated on each retry and discarded
// on exercise transition.
type Answer struct {
	Correct          bool `json:"correct"`
	Attempts         int  `json:"attempts"`
	TimeSpentSeconds int  `json:"timeSpentSeconds"`
	Stars            int  `json:"stars"`
}

// Stats accumulates per-session counters. They are cleared on restart and
// at session end; the persistent profile is never touched from here.
type Stats struct {
	ExercisesCompleted int `json:"exercisesCompleted"`
	CorrectAnswers     int `json:"correctAnswers"`
	StarsEarned        int `json:"starsEarned"`
	TimeSpentSeconds   int `json:"timeSpentSeconds"`
}

// SubmitOutcome reports what a SubmitAnswer call did. Expected UI races
// (double submission, no active session) come back as Accepted=false with
// a reason, never as an error.
type SubmitOutcome struct {
	Accepted     bool   `json:"accepted"`
	Reason       string `json:"reason,omitempty"`
	Correct      bool   `json:"correct"`
	Stars        int    `json:"stars"`
	AttemptsUsed int    `json:"attemptsUsed"`
	LevelFailed  bool   `json:"levelFailed"`
	ShowSolution bool   `json:"showSolution"`
}

// Engine is the session state machine. It runs on a single goroutine
// (UI event callbacks); the advancing flag guards against re-entrant
// advance calls firing award side effects twice.
type Engine struct {
	store       Store
	logger      *slog.Logger
	maxAttempts int
	retrier     retry.Retry[struct{}]
	now         func() time.Time

	exercises []domain.Exercise
	themeID   string
	areaID    string
	profileID string

	index         int
	active        bool
	completed     bool
	answer        *Answer
	levelFailed   bool
	showSolution  bool
	completedIDs  map[string]struct{}
	buffer        []domain.ExerciseResult
	stats         Stats
	sessionStart  time.Time
	exerciseStart time.Time
	advancing     bool
}

// NewEngine creates a session engine flushing to the given store.
func NewEngine(store Store, maxAttempts int, logger *slog.Logger) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = scoring.DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:       store,
		logger:      logger,
		maxAttempts: maxAttempts,
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   3,
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
		}),
		now:          time.Now,
		completedIDs: make(map[string]struct{}),
	}
}

// StartSession resets all session-scoped state and loads the first
// exercise. An empty queue is rejected silently: the previous state is
// kept and nothing starts.
func (e *Engine) StartSession(exercises []domain.Exercise, themeID, areaID, profileID string) {
	if len(exercises) == 0 {
		e.logger.Debug("start session skipped: empty exercise queue", "theme_id", themeID)
		return
	}

	now := e.now()
	e.exercises = exercises
	e.themeID = themeID
	e.areaID = areaID
	e.profileID = profileID
	e.index = 0
	e.active = true
	e.completed = false
	e.answer = nil
	e.levelFailed = false
	e.showSolution = false
	e.completedIDs = make(map[string]struct{})
	e.buffer = nil
	e.stats = Stats{}
	e.sessionStart = now
	e.exerciseStart = now
	e.advancing = false

	e.logger.Info("session started",
		"theme_id", themeID,
		"area_id", areaID,
		"exercises", len(exercises),
	)
}

// CurrentExercise returns the active exercise, or nil when there is no
// session or everything has been worked through.
func (e *Engine) CurrentExercise() *domain.Exercise {
	if !e.active || e.completed || e.index >= len(e.exercises) {
		return nil
	}
	ex := e.exercises[e.index]
	return &ex
}

// SubmitAnswer scores one submission for the current exercise.
func (e *Engine) SubmitAnswer(correct bool) SubmitOutcome {
	cur := e.CurrentExercise()
	if cur == nil {
		return SubmitOutcome{Reason: ReasonNoSession}
	}
	if e.levelFailed || e.showSolution {
		return SubmitOutcome{Reason: ReasonLocked, LevelFailed: e.levelFailed, ShowSolution: e.showSolution}
	}
	if _, done := e.completedIDs[cur.ID]; done {
		return SubmitOutcome{Reason: ReasonDuplicate}
	}

	if e.answer == nil {
		e.answer = &Answer{}
	}
	e.answer.Attempts++
	e.answer.Correct = correct
	e.answer.TimeSpentSeconds = int(e.now().Sub(e.exerciseStart).Seconds())

	out := SubmitOutcome{Accepted: true, Correct: correct, AttemptsUsed: e.answer.Attempts}

	if correct {
		stars := scoring.StarsForAttempts(e.answer.Attempts, e.maxAttempts)
		e.answer.Stars = stars
		e.completedIDs[cur.ID] = struct{}{}

		result := domain.NewExerciseResult(e.profileID, *cur, true, stars, e.answer.Attempts, e.answer.TimeSpentSeconds)
		e.buffer = append(e.buffer, result)

		e.stats.ExercisesCompleted++
		e.stats.CorrectAnswers++
		e.stats.StarsEarned += stars
		e.stats.TimeSpentSeconds += e.answer.TimeSpentSeconds

		out.Stars = stars
		return out
	}

	if e.answer.Attempts >= e.maxAttempts {
		e.levelFailed = true
		e.showSolution = true
		out.LevelFailed = true
		out.ShowSolution = true
		e.logger.Info("level failed", "exercise_id", cur.ID, "attempts", e.answer.Attempts)
	}
	return out
}

// NextExercise advances to the next exercise. Past the end of the queue
// the session flips to complete and nil is returned; callers treat a nil
// current exercise as nothing left to render.
func (e *Engine) NextExercise() *domain.Exercise {
	if !e.active || e.completed {
		return nil
	}

	e.index++
	e.answer = nil
	e.exerciseStart = e.now()

	if e.index >= len(e.exercises) {
		e.completed = true
		e.logger.Info("session complete",
			"theme_id", e.themeID,
			"completed", e.stats.ExercisesCompleted,
			"stars", e.stats.StarsEarned,
		)
		return nil
	}

	ex := e.exercises[e.index]
	return &ex
}

// AwardFunc runs the gamification side effects for a completed exercise.
// It receives the attempt count the exercise was solved on.
type AwardFunc func(ctx context.Context, attempts int) error

// CompleteAndAdvance runs the award side effects for the just-solved
// exercise and moves on. The sequence fires at most once per exercise:
// a re-entrant call while the first is still running is a no-op, and a
// late second call finds the answer already discarded.
func (e *Engine) CompleteAndAdvance(ctx context.Context, award AwardFunc) *domain.Exercise {
	if e.advancing {
		return e.CurrentExercise()
	}
	e.advancing = true
	defer func() { e.advancing = false }()

	if e.answer == nil || !e.answer.Correct {
		return e.CurrentExercise()
	}

	if award != nil {
		if err := award(ctx, e.answer.Attempts); err != nil {
			e.logger.Warn("award side effects failed", "error", err)
		}
	}

	return e.NextExercise()
}

// RestartLevel re-enters the session at the first exercise with all
// session-scoped state cleared. Stars already granted to the profile for
// exercises completed earlier in the failed run are not rolled back.
func (e *Engine) RestartLevel() {
	if !e.active {
		return
	}

	now := e.now()
	e.index = 0
	e.completed = false
	e.answer = nil
	e.levelFailed = false
	e.showSolution = false
	e.completedIDs = make(map[string]struct{})
	e.buffer = nil
	e.stats = Stats{}
	e.sessionStart = now
	e.exerciseStart = now

	e.logger.Info("level restarted", "theme_id", e.themeID)
}

// EndSession flushes every buffered result to storage and clears all
// session state. Flushing is best-effort: a result that cannot be
// persisted after retries is logged and skipped, the rest still go out.
func (e *Engine) EndSession(ctx context.Context) Stats {
	stats := e.stats

	for _, r := range e.buffer {
		result := r
		_, err := e.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, e.store.SaveExerciseResult(ctx, result)
		})
		if err != nil {
			e.logger.Warn("failed to persist exercise result",
				"exercise_id", result.ExerciseID,
				"error", err,
			)
		}
	}

	e.logger.Info("session ended",
		"theme_id", e.themeID,
		"flushed", len(e.buffer),
		"stars", stats.StarsEarned,
	)

	e.exercises = nil
	e.index = 0
	e.active = false
	e.completed = false
	e.answer = nil
	e.levelFailed = false
	e.showSolution = false
	e.completedIDs = make(map[string]struct{})
	e.buffer = nil
	e.stats = Stats{}

	return stats
}

// Accessors for UI consumers.

func (e *Engine) Active() bool         { return e.active }
func (e *Engine) IsCompleted() bool    { return e.completed }
func (e *Engine) LevelFailed() bool    { return e.levelFailed }
func (e *Engine) ShowSolution() bool   { return e.showSolution }
func (e *Engine) Stats() Stats         { return e.stats }
func (e *Engine) Answer() *Answer      { return e.answer }
func (e *Engine) BufferedResults() int { return len(e.buffer) }

// Progress returns the 1-based position and queue length.
func (e *Engine) Progress() (int, int) {
	if !e.active {
		return 0, 0
	}
	pos := e.index + 1
	if pos > len(e.exercises) {
		pos = len(e.exercises)
	}
	return pos, len(e.exercises)
}
