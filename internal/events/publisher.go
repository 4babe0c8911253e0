package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher publishes progress events. A nil *Publisher is valid and
// publishes nothing, so callers never need to branch on configuration.
type Publisher struct {
	conn *Connection
}

// NewPublisher creates a publisher on an established connection.
func NewPublisher(conn *Connection) *Publisher {
	return &Publisher{conn: conn}
}

// Publish sends one progress event, stamping ID and time if unset.
func (p *Publisher) Publish(ctx context.Context, ev ProgressEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	if err := p.conn.PublishJSON(ctx, ProgressQueueName, ev); err != nil {
		return fmt.Errorf("failed to publish progress event: %w", err)
	}

	slog.Debug("published progress event",
		"event_id", ev.ID,
		"type", ev.Type,
		"profile_id", ev.ProfileID,
	)
	return nil
}

// ExerciseCompleted publishes an exercise.completed event.
func (p *Publisher) ExerciseCompleted(ctx context.Context, profileID, exerciseID, themeID string, stars int) error {
	return p.Publish(ctx, ProgressEvent{
		Type:       TypeExerciseCompleted,
		ProfileID:  profileID,
		ExerciseID: exerciseID,
		ThemeID:    themeID,
		Stars:      stars,
	})
}

// LevelUp publishes a level.up event.
func (p *Publisher) LevelUp(ctx context.Context, profileID string, level int) error {
	return p.Publish(ctx, ProgressEvent{
		Type:      TypeLevelUp,
		ProfileID: profileID,
		Level:     level,
	})
}

// BadgeEarned publishes a badge.earned event.
func (p *Publisher) BadgeEarned(ctx context.Context, profileID, badgeID string) error {
	return p.Publish(ctx, ProgressEvent{
		Type:      TypeBadgeEarned,
		ProfileID: profileID,
		BadgeID:   badgeID,
	})
}

// ProfileImported publishes a profile.imported event after a save-game
// import replaced the profile.
func (p *Publisher) ProfileImported(ctx context.Context, profileID string) error {
	return p.Publish(ctx, ProgressEvent{
		Type:      TypeProfileImported,
		ProfileID: profileID,
	})
}
