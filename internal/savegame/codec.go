// Package savegame implements the versioned, checksummed export/import
// format for full progress snapshots. Import is a strict gate pipeline:
// shape, tenant, integrity, value ranges; nothing is mutated until every
// gate has passed.
package savegame

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lernwerk/trainer/internal/domain"
	"github.com/lernwerk/trainer/internal/events"
)

// Version is the only save-game schema version this build reads or
// writes. There are no compatibility shims for other versions.
const Version = 3

// Payload is the on-disk save-game artifact.
type Payload struct {
	Version         int                     `json:"version"`
	SavedAt         time.Time               `json:"savedAt"`
	TrainerID       string                  `json:"trainerId"`
	Checksum        string                  `json:"checksum"`
	Profile         *domain.UserProfile     `json:"profile"`
	ExerciseResults []domain.ExerciseResult `json:"exerciseResults"`
}

// Store is the slice of the storage collaborator the codec needs.
type Store interface {
	GetProfile(ctx context.Context) (*domain.UserProfile, error)
	GetAllExerciseResults(ctx context.Context) ([]domain.ExerciseResult, error)
	ReplaceAll(ctx context.Context, p *domain.UserProfile, results []domain.ExerciseResult) error
	TrainerID() string
}

// Codec exports and imports save games against a storage collaborator.
type Codec struct {
	store     Store
	logger    *slog.Logger
	publisher *events.Publisher
	now       func() time.Time
}

// NewCodec creates a codec over the given store.
func NewCodec(store Store, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetPublisher wires an optional progress-event publisher.
func (c *Codec) SetPublisher(p *events.Publisher) {
	c.publisher = p
}

// Export snapshots the profile and full result history into a payload
// with an embedded content digest.
func (c *Codec) Export(ctx context.Context) (*Payload, error) {
	profile, err := c.store.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	results, err := c.store.GetAllExerciseResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exercise results: %w", err)
	}
	if results == nil {
		results = []domain.ExerciseResult{}
	}

	trainerID := c.store.TrainerID()
	checksum, err := Checksum(trainerID, profile, results)
	if err != nil {
		return nil, fmt.Errorf("compute checksum: %w", err)
	}

	payload := &Payload{
		Version:         Version,
		SavedAt:         c.now(),
		TrainerID:       trainerID,
		Checksum:        checksum,
		Profile:         profile,
		ExerciseResults: results,
	}

	c.logger.Info("save game exported",
		"profile_id", profile.ID,
		"results", len(results),
	)
	return payload, nil
}

// ExportJSON exports and serializes the payload, returning the JSON
// bytes and the suggested filename.
func (c *Codec) ExportJSON(ctx context.Context) ([]byte, string, error) {
	payload, err := c.Export(ctx)
	if err != nil {
		return nil, "", err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal save game: %w", err)
	}

	return data, Filename(payload.Profile.Nickname, payload.SavedAt), nil
}

// Import runs the four-gate validation pipeline on raw save-game bytes
// and, only if every gate passes, atomically replaces the stored profile
// and result history. Failures come back as *ImportError with the gate
// that rejected and a user-facing reason.
func (c *Codec) Import(ctx context.Context, data []byte) (*domain.UserProfile, error) {
	// Gate 1: shape.
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ImportError{Gate: GateShape, Reason: fmt.Sprintf("file is not a valid save game: %v", err)}
	}
	if err := checkShape(&payload); err != nil {
		return nil, err
	}

	// Gate 2: tenant.
	own := c.store.TrainerID()
	if payload.TrainerID != own {
		return nil, &ImportError{
			Gate:   GateTenant,
			Reason: fmt.Sprintf("save game belongs to trainer %q, this trainer is %q", payload.TrainerID, own),
		}
	}

	// Gate 3: integrity.
	computed, err := Checksum(payload.TrainerID, payload.Profile, payload.ExerciseResults)
	if err != nil {
		return nil, &ImportError{Gate: GateIntegrity, Reason: fmt.Sprintf("checksum could not be computed: %v", err)}
	}
	if computed != payload.Checksum {
		return nil, &ImportError{Gate: GateIntegrity, Reason: "checksum mismatch: the file was modified after export"}
	}

	// Gate 4: value ranges.
	if issues := validateRanges(&payload, c.now()); len(issues) > 0 {
		return nil, &ImportError{
			Gate:   GateRange,
			Reason: fmt.Sprintf("%d value(s) outside plausible ranges, first: %s", len(issues), issues[0].Message),
			Issues: issues,
		}
	}

	if err := c.store.ReplaceAll(ctx, payload.Profile, payload.ExerciseResults); err != nil {
		return nil, fmt.Errorf("apply import: %w", err)
	}

	if err := c.publisher.ProfileImported(ctx, payload.Profile.ID); err != nil {
		c.logger.Warn("failed to publish profile imported", "error", err)
	}

	c.logger.Info("save game imported",
		"profile_id", payload.Profile.ID,
		"results", len(payload.ExerciseResults),
	)
	return payload.Profile, nil
}

// checkShape enforces gate 1.
func checkShape(p *Payload) error {
	reject := func(reason string) error {
		return &ImportError{Gate: GateShape, Reason: reason}
	}

	if p.Version != Version {
		return reject(fmt.Sprintf("unsupported save game version %d, expected %d", p.Version, Version))
	}
	if p.TrainerID == "" {
		return reject("trainerId is missing")
	}
	if p.Checksum == "" {
		return reject("checksum is missing")
	}
	if p.Profile == nil {
		return reject("profile is missing")
	}
	if p.Profile.ID == "" {
		return reject("profile id is missing")
	}
	if p.Profile.Nickname == "" {
		return reject("profile nickname is missing")
	}
	return nil
}

// checksumContent fixes the field order the digest is computed over.
type checksumContent struct {
	TrainerID       string                  `json:"trainerId"`
	Profile         *domain.UserProfile     `json:"profile"`
	ExerciseResults []domain.ExerciseResult `json:"exerciseResults"`
}

// Checksum computes the SHA-256 hex digest over the canonical JSON of
// trainer identity, profile and result history.
func Checksum(trainerID string, profile *domain.UserProfile, results []domain.ExerciseResult) (string, error) {
	if results == nil {
		results = []domain.ExerciseResult{}
	}
	data, err := json.Marshal(checksumContent{
		TrainerID:       trainerID,
		Profile:         profile,
		ExerciseResults: results,
	})
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// Filename builds the suggested export filename,
// spielstand-{nickname}-{yyyy-mm-dd}.json.
func Filename(nickname string, savedAt time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(nickname))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "profil"
	}
	return fmt.Sprintf("spielstand-%s-%s.json", slug, savedAt.Format("2006-01-02"))
}
