package savegame

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lernwerk/trainer/internal/domain"
)

// fakeStore implements the codec's narrow store slice.
type fakeStore struct {
	trainerID string
	profile   *domain.UserProfile
	results   []domain.ExerciseResult
	replaced  bool
}

func (s *fakeStore) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	if s.profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *fakeStore) GetAllExerciseResults(ctx context.Context) ([]domain.ExerciseResult, error) {
	return s.results, nil
}

func (s *fakeStore) ReplaceAll(ctx context.Context, p *domain.UserProfile, results []domain.ExerciseResult) error {
	s.profile = p
	s.results = results
	s.replaced = true
	return nil
}

func (s *fakeStore) TrainerID() string { return s.trainerID }

func testProfile() *domain.UserProfile {
	return &domain.UserProfile{
		ID:             "p1",
		Nickname:       "Kim",
		AvatarID:       "fox",
		CreatedAt:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		CurrentLevels:  map[string]int{"math": 2},
		TotalStars:     100,
		CurrentStreak:  5,
		LongestStreak:  9,
		LastActiveDate: "2025-03-10",
		ThemeProgress: map[string]domain.ThemeProgress{
			"fractions": {Unlocked: true, ExercisesCompleted: 4, ExercisesTotal: 12, StarsEarned: 10, MaxStars: 36},
		},
		ThemeLevels: map[string]int{"fractions": 1},
		Badges: []domain.Badge{
			{ID: "first-star", Name: "Erster Stern", Icon: "star", EarnedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
}

func testResults() []domain.ExerciseResult {
	return []domain.ExerciseResult{
		{
			ID: "r1", ProfileID: "p1", ExerciseID: "ex-1", AreaID: "math", ThemeID: "fractions",
			Level: 1, Correct: true, Score: 3, Attempts: 1, TimeSpentSeconds: 40,
			CompletedAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: "r2", ProfileID: "p1", ExerciseID: "ex-2", AreaID: "math", ThemeID: "fractions",
			Level: 1, Correct: true, Score: 2, Attempts: 2, TimeSpentSeconds: 95,
			CompletedAt: time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC),
		},
	}
}

func newTestCodec(store *fakeStore) *Codec {
	c := NewCodec(store, nil)
	c.now = func() time.Time { return time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC) }
	return c
}

func importErr(t *testing.T, err error) *ImportError {
	t.Helper()
	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("error %v is not an ImportError", err)
	}
	return ie
}

func TestExport_EmbedsChecksumAndVersion(t *testing.T) {
	store := &fakeStore{trainerID: "mathe-trainer", profile: testProfile(), results: testResults()}
	c := newTestCodec(store)

	payload, err := c.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if payload.Version != 3 {
		t.Errorf("Version = %d; want 3", payload.Version)
	}
	if payload.TrainerID != "mathe-trainer" {
		t.Errorf("TrainerID = %q", payload.TrainerID)
	}
	if len(payload.Checksum) != 64 {
		t.Errorf("Checksum length = %d; want 64 hex chars", len(payload.Checksum))
	}

	want, _ := Checksum(payload.TrainerID, payload.Profile, payload.ExerciseResults)
	if payload.Checksum != want {
		t.Error("embedded checksum does not match recomputation")
	}
}

func TestImport_RoundTrip(t *testing.T) {
	source := &fakeStore{trainerID: "mathe-trainer", profile: testProfile(), results: testResults()}
	data, _, err := newTestCodec(source).ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	target := &fakeStore{trainerID: "mathe-trainer"}
	imported, err := newTestCodec(target).Import(context.Background(), data)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if !target.replaced {
		t.Fatal("store.ReplaceAll was not called")
	}
	if imported.ID != "p1" || imported.Nickname != "Kim" || imported.TotalStars != 100 {
		t.Errorf("imported profile = %+v", imported)
	}
	if imported.CurrentLevels["math"] != 2 || imported.ThemeLevels["fractions"] != 1 {
		t.Errorf("level maps not restored: %+v", imported)
	}
	tp := imported.ThemeProgress["fractions"]
	if tp.ExercisesCompleted != 4 || tp.MaxStars != 36 {
		t.Errorf("theme progress not restored: %+v", tp)
	}
	if len(imported.Badges) != 1 || imported.Badges[0].ID != "first-star" {
		t.Errorf("badges not restored: %+v", imported.Badges)
	}
	if len(target.results) != 2 || target.results[0].ID != "r1" {
		t.Errorf("results not restored: %+v", target.results)
	}
	if !target.results[0].CompletedAt.Equal(testResults()[0].CompletedAt) {
		t.Errorf("timestamps not restored: %+v", target.results[0].CompletedAt)
	}
}

func TestImport_TamperDetection(t *testing.T) {
	source := &fakeStore{trainerID: "mathe-trainer", profile: testProfile(), results: testResults()}
	data, _, err := newTestCodec(source).ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	// Flip the star total after export, keeping the original checksum.
	tampered := strings.Replace(string(data), `"totalStars": 100`, `"totalStars": 999`, 1)
	if tampered == string(data) {
		t.Fatal("fixture: tampering had no effect")
	}

	target := &fakeStore{trainerID: "mathe-trainer"}
	_, err = newTestCodec(target).Import(context.Background(), []byte(tampered))

	ie := importErr(t, err)
	if ie.Gate != GateIntegrity {
		t.Errorf("Gate = %s; want integrity", ie.Gate)
	}
	if target.replaced {
		t.Error("no mutation may be applied on a failed import")
	}
}

func TestImport_TenantIsolation(t *testing.T) {
	source := &fakeStore{trainerID: "mathe-trainer", profile: testProfile(), results: testResults()}
	data, _, err := newTestCodec(source).ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	target := &fakeStore{trainerID: "deutsch-trainer"}
	_, err = newTestCodec(target).Import(context.Background(), data)

	ie := importErr(t, err)
	if ie.Gate != GateTenant {
		t.Errorf("Gate = %s; want tenant", ie.Gate)
	}
	if !strings.Contains(ie.Reason, "mathe-trainer") {
		t.Errorf("Reason = %q; want both trainer ids named", ie.Reason)
	}
}

func TestImport_WrongVersion(t *testing.T) {
	source := &fakeStore{trainerID: "mathe-trainer", profile: testProfile(), results: testResults()}
	payload, err := newTestCodec(source).Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	payload.Version = 2
	data, _ := json.Marshal(payload)

	_, err = newTestCodec(source).Import(context.Background(), data)

	ie := importErr(t, err)
	if ie.Gate != GateShape {
		t.Errorf("Gate = %s; want shape", ie.Gate)
	}
}

func TestImport_MissingNickname(t *testing.T) {
	source := &fakeStore{trainerID: "mathe-trainer", profile: testProfile(), results: testResults()}
	payload, err := newTestCodec(source).Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	payload.Profile.Nickname = ""
	data, _ := json.Marshal(payload)

	_, err = newTestCodec(source).Import(context.Background(), data)

	ie := importErr(t, err)
	if ie.Gate != GateShape {
		t.Errorf("Gate = %s; want shape", ie.Gate)
	}
}

func TestImport_NotJSON(t *testing.T) {
	store := &fakeStore{trainerID: "mathe-trainer"}
	_, err := newTestCodec(store).Import(context.Background(), []byte("definitely not json"))

	ie := importErr(t, err)
	if ie.Gate != GateShape {
		t.Errorf("Gate = %s; want shape", ie.Gate)
	}
}

func TestImport_RangeGateImplausibleStars(t *testing.T) {
	profile := testProfile()
	profile.TotalStars = 2_000_000
	payload := &Payload{
		Version:         Version,
		SavedAt:         time.Now(),
		TrainerID:       "mathe-trainer",
		Profile:         profile,
		ExerciseResults: testResults(),
	}
	// Valid checksum over implausible values: only the range gate can
	// catch this.
	payload.Checksum, _ = Checksum(payload.TrainerID, payload.Profile, payload.ExerciseResults)
	data, _ := json.Marshal(payload)

	target := &fakeStore{trainerID: "mathe-trainer"}
	_, err := newTestCodec(target).Import(context.Background(), data)

	ie := importErr(t, err)
	if ie.Gate != GateRange {
		t.Fatalf("Gate = %s; want range", ie.Gate)
	}
	if !strings.Contains(ie.Reason, "totalStars") {
		t.Errorf("Reason = %q; want totalStars named", ie.Reason)
	}
	if target.replaced {
		t.Error("no mutation may be applied on a failed import")
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	a, err := Checksum("t", testProfile(), testResults())
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	b, _ := Checksum("t", testProfile(), testResults())

	if a != b {
		t.Error("checksum not deterministic for equal input")
	}

	c, _ := Checksum("other", testProfile(), testResults())
	if a == c {
		t.Error("checksum must depend on trainer id")
	}
}

func TestFilename(t *testing.T) {
	savedAt := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		nickname string
		want     string
	}{
		{"Kim", "spielstand-kim-2025-03-11.json"},
		{"Lara Marie", "spielstand-lara-marie-2025-03-11.json"},
		{"  ", "spielstand-profil-2025-03-11.json"},
	}

	for _, tt := range tests {
		if got := Filename(tt.nickname, savedAt); got != tt.want {
			t.Errorf("Filename(%q) = %q; want %q", tt.nickname, got, tt.want)
		}
	}
}
