package exercise

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lernwerk/trainer/internal/domain"
)

// Registry provides access to loaded packs and exercises.
type Registry struct {
	loader    *Loader
	mu        sync.RWMutex
	packs     map[string]*domain.ExercisePack
	exercises map[string]domain.Exercise
	byTheme   map[string][]domain.Exercise
	loaded    bool
}

// NewRegistry creates a new exercise registry.
func NewRegistry(loader *Loader) *Registry {
	return &Registry{
		loader:    loader,
		packs:     make(map[string]*domain.ExercisePack),
		exercises: make(map[string]domain.Exercise),
		byTheme:   make(map[string][]domain.Exercise),
	}
}

// Load loads all packs and exercises into memory.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	packIDs, err := r.loader.ListPacks()
	if err != nil {
		return fmt.Errorf("list packs: %w", err)
	}

	for _, packID := range packIDs {
		pack, err := r.loader.LoadPack(packID)
		if err != nil {
			return fmt.Errorf("load pack %s: %w", packID, err)
		}
		r.packs[pack.ID] = pack

		exercises, err := r.loader.LoadPackExercises(packID)
		if err != nil {
			return fmt.Errorf("load exercises for pack %s: %w", packID, err)
		}

		for _, ex := range exercises {
			r.exercises[ex.ID] = ex
			r.byTheme[ex.ThemeID] = append(r.byTheme[ex.ThemeID], ex)
		}
	}

	r.loaded = true
	return nil
}

// Reload clears and reloads all packs.
func (r *Registry) Reload() error {
	r.mu.Lock()
	r.packs = make(map[string]*domain.ExercisePack)
	r.exercises = make(map[string]domain.Exercise)
	r.byTheme = make(map[string][]domain.Exercise)
	r.loaded = false
	r.mu.Unlock()

	return r.Load()
}

// Get returns an exercise by ID.
func (r *Registry) Get(id string) (domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ex, ok := r.exercises[id]
	if !ok {
		return domain.Exercise{}, fmt.Errorf("exercise not found: %s", id)
	}
	return ex, nil
}

// ByTheme returns all exercises of a theme, level-sorted.
func (r *Registry) ByTheme(themeID string) []domain.Exercise {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exercises := make([]domain.Exercise, len(r.byTheme[themeID]))
	copy(exercises, r.byTheme[themeID])
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].Level < exercises[j].Level
	})
	return exercises
}

// ByThemeAndLevel returns the exercises of one theme at one level.
func (r *Registry) ByThemeAndLevel(themeID string, level int) []domain.Exercise {
	var out []domain.Exercise
	for _, ex := range r.ByTheme(themeID) {
		if ex.Level == level {
			out = append(out, ex)
		}
	}
	return out
}

// Packs returns all loaded packs.
func (r *Registry) Packs() []*domain.ExercisePack {
	r.mu.RLock()
	defer r.mu.RUnlock()

	packs := make([]*domain.ExercisePack, 0, len(r.packs))
	for _, p := range r.packs {
		packs = append(packs, p)
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].ID < packs[j].ID })
	return packs
}

// ThemeTotals returns the exercise count per theme, used to size theme
// progress.
func (r *Registry) ThemeTotals() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]int, len(r.byTheme))
	for themeID, exercises := range r.byTheme {
		totals[themeID] = len(exercises)
	}
	return totals
}

// Count returns the number of loaded exercises.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exercises)
}
