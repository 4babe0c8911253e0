// Package exercise loads exercise packs from YAML files and serves them
// from an in-memory registry. Exercise content is an opaque payload; the
// loader validates identity and placement only.
package exercise

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lernwerk/trainer/internal/domain"
	"gopkg.in/yaml.v3"
)

// PackFile represents the YAML structure for an exercise pack.
type PackFile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	AreaID      string   `yaml:"area_id"`
	Exercises   []string `yaml:"exercises"`
}

// ExerciseFile represents the YAML structure for a single exercise.
type ExerciseFile struct {
	ID      string         `yaml:"id"`
	AreaID  string         `yaml:"area_id"`
	ThemeID string         `yaml:"theme_id"`
	Level   int            `yaml:"level"`
	Content map[string]any `yaml:"content"`
}

// Loader handles loading packs and exercises from YAML files.
type Loader struct {
	basePath string
}

// NewLoader creates a loader rooted at basePath. Each pack lives in its
// own directory containing a pack.yaml plus one YAML file per exercise.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// LoadPack loads an exercise pack definition.
func (l *Loader) LoadPack(packID string) (*domain.ExercisePack, error) {
	packPath := filepath.Join(l.basePath, packID, "pack.yaml")

	data, err := os.ReadFile(packPath)
	if err != nil {
		return nil, fmt.Errorf("read pack file: %w", err)
	}

	var packFile PackFile
	if err := yaml.Unmarshal(data, &packFile); err != nil {
		return nil, fmt.Errorf("parse pack file: %w", err)
	}

	if packFile.ID == "" {
		return nil, fmt.Errorf("pack %s: id is required", packID)
	}
	if packFile.AreaID == "" {
		return nil, fmt.Errorf("pack %s: area_id is required", packID)
	}

	return &domain.ExercisePack{
		ID:          packFile.ID,
		Name:        packFile.Name,
		Version:     packFile.Version,
		Description: packFile.Description,
		AreaID:      packFile.AreaID,
	}, nil
}

// LoadPackExercises loads every exercise listed by a pack. Exercises
// inherit the pack's area when they do not set their own.
func (l *Loader) LoadPackExercises(packID string) ([]domain.Exercise, error) {
	packPath := filepath.Join(l.basePath, packID, "pack.yaml")

	data, err := os.ReadFile(packPath)
	if err != nil {
		return nil, fmt.Errorf("read pack file: %w", err)
	}

	var packFile PackFile
	if err := yaml.Unmarshal(data, &packFile); err != nil {
		return nil, fmt.Errorf("parse pack file: %w", err)
	}

	exercises := make([]domain.Exercise, 0, len(packFile.Exercises))
	for _, slug := range packFile.Exercises {
		ex, err := l.loadExercise(packID, slug, packFile.AreaID)
		if err != nil {
			return nil, fmt.Errorf("load exercise %s/%s: %w", packID, slug, err)
		}
		exercises = append(exercises, ex)
	}

	return exercises, nil
}

func (l *Loader) loadExercise(packID, slug, packAreaID string) (domain.Exercise, error) {
	path := filepath.Join(l.basePath, packID, slug+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Exercise{}, fmt.Errorf("read exercise file: %w", err)
	}

	var file ExerciseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Exercise{}, fmt.Errorf("parse exercise file: %w", err)
	}

	if file.ID == "" {
		return domain.Exercise{}, fmt.Errorf("id is required")
	}
	if file.ThemeID == "" {
		return domain.Exercise{}, fmt.Errorf("theme_id is required")
	}
	if file.Level <= 0 {
		file.Level = 1
	}
	if file.AreaID == "" {
		file.AreaID = packAreaID
	}

	return domain.Exercise{
		ID:      file.ID,
		AreaID:  file.AreaID,
		ThemeID: file.ThemeID,
		Level:   file.Level,
		Content: file.Content,
	}, nil
}

// ListPacks returns the IDs of all pack directories under the base path.
func (l *Loader) ListPacks() ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("read packs dir: %w", err)
	}

	var packs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(l.basePath, entry.Name(), "pack.yaml")); err == nil {
			packs = append(packs, entry.Name())
		}
	}
	return packs, nil
}
