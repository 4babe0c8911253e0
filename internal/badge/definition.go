// Package badge evaluates data-only badge definitions against a profile
// snapshot. Definitions carry a tagged predicate (type + threshold)
// instead of executable checks, so they can live in config files.
package badge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Type tags the predicate a definition is evaluated with.
type Type string

const (
	TypeStars  Type = "stars"  // total stars >= threshold
	TypeStreak Type = "streak" // current streak >= threshold
	TypeLevel  Type = "level"  // overall level >= threshold
)

// Definition describes one earnable badge.
type Definition struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Type        Type   `yaml:"type" json:"type"`
	Threshold   int    `yaml:"threshold" json:"threshold"`
}

// definitionsFile is the YAML structure for a badge definitions file.
type definitionsFile struct {
	Badges []Definition `yaml:"badges"`
}

// LoadDefinitions reads badge definitions from a YAML file, preserving
// file order. Order matters: the evaluator reports new badges in
// definition order.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read badge definitions: %w", err)
	}

	var f definitionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse badge definitions: %w", err)
	}

	for i, d := range f.Badges {
		if err := validateDefinition(d); err != nil {
			return nil, fmt.Errorf("badge %d (%s): %w", i+1, d.ID, err)
		}
	}

	return f.Badges, nil
}

func validateDefinition(d Definition) error {
	if d.ID == "" {
		return fmt.Errorf("id is required")
	}
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch d.Type {
	case TypeStars, TypeStreak, TypeLevel:
	default:
		return fmt.Errorf("unknown type %q", d.Type)
	}
	if d.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive")
	}
	return nil
}

// DefaultDefinitions is the built-in badge set used when no definitions
// file is configured.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: "first-star", Name: "Erster Stern", Description: "Earn your first star", Icon: "star", Type: TypeStars, Threshold: 1},
		{ID: "stars-10", Name: "Sternsammler", Description: "Earn 10 stars", Icon: "stars", Type: TypeStars, Threshold: 10},
		{ID: "stars-50", Name: "Sternenhimmel", Description: "Earn 50 stars", Icon: "galaxy", Type: TypeStars, Threshold: 50},
		{ID: "stars-100", Name: "Supernova", Description: "Earn 100 stars", Icon: "supernova", Type: TypeStars, Threshold: 100},
		{ID: "streak-3", Name: "Dranbleiber", Description: "Practice 3 days in a row", Icon: "flame", Type: TypeStreak, Threshold: 3},
		{ID: "streak-7", Name: "Wochensieger", Description: "Practice 7 days in a row", Icon: "fire", Type: TypeStreak, Threshold: 7},
		{ID: "streak-30", Name: "Eisenwille", Description: "Practice 30 days in a row", Icon: "trophy", Type: TypeStreak, Threshold: 30},
		{ID: "level-5", Name: "Aufsteiger", Description: "Reach level 5", Icon: "arrow-up", Type: TypeLevel, Threshold: 5},
		{ID: "level-10", Name: "Profi", Description: "Reach level 10", Icon: "crown", Type: TypeLevel, Threshold: 10},
	}
}
