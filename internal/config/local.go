package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration loaded from ~/.trainer/config.yaml.
// Values from the config file take precedence over the built-in defaults;
// environment variables (see Load) take precedence over both.
type LocalConfig struct {
	Trainer      TrainerConfig      `yaml:"trainer"`
	Storage      StorageConfig      `yaml:"storage"`
	Gamification GamificationConfig `yaml:"gamification"`
	Events       EventsConfig       `yaml:"events"`
	Exercises    ExercisesConfig    `yaml:"exercises"`
}

// TrainerConfig identifies this trainer installation. The ID scopes
// save-game files: an export can only be imported into an installation
// with the same ID.
type TrainerConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StorageConfig selects and parameterizes the storage backend
type StorageConfig struct {
	Backend      string `yaml:"backend"` // sqlite, postgres
	DatabasePath string `yaml:"database_path,omitempty"`
	DatabaseURL  string `yaml:"database_url,omitempty"`
}

// GamificationConfig holds scoring parameters
type GamificationConfig struct {
	StarsPerLevel int    `yaml:"stars_per_level"`
	MaxAttempts   int    `yaml:"max_attempts"`
	BadgesFile    string `yaml:"badges_file,omitempty"`
}

// EventsConfig holds progress event publishing settings
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	AmqpURL string `yaml:"amqp_url,omitempty"`
}

// ExercisesConfig holds exercise pack settings
type ExercisesConfig struct {
	Path string `yaml:"path"`
}

// TrainerDir returns the path to ~/.trainer
func TrainerDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".trainer"), nil
}

// EnsureTrainerDir creates ~/.trainer and subdirectories if they don't exist
func EnsureTrainerDir() (string, error) {
	dir, err := TrainerDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"exports",
		"exercises",
		"logs",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for a fresh installation.
// The trainer ID is generated once and persisted on first save.
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Trainer: TrainerConfig{
			ID:   uuid.New().String(),
			Name: "Lernwerk Trainer",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Gamification: GamificationConfig{
			StarsPerLevel: 10,
			MaxAttempts:   3,
		},
		Events: EventsConfig{
			Enabled: false,
		},
		Exercises: ExercisesConfig{
			Path: "./exercises",
		},
	}
}

// LoadLocalConfig loads configuration from ~/.trainer/config.yaml.
// A missing file yields defaults, which are written back so the generated
// trainer ID stays stable across runs.
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := TrainerDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultLocalConfig()
		if err := SaveLocalConfig(cfg); err != nil {
			return nil, fmt.Errorf("persist default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultLocalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Backfill an ID for configs written by hand without one.
	if cfg.Trainer.ID == "" {
		cfg.Trainer.ID = uuid.New().String()
		if err := SaveLocalConfig(cfg); err != nil {
			return nil, fmt.Errorf("persist trainer id: %w", err)
		}
	}

	return cfg, nil
}

// SaveLocalConfig writes configuration to ~/.trainer/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureTrainerDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// DatabasePath resolves the SQLite database path, defaulting to
// ~/.trainer/trainer.db when unset.
func (c *LocalConfig) DatabasePath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	dir, err := TrainerDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trainer.db"), nil
}
