package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lernwerk/trainer/internal/badge"
	"github.com/lernwerk/trainer/internal/config"
	"github.com/lernwerk/trainer/internal/events"
	"github.com/lernwerk/trainer/internal/exercise"
	"github.com/lernwerk/trainer/internal/gamification"
	"github.com/lernwerk/trainer/internal/savegame"
	"github.com/lernwerk/trainer/internal/session"
	"github.com/lernwerk/trainer/internal/storage/postgres"
	"github.com/lernwerk/trainer/internal/storage/sqlite"
)

// app bundles the wired collaborators every subcommand needs.
type app struct {
	cfg       *config.LocalConfig
	logger    *slog.Logger
	store     session.Store
	registry  *exercise.Registry
	publisher *events.Publisher

	closers []func()
}

// openApp loads configuration and connects the selected storage backend.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	env := config.Load()

	level := slog.LevelWarn
	if env.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a := &app{cfg: cfg, logger: logger}

	backend := cfg.Storage.Backend
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		backend = v
	}

	switch backend {
	case "postgres":
		url := cfg.Storage.DatabaseURL
		if url == "" {
			url = env.DatabaseURL
		}
		store, err := postgres.Connect(ctx, url, cfg.Trainer.ID)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	case "sqlite", "":
		path := env.DatabasePath
		if path == "" {
			path, err = cfg.DatabasePath()
			if err != nil {
				return nil, err
			}
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.store = sqlite.NewStore(db, cfg.Trainer.ID)
		a.closers = append(a.closers, func() { db.Close() })
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}

	if cfg.Events.Enabled {
		url := cfg.Events.AmqpURL
		if url == "" {
			url = env.RabbitMQURL
		}
		conn, err := events.NewConnection(url)
		if err != nil {
			// Progress events are best-effort; practice works without them.
			logger.Warn("event broker unavailable", "error", err)
		} else {
			a.publisher = events.NewPublisher(conn)
			a.closers = append(a.closers, func() { conn.Close() })
		}
	}

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// exercises lazily loads the exercise packs.
func (a *app) exercises() (*exercise.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	path := a.cfg.Exercises.Path
	if v := os.Getenv("EXERCISES_PATH"); v != "" {
		path = v
	}
	reg := exercise.NewRegistry(exercise.NewLoader(path))
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}
	a.registry = reg
	return reg, nil
}

// orchestrator wires the gamification rules to the store.
func (a *app) orchestrator() (*gamification.Orchestrator, error) {
	gcfg := gamification.DefaultConfig()
	if v := a.cfg.Gamification.StarsPerLevel; v > 0 {
		gcfg.StarsPerLevel = v
	}
	if v := a.cfg.Gamification.MaxAttempts; v > 0 {
		gcfg.MaxAttempts = v
	}
	if file := a.cfg.Gamification.BadgesFile; file != "" {
		defs, err := badge.LoadDefinitions(file)
		if err != nil {
			return nil, fmt.Errorf("load badges: %w", err)
		}
		gcfg.Badges = defs
	}

	orch := gamification.NewOrchestrator(gamification.NewStoreAccessor(a.store), gcfg, a.logger)
	orch.SetPublisher(a.publisher)
	if reg, err := a.exercises(); err == nil {
		orch.SetThemeTotals(reg.ThemeTotals())
	}
	return orch, nil
}

// codec builds the save-game codec bound to this trainer's store.
func (a *app) codec() *savegame.Codec {
	c := savegame.NewCodec(a.store, a.logger)
	c.SetPublisher(a.publisher)
	return c
}
