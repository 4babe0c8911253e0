package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lernwerk/trainer/internal/savegame"
)

// cmdExport writes the save game to a file
func cmdExport(args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	data, filename, err := a.codec().ExportJSON(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write save game: %w", err)
	}

	fmt.Printf("Save game written to %s\n", path)
	return nil
}

// cmdImport restores a save game file
func cmdImport(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("file required (e.g., trainer import spielstand-mia-2025-09-01.json)")
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read save game: %w", err)
	}

	p, err := a.codec().Import(ctx, data)
	if err != nil {
		var importErr *savegame.ImportError
		if errors.As(err, &importErr) {
			fmt.Fprintf(os.Stderr, "Save game rejected (%s): %s\n", importErr.Gate, importErr.Reason)
			for _, issue := range importErr.Issues {
				fmt.Fprintf(os.Stderr, "  - %s: %s\n", issue.Path, issue.Message)
			}
			os.Exit(1)
		}
		return fmt.Errorf("import: %w", err)
	}

	fmt.Printf("Save game imported. Welcome back, %s!\n", p.Nickname)
	return nil
}

// cmdConfig shows the effective configuration
func cmdConfig() error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("Configuration")
	fmt.Println("=============")
	fmt.Printf("Trainer ID:      %s\n", a.cfg.Trainer.ID)
	fmt.Printf("Trainer Name:    %s\n", a.cfg.Trainer.Name)
	fmt.Printf("Storage Backend: %s\n", a.cfg.Storage.Backend)
	fmt.Printf("Exercises Path:  %s\n", a.cfg.Exercises.Path)
	fmt.Printf("Stars per Level: %d\n", a.cfg.Gamification.StarsPerLevel)
	fmt.Printf("Max Attempts:    %d\n", a.cfg.Gamification.MaxAttempts)
	fmt.Printf("Events Enabled:  %t\n", a.cfg.Events.Enabled)
	return nil
}
