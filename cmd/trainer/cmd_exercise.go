package main

import (
	"context"
	"fmt"
)

// cmdExercise lists and inspects exercise packs
func cmdExercise(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Exercise commands:

  trainer exercise list        List all exercise packs
  trainer exercise info <id>   Show exercise details`)
		return nil
	}

	switch args[0] {
	case "list":
		return cmdExerciseList()
	case "info":
		if len(args) < 2 {
			return fmt.Errorf("exercise ID required (e.g., mathe-basics/fractions-1)")
		}
		return cmdExerciseInfo(args[1])
	default:
		return fmt.Errorf("unknown exercise command: %s", args[0])
	}
}

func cmdExerciseList() error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	reg, err := a.exercises()
	if err != nil {
		return err
	}

	packs := reg.Packs()
	if len(packs) == 0 {
		fmt.Println("No exercise packs found.")
		return nil
	}

	fmt.Println("Available Exercise Packs:")
	for _, pack := range packs {
		fmt.Printf("  %s (%s)\n", pack.Name, pack.ID)
		if pack.Description != "" {
			fmt.Printf("    %s\n", pack.Description)
		}
	}
	fmt.Printf("\n%d exercises total\n", reg.Count())
	return nil
}

func cmdExerciseInfo(id string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	reg, err := a.exercises()
	if err != nil {
		return err
	}

	ex, err := reg.Get(id)
	if err != nil {
		return fmt.Errorf("exercise %s: %w", id, err)
	}

	fmt.Printf("Exercise: %s\n", ex.ID)
	fmt.Printf("Area:     %s\n", ex.AreaID)
	fmt.Printf("Theme:    %s\n", ex.ThemeID)
	fmt.Printf("Level:    %d\n", ex.Level)
	if q, ok := ex.Content["question"]; ok {
		fmt.Printf("Question: %v\n", q)
	}
	return nil
}
