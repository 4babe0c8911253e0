package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/lernwerk/trainer/internal/domain"
	"github.com/lernwerk/trainer/internal/scoring"
)

// cmdStats shows the progress overview
func cmdStats(args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.store.GetProfile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			fmt.Println("No profile yet. Create one with: trainer profile create <nickname>")
			return nil
		}
		return fmt.Errorf("load profile: %w", err)
	}

	starsPerLevel := a.cfg.Gamification.StarsPerLevel
	if starsPerLevel <= 0 {
		starsPerLevel = scoring.DefaultStarsPerLevel
	}
	progress := scoring.LevelProgress(p.TotalStars, starsPerLevel, nil)

	fmt.Printf("Progress for %s\n", p.Nickname)
	fmt.Println("====================")
	fmt.Printf("Level:          %d\n", progress.CurrentLevel)
	fmt.Printf("Stars:          %d (%d to next level)\n", p.TotalStars, progress.StarsToNextLevel)
	fmt.Printf("Level progress: %s %d%%\n", renderProgressBar(progress.ProgressPercentage, 20), progress.ProgressPercentage)
	fmt.Printf("Streak:         %d days (best: %d)\n", p.CurrentStreak, p.LongestStreak)

	if len(p.ThemeProgress) > 0 {
		fmt.Println("\nThemes")
		fmt.Println("------")
		themes := make([]string, 0, len(p.ThemeProgress))
		for id := range p.ThemeProgress {
			themes = append(themes, id)
		}
		sort.Strings(themes)
		for _, id := range themes {
			tp := p.ThemeProgress[id]
			fmt.Printf("%-20s %d/%d exercises, %d stars (level %d)\n",
				id, tp.ExercisesCompleted, tp.ExercisesTotal, tp.StarsEarned, p.ThemeLevels[id])
		}
	}

	if len(p.Badges) > 0 {
		fmt.Println("\nBadges")
		fmt.Println("------")
		for _, b := range p.Badges {
			fmt.Printf("%-20s %s (%s)\n", b.Name, b.Description, b.EarnedAt.Format("2006-01-02"))
		}
	}

	results, err := a.store.GetAllExerciseResults(ctx)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}
	correct := 0
	for _, r := range results {
		if r.Correct {
			correct++
		}
	}
	fmt.Printf("\n%d results stored, %d correct\n", len(results), correct)
	return nil
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "#"
		} else {
			bar += "-"
		}
	}
	return "[" + bar + "]"
}
