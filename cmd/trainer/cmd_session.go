package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lernwerk/trainer/internal/session"
)

// cmdSession runs an interactive practice session for one theme
func cmdSession(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("theme required (e.g., trainer session brueche 2)")
	}
	themeID := args[0]
	level := 0
	if len(args) > 1 {
		var err error
		level, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid level %q", args[1])
		}
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	reg, err := a.exercises()
	if err != nil {
		return err
	}

	exercises := reg.ByTheme(themeID)
	if level > 0 {
		exercises = reg.ByThemeAndLevel(themeID, level)
	}
	if len(exercises) == 0 {
		fmt.Printf("No exercises found for theme %q.\n", themeID)
		return nil
	}

	profile, err := a.store.GetProfile(ctx)
	if err != nil {
		fmt.Println("No profile yet. Create one with: trainer profile create <nickname>")
		return nil
	}

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	maxAttempts := a.cfg.Gamification.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	engine := session.NewEngine(a.store, maxAttempts, a.logger)
	engine.StartSession(exercises, themeID, exercises[0].AreaID, profile.ID)

	fmt.Printf("Practice: %s (%d exercises)\n\n", themeID, len(exercises))
	reader := bufio.NewReader(os.Stdin)

	abandoned := false
	for !abandoned {
		ex := engine.CurrentExercise()
		if ex == nil {
			break
		}

		pos, total := engine.Progress()
		fmt.Printf("[%d/%d] %v\n", pos, total, ex.Content["question"])
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		input := strings.TrimSpace(line)
		if input == "q" || input == "quit" {
			break
		}

		expected := strings.TrimSpace(fmt.Sprint(ex.Content["answer"]))
		correct := strings.EqualFold(input, expected)

		outcome := engine.SubmitAnswer(correct)
		switch {
		case !outcome.Accepted && outcome.Reason == session.ReasonDuplicate:
			fmt.Println("Already solved earlier. Moving on.")
			engine.NextExercise()
			continue
		case outcome.Correct:
			fmt.Printf("Correct! %s\n\n", starRow(outcome.Stars))
			exercise := *ex
			stars := outcome.Stars
			engine.CompleteAndAdvance(ctx, func(ctx context.Context, attempts int) error {
				result, err := orch.ProcessExerciseCompletion(ctx, attempts)
				if err != nil {
					return err
				}
				if result.LeveledUp {
					fmt.Printf("*** Level up! You reached level %d ***\n\n", result.NewLevel)
				}
				for _, b := range result.NewBadges {
					fmt.Printf("*** New badge: %s ***\n\n", b.Name)
				}
				return orch.UpdateThemeProgress(ctx, exercise, stars)
			})
		case outcome.LevelFailed:
			if outcome.ShowSolution {
				fmt.Printf("Out of tries. Solution: %s\n", expected)
			}
			fmt.Print("Restart the level? (y/n) ")
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(answer) == "y" {
				engine.RestartLevel()
				fmt.Println()
				continue
			}
			// session ends, buffered stars from earlier exercises stay
			abandoned = true
		default:
			fmt.Printf("Not quite. Try again (%d/%d attempts).\n\n", outcome.AttemptsUsed, maxAttempts)
		}
	}

	stats := engine.EndSession(ctx)
	fmt.Println("\nSession summary")
	fmt.Println("===============")
	fmt.Printf("Exercises: %d\n", stats.ExercisesCompleted)
	fmt.Printf("Correct:   %d\n", stats.CorrectAnswers)
	fmt.Printf("Stars:     %d\n", stats.StarsEarned)
	fmt.Printf("Time:      %ds\n", stats.TimeSpentSeconds)
	return nil
}

func starRow(stars int) string {
	return strings.Repeat("*", stars) + strings.Repeat(".", 3-stars)
}
