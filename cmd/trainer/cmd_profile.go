package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lernwerk/trainer/internal/domain"
)

// cmdProfile manages the local profile
func cmdProfile(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Profile commands:

  trainer profile create <nickname> [avatar]  Create a new profile
  trainer profile show                        Show the active profile`)
		return nil
	}

	switch args[0] {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("nickname required (e.g., trainer profile create Mia)")
		}
		avatar := ""
		if len(args) > 2 {
			avatar = args[2]
		}
		return cmdProfileCreate(args[1], avatar)
	case "show":
		return cmdProfileShow()
	default:
		return fmt.Errorf("unknown profile command: %s", args[0])
	}
}

func cmdProfileCreate(nickname, avatar string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	p := domain.NewUserProfile(nickname, avatar)
	if err := a.store.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	fmt.Printf("Profile created: %s (%s)\n", p.Nickname, p.ID)
	return nil
}

func cmdProfileShow() error {
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

	fmt.Printf("Profile: %s\n", p.Nickname)
	fmt.Println("================")
	fmt.Printf("Stars:          %d\n", p.TotalStars)
	fmt.Printf("Current Streak: %d days\n", p.CurrentStreak)
	fmt.Printf("Longest Streak: %d days\n", p.LongestStreak)
	fmt.Printf("Last Active:    %s\n", p.LastActiveDate)
	fmt.Printf("Badges:         %d\n", len(p.Badges))
	for _, b := range p.Badges {
		fmt.Printf("  - %s (%s)\n", b.Name, b.EarnedAt.Format("2006-01-02"))
	}
	return nil
}
