package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "profile":
		err = cmdProfile(os.Args[2:])
	case "exercise":
		err = cmdExercise(os.Args[2:])
	case "session":
		err = cmdSession(os.Args[2:])
	case "stats":
		err = cmdStats(os.Args[2:])
	case "export":
		err = cmdExport(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	case "config":
		err = cmdConfig()
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("trainer %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Lernwerk Trainer - Practice exercises, earn stars

Usage:
  trainer <command> [arguments]

Profile Commands:
  profile create <nickname> [avatar]  Create a new profile
  profile show                        Show the active profile

Exercise Commands:
  exercise list             List available exercise packs
  exercise info <id>        Show exercise details

Practice Commands:
  session <theme> [level]   Practice a theme interactively

Progress Commands:
  stats                     Show progress overview
  export [dir]              Export the save game to a file
  import <file>             Import a save game file

Other:
  config                    Show current configuration
  help                      Show this help message
  version                   Show version information

Examples:
  trainer profile create Mia fox    # Create a profile
  trainer session brueche 2         # Practice fractions at level 2
  trainer export ~/Desktop          # Write a save-game file
  trainer stats                     # Show stars, streak and badges`)
}
