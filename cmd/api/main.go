package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/daygrid/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "daygrid",
		Short: "DayGrid API Server",
		Long:  `DayGrid is a personal productivity service with scheduled todos, calendar views and per-todo note boards.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
