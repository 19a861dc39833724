package main

import (
	"context" // Command context
	"fmt"     // Output
	"os"      // Exit codes

	"restaurant_system/internal/config" // Custom import path (Config)
	"restaurant_system/internal/db"     // Custom import path (Database)
	"restaurant_system/internal/domain" // Seed state
	"restaurant_system/internal/store"  // Stores
	"restaurant_system/internal/utils"  // Logger setup

	"github.com/sirupsen/logrus" // Logging
	"github.com/spf13/cobra"     // CLI framework
	"gorm.io/gorm"               // GORM ORM library
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Create or upgrade the restaurant database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := connect()
		return err
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, then create or update the configured admin and employee accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		gdb, err := connect()
		if err != nil {
			return err
		}
		return store.NewCredentialStore(gdb).Seed(cmd.Context(), store.SeedConfig{
			AdminUsername:    cfg.AdminUsername,
			AdminPassword:    cfg.AdminPassword,
			EmployeeUsername: cfg.EmployeeUsername,
			EmployeePassword: cfg.EmployeePassword,
		})
	},
}

var resetStateCmd = &cobra.Command{
	Use:   "reset-state",
	Short: "Migrate, then overwrite the shared state document with the seed data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		gdb, err := connect()
		if err != nil {
			return err
		}
		snap, err := store.NewGormStateStore(gdb).Replace(cmd.Context(), domain.DefaultState())
		if err != nil {
			return err
		}
		logrus.WithField("version", snap.Version).Info("State document reset")
		return nil
	},
}

// connect opens the configured database and runs the migration
func connect() (*gorm.DB, error) {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		return nil, err
	}
	utils.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Main entry point for migration
func main() {
	rootCmd.AddCommand(seedCmd, resetStateCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
