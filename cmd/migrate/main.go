package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunaldubey10/Agrishield/internal/adapters/postgres"
	"github.com/kunaldubey10/Agrishield/internal/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or revert the AgriShield database schema",
	Long: `Apply or revert the embedded schema migrations against the database
configured through AGRISHIELD_DATABASE_* variables or config.yaml.`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all migrations",
	RunE:  func(cmd *cobra.Command, _ []string) error { return run(cmd.Context(), "up") },
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all migrations",
	RunE:  func(cmd *cobra.Command, _ []string) error { return run(cmd.Context(), "down") },
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List embedded migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		migrations, err := postgres.Migrations("up")
		if err != nil {
			return err
		}
		for _, m := range migrations {
			fmt.Fprintln(cmd.OutOrStdout(), m.Name)
		}
		return nil
	},
}

var timeout time.Duration

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall deadline for the run")
	rootCmd.AddCommand(upCmd, downCmd, listCmd)
}

func run(ctx context.Context, direction string) error {
	cfg, err := config.Load("agrishield-migrate")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("database.host is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	err = db.Migrate(ctx, direction, func(name string) {
		fmt.Printf("OK  %s\n", name)
	})
	if err != nil {
		return err
	}
	fmt.Printf("all %s migrations applied\n", direction)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
