package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	mongoMigration "spacelink/internal/migrations/mongo"
	"spacelink/pkg/config"

	"github.com/spf13/cobra"
)

const JobName = "mongo-migration"

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "SpaceLink MongoDB schema migrations",
	}

	rootCmd.PersistentFlags().Duration("timeout", 120*time.Second, "Overall deadline for the command")
	rootCmd.AddCommand(upCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(ctx context.Context, cfg *config.Config) error {
				db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
				if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Println("Migration completed successfully.")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show managed collections and their indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(ctx context.Context, cfg *config.Config) error {
				db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
				statuses, err := mongoMigration.Status(ctx, db)
				if err != nil {
					return err
				}

				fmt.Printf("%-16s  %-8s  %s\n", "Collection", "Status", "Indexes")
				for _, s := range statuses {
					state := "Missing"
					if s.Exists {
						state = "Present"
					}
					fmt.Printf("%-16s  %-8s  %s\n", s.Name, state, strings.Join(s.Indexes, ", "))
				}
				return nil
			})
		},
	}
}

func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	return fn(ctx, cfg)
}
