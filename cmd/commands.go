package main

import (
	"context"
	"fmt"
	"time"

	"clinic-workflow/cmd/bootstrap"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/infrastructure/database"
	"clinic-workflow/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the notification dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(*envFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			app.Run()
			return nil
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := database.MigrateUp(cfg.DB); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			logrus.Info("Migrations applied")
			return nil
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg, err := bootstrap.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			if err := database.MigrateDown(cfg.DB, steps); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			logrus.Infof("Rolled back %d migration(s)", steps)
			return nil
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

func syncUnreadCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-unread",
		Short: "Recompute every cached unread counter from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewWorker(*envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			if err := app.Counter.SyncOnStartup(ctx); err != nil {
				return fmt.Errorf("sync unread counters: %w", err)
			}
			logrus.Info("Unread counters synchronized")
			return nil
		},
	}
}

func issueTokenCmd(envFile *string) *cobra.Command {
	var (
		userID string
		email  string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign an access token for operators and tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !entity.IsKnownRole(role) {
				return fmt.Errorf("unknown role %q", role)
			}
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid --user-id: %w", err)
				}
				id = parsed
			}

			cfg, err := bootstrap.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			token, claims, err := jwt.NewJWTService(cfg.JWT).GenerateAccessToken(id, email, role)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			logrus.Infof("Issued token %s for %s (%s), expires %s", claims.TokenID, email, role, claims.ExpiresAt.Time.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user id (random when empty)")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&role, "role", "", "role name, e.g. secretary or Lab")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
