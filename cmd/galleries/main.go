package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cleverframework/clever-v0-galleries/internal/app"
	"github.com/cleverframework/clever-v0-galleries/internal/config"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/jwt"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
	"github.com/cleverframework/clever-v0-galleries/internal/storage/postgresql"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var cfgPath string

// @title Galleries API
// @version 1.0
// @description Image galleries: ordered image lists with self-healing references.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:           "galleries",
		Short:         "Image galleries service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (or CONFIG_PATH)")

	orphansCmd := &cobra.Command{
		Use:   "orphans",
		Short: "Manage files left behind by deleted galleries",
	}
	orphansCmd.AddCommand(newPurgeCmd())

	tokenCmd := newTokenCmd()

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), orphansCmd, tokenCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			log := setupLogger(cfg.Env)
			log.Info("starting galleries", slog.String("env", cfg.Env))

			application, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			go func() {
				application.HTTPServer.MustRun()
			}()

			<-cmd.Context().Done()

			if err := application.HTTPServer.Stop(); err != nil {
				log.Error("failed to stop http server", sl.Err(err))
			}

			log.Info("Gracefully stopped")

			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			log := setupLogger(cfg.Env)

			db, err := postgresql.New(cmd.Context(), cfg.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgresql.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			log.Info("migrations applied")

			return nil
		},
	}
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Retry deleting orphaned files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			log := setupLogger(cfg.Env)

			application, err := app.New(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			purged, err := application.GalleryService.PurgeOrphans(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d file(s)\n", purged)

			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the mutating API routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			token, err := jwt.NewAdminToken(cfg.Auth.Secret, subject, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")

	return cmd
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}

	return log
}
