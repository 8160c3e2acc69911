package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/tenant-config-api/internal/models"
	"github.com/noah-isme/tenant-config-api/internal/service"
	"github.com/noah-isme/tenant-config-api/pkg/config"
	"github.com/noah-isme/tenant-config-api/pkg/database"
	"github.com/noah-isme/tenant-config-api/pkg/database/migrations"
	"github.com/noah-isme/tenant-config-api/pkg/logger"
)

// @title Tenant Config API
// @version 1.0.0
// @description Tenant and user settings resolution plus host-personalised SPA pages
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tenant-config-api",
		Short:        "Tenant settings API and per-host page server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, logr, err := bootstrap()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	srv, err := newServer(cmd.Context(), cfg, logr)
	if err != nil {
		logr.Error("server init failed", zap.Error(err))
		return err
	}
	return srv.Run()
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(db *sqlx.DB, logr *zap.Logger) error {
				if err := migrations.Up(db.DB); err != nil {
					return err
				}
				logr.Info("migrations applied")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(db *sqlx.DB, logr *zap.Logger) error {
				if err := migrations.Down(db.DB, steps); err != nil {
					return err
				}
				logr.Info("migrations rolled back", zap.Int("steps", steps))
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(db *sqlx.DB, logr *zap.Logger) error {
				version, dirty, err := migrations.Version(db.DB)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			})
		},
	})
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID   string
		tenantID string
		role     string
		ttl      time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Env == config.EnvProduction {
				return fmt.Errorf("token issue is disabled in production")
			}
			tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
			token, err := tokens.IssueToken(userID, tenantID, models.UserRole(role), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "user id")
	issue.Flags().StringVar(&tenantID, "tenant", "", "tenant id")
	issue.Flags().StringVar(&role, "role", string(models.RoleUser), "role (USER, ADMIN, SUPERADMIN)")
	issue.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = issue.MarkFlagRequired("user")
	_ = issue.MarkFlagRequired("tenant")

	cmd := &cobra.Command{Use: "token", Short: "Access token helpers"}
	cmd.AddCommand(issue)
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return nil, nil, err
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return nil, nil, err
	}
	return cfg, logr, nil
}

func withDatabase(cmd *cobra.Command, fn func(db *sqlx.DB, logr *zap.Logger) error) error {
	cfg, logr, err := bootstrap()
	if err != nil {
		return err
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cmd.Context(), cfg.Database)
	if err != nil {
		logr.Error("database connect failed", zap.Error(err))
		return err
	}
	defer db.Close()
	return fn(db, logr)
}
