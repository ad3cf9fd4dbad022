package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sales_backend/internal/config"
	"sales_backend/internal/database"
	"sales_backend/internal/logger"
	"sales_backend/internal/repositories"
	"sales_backend/internal/server"
	"sales_backend/internal/services"
	"sales_backend/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:          "sales-backend",
		Short:        "Sales and invoicing API over a generic CRUD layer",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newSeedUserCmd(), newCatalogCmd())
	return root
}

// setup loads the configuration and initializes the global logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, ServiceName: "sales_backend"})
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg)
			if err != nil {
				logger.L().Error("failed to start server", logger.Err(err))
				return err
			}
			return srv.Run(ctx)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the sales schema (tables and view) if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			pool, err := database.Connect(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.RunMigrations(cmd.Context(), pool); err != nil {
				return err
			}
			logger.L().Info("migrations applied")
			return nil
		},
	}
}

func newSeedUserCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Create a login user; empty flags get random values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			pool, err := database.Connect(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			cat := server.NewCatalog(pool, cfg.DB.Schema)
			repo := repositories.NewCrudRepository(database.NewTxManager(pool), cat)
			auth := services.NewAuthService(repo, utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), nil)

			email, password, err := auth.SeedUser(ctx, email, password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "email:    %s\npassword: %s\n", email, password)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&password, "password", "", "User password")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the tables and columns discovered in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			pool, err := database.Connect(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			cat := server.NewCatalog(pool, cfg.DB.Schema)
			if err := cat.EnsureLoaded(ctx); err != nil {
				return err
			}
			tables, err := cat.Tables()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range tables {
				kind := "table"
				if t.IsView {
					kind = "view"
				}
				_, _ = fmt.Fprintf(out, "%s (%s)\n", t.Name, kind)
				for _, c := range t.Columns {
					var flags []string
					if c.PrimaryKey {
						flags = append(flags, "pk")
					}
					if !c.Nullable {
						flags = append(flags, "not null")
					}
					_, _ = fmt.Fprintf(out, "  %-20s %-28s %s\n", c.Name, c.DataType, strings.Join(flags, ","))
				}
			}
			return nil
		},
	}
}
