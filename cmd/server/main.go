// Package main is the entry point for the Creatorverse server.
//
// The binary has two commands:
//
//	creatorverse serve          run the HTTP server (the default)
//	creatorverse create-admin   add an admin account and exit
//
// Configuration comes from the environment, optionally seeded from a .env
// file in the working directory. Run with --help-env to list the variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sakif/creatorverse/internal/auth"
	"github.com/sakif/creatorverse/internal/config"
	"github.com/sakif/creatorverse/internal/logging"
	sqliteRepo "github.com/sakif/creatorverse/internal/repository/sqlite"
	"github.com/sakif/creatorverse/internal/server"
	"github.com/sakif/creatorverse/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line in args and returns the exit code. Errors,
// including flag errors cobra would otherwise swallow, go to stderr.
func run(args []string, stderr io.Writer) int {
	root := rootCmd()
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "creatorverse: %v\n", err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	var helpEnv bool

	root := &cobra.Command{
		Use:           "creatorverse",
		Short:         "Content planning server for creators",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpEnv {
				fmt.Fprint(cmd.OutOrStdout(), config.Usage())
				return nil
			}
			return runServe(cmd.Context())
		},
	}
	root.Flags().BoolVar(&helpEnv, "help-env", false, "list the environment variables and exit")

	root.AddCommand(serveCmd(), createAdminCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func createAdminCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateAdmin(cmd.Context(), username, password)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// setup loads .env and the configuration, and builds the logger. Its errors
// are reported by run, since the logger may not exist yet.
func setup() (*config.Config, *slog.Logger, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logging.LogError(logger, "failed to create database directory", err)
		return nil, nil, err
	}

	return cfg, logger, nil
}

func runServe(parent context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	// === SIGNALS ===
	// Ctrl+C or SIGTERM cancels ctx, which makes Start shut down gracefully.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logging.LogError(logger, "failed to create server", err)
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logging.LogError(logger, "failed to release resources", err)
		}
	}()

	if err := srv.Start(ctx); err != nil {
		logging.LogError(logger, "server error", err)
		return err
	}
	return nil
}

func runCreateAdmin(ctx context.Context, username, password string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		logging.LogError(logger, "failed to open database", err)
		return err
	}
	defer db.Close()

	passwords, err := auth.NewPasswordServiceWithCost(cfg.BcryptCost)
	if err != nil {
		return err
	}

	// No session store or metrics: this command never logs anyone in.
	svc := service.NewAuthService(db, db, passwords, nil, logger, nil)
	admin, err := svc.CreateAdmin(ctx, username, password)
	if err != nil {
		logging.LogError(logger, "failed to create admin", err)
		return err
	}

	logger.Info("admin created", slog.String("id", admin.ID), slog.String("username", admin.Username))
	return nil
}
