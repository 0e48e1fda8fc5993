// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-taskmate/internal/auth"
	"github.com/iyunix/go-taskmate/internal/config"
	"github.com/iyunix/go-taskmate/internal/services"
	"github.com/iyunix/go-taskmate/internal/services/ai"
)

const shutdownTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:           "taskmate",
	Short:         "Chat-driven task manager",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Pending migrations are applied before the server starts accepting requests.`,
	RunE: runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign a development access token",
	Long: `Sign an access token for the given user id with JWT_SECRET_KEY.

Intended for local development and smoke tests; refused when ENV=production.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Ask the configured LLM to classify a message",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var tokenTTL time.Duration

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) services.Logger {
	return services.NewLogger("taskmate", services.LoggerOptions{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	db, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	applied, err := migrate(cmd.Context(), db, cfg)
	if err != nil {
		return errors.Wrap(err, "migrate database")
	}
	logger.Info("Database ready", "driver", cfg.DBDriver, "migrations_applied", applied)

	app, err := InitializeApplication(cfg, logger, db)
	if err != nil {
		return errors.Wrap(err, "initialize application")
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Close failed", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serverErr:
		return errors.Wrap(err, "server failed")
	case <-stop:
	}

	logger.Info("Shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	logger.Info("Server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	applied, err := migrate(cmd.Context(), db, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		return errors.New("refusing to sign tokens in production")
	}
	if cfg.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}

	token, err := auth.GenerateJWT(args[0], []byte(cfg.JWTSecretKey), tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	aiConfig := ProvideAIConfig(cfg)
	if !aiConfig.Enabled() {
		return errors.New("LLM_API_KEY is not set")
	}

	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		return err
	}
	classifier, err := ai.NewIntentClassifier(provider)
	if err != nil {
		return err
	}

	category, confidence, err := classifier.Classify(cmd.Context(), args[0], nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (confidence %.2f)\n", category, confidence)
	return nil
}
