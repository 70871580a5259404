// Package cmd defines and implements the CLI commands for the malbox
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malbox/malbox/internal/app"
	"github.com/malbox/malbox/internal/clock/system"
	"github.com/malbox/malbox/internal/config"
	"github.com/malbox/malbox/internal/gist"
	"github.com/malbox/malbox/internal/id/uuid"
	"github.com/malbox/malbox/internal/mal"
	"github.com/malbox/malbox/internal/pipeline"
	"github.com/malbox/malbox/internal/ratelimit"
	"github.com/malbox/malbox/internal/render"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use. The indirection
// lets tests inject a mock app.
type App interface {
	Close()
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetLimiter() *ratelimit.Store
}

// newApp is the application factory. It's a variable so tests can replace it
// with a mock factory.
var newApp = func() (App, error) {
	return app.New(cfgFile)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "malbox",
		Short: "Publishes MyAnimeList progress to a GitHub gist.",
		Long: `malbox reads a user's anime or manga list from MyAnimeList, classifies
each in-progress entry into a completion tier, and overwrites a pinned
GitHub gist with a compact five-line progress block.`,
		SilenceUsage: true,

		// Runs BEFORE the subcommand's RunE: build and inject the application.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A local .env file is optional; secrets usually arrive via CI.
			_ = godotenv.Load()

			appInstance, err := newApp()
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// Ensures services are shut down gracefully.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars suffice)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// buildRunner assembles the fetch → render → publish pipeline from the
// application's configuration. With force set the publish interval guard is
// left out.
func buildRunner(appInstance App, force bool) (*pipeline.Runner, error) {
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	contentType := mal.ContentType(cfg.MAL.ContentType)
	status := mal.Status(cfg.MAL.Status)

	fetcher := mal.NewClient(mal.ClientConfig{
		BaseURL:     cfg.MAL.BaseURL,
		ClientID:    cfg.MAL.ClientID,
		AccessToken: cfg.MAL.AccessToken,
		Timeout:     cfg.HTTP.Timeout(),
	}, logger)

	publisher, err := gist.NewPublisher(gist.Config{
		ID:       cfg.Gist.ID,
		Token:    cfg.Gist.Token,
		BaseURL:  cfg.Gist.BaseURL,
		Filename: gist.Filename(contentType, status),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init publisher: %w", err)
	}

	var limiter pipeline.Limiter
	if store := appInstance.GetLimiter(); store != nil && !force {
		limiter = store
	}

	runner := pipeline.NewRunner(
		fetcher,
		publisher,
		limiter,
		system.New(),
		uuid.New(),
		pipeline.RunConfig{
			Username:    cfg.MAL.Username,
			ContentType: contentType,
			Status:      status,
			Unit:        render.UnitFor(contentType),
		},
		logger,
	)
	return runner, nil
}
