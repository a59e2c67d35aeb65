package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-airforms/internal/config"
	"github.com/goliatone/go-airforms/internal/server"
	"github.com/goliatone/go-airforms/pkg/airtable"
	"github.com/goliatone/go-airforms/pkg/model"
	"github.com/goliatone/go-airforms/pkg/store"
	"github.com/goliatone/go-airforms/pkg/submission"
)

func newServeCmd() *cobra.Command {
	var envFiles []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the airforms HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			logger := cfg.Logger(os.Stderr)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	forms, err := store.NewCachedForms(st, cfg.FormCacheSize)
	if err != nil {
		return err
	}

	oauth := airtable.OAuthConfig(cfg.Airtable.ClientID, cfg.Airtable.ClientSecret, cfg.Airtable.RedirectURL)
	writer := submission.AirtableWriter{OAuth: oauth, BaseURL: cfg.Airtable.APIBaseURL, Logger: logger}
	submissions := submission.NewService(forms, st, st, writer, submission.WithLogger(logger))

	options := []server.Option{
		server.WithLogger(logger),
		server.WithOAuth(oauth),
		server.WithFormReader(forms),
		server.WithSubmissions(submissions),
		server.WithClientURL(cfg.ClientURL),
		server.WithJWTSecret(jwtSecret(cfg, logger)),
	}
	if cfg.Airtable.APIBaseURL != "" {
		baseURL := cfg.Airtable.APIBaseURL
		options = append(options, server.WithAirtable(func(ctx context.Context, user model.User) server.AirtableAPI {
			return airtable.ForUser(ctx, oauth, user, airtable.WithBaseURL(baseURL), airtable.WithLogger(logger))
		}))
	}

	srv, err := server.New(st, options...)
	if err != nil {
		return err
	}
	logger.Info("airforms: starting", "env", cfg.Env, "addr", cfg.Port)
	return srv.ListenAndServe(ctx, cfg.Port)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("airforms: DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), nil
	}
	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("airforms: open database: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("airforms: ensure schema: %w", err)
	}
	return pg, nil
}

func jwtSecret(cfg *config.Config, logger *slog.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	logger.Warn("airforms: JWT_SECRET not set, using an ephemeral development secret")
	return "airforms-dev-" + uuid.NewString()
}
