package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilherme-santos/uniplanner/calendar"
	"github.com/guilherme-santos/uniplanner/calendar/google"
	"github.com/guilherme-santos/uniplanner/internal/planner"
	"github.com/guilherme-santos/uniplanner/internal/server"
	"github.com/guilherme-santos/uniplanner/internal/sqlite"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		storage := sqlite.NewStorage(db)

		googleCal := google.NewClient()
		googleCal.Logger = log

		mux := calendar.NewMux()
		mux.Register("google", googleCal)

		provider, err := mux.Get(cfg.CalendarProvider)
		if err != nil {
			return err
		}

		p := planner.New(log, provider, storage)
		p.Location = loc
		p.UpcomingLimit = cfg.UpcomingLimit

		oauthCfg := google.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		tokens := google.NewTokenManager(oauthCfg, log)

		srv := server.New(log, server.Config{
			PostLoginURL:      cfg.PostLoginURL,
			CookieSecure:      cfg.CookieSecure,
			SessionExpiration: cfg.SessionExpiration,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			AccessLog:         os.Stdout,
		}, p, tokens, googleCal)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(cfg.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	},
}
