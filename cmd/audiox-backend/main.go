// Command audiox-backend runs the Audio X metadata API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/justestif/audiox-backend/internal/auth"
	"github.com/justestif/audiox-backend/internal/config"
	"github.com/justestif/audiox-backend/internal/credits"
	"github.com/justestif/audiox-backend/internal/db"
	"github.com/justestif/audiox-backend/internal/lastfm"
	"github.com/justestif/audiox-backend/internal/logging"
	"github.com/justestif/audiox-backend/internal/metadata"
	"github.com/justestif/audiox-backend/internal/musicbrainz"
	"github.com/justestif/audiox-backend/internal/spotify"
	"github.com/justestif/audiox-backend/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Log.Level)

	if cfg.Sentry.Enabled() {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			Release:          cfg.Sentry.Release,
			TracesSampleRate: 1.0,
		}); err != nil {
			return fmt.Errorf("initializing sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if !cfg.Spotify.Enabled() {
		logger.Warn("SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET not set, Spotify lookups will fail")
	}
	if !cfg.LastFM.Enabled() {
		logger.Warn("LASTFM_API_KEY not set, Last.fm lookups are disabled")
	}

	tokens := auth.NewTokenCache(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		auth.WithLogger(logging.Component(logger, "auth")),
	)
	spotifyClient := spotify.New(spotify.NewHTTPClient(tokens, cfg.Upstream.Timeout))
	lastfmClient := lastfm.NewClient(&lastfm.Config{
		APIKey:  cfg.LastFM.APIKey,
		Timeout: cfg.Upstream.Timeout,
	})
	mbClient := musicbrainz.NewClient(cfg.MusicBrainz.UserAgent, cfg.Upstream.Timeout)

	store, closeStore, err := openCreditsStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	cache := credits.New(store, credits.WithLogger(logging.Component(logger, "credits")))

	svc := metadata.NewService(spotifyClient, lastfmClient, mbClient, cache,
		metadata.WithLogger(logging.Component(logger, "metadata")),
	)

	server := web.NewServer(web.ServerConfig{
		Addr:     cfg.Server.Addr(),
		Metadata: svc,
		Logger:   logger,
	})

	return server.Run()
}

// openCreditsStore picks the PostgreSQL backend when DATABASE_URL is set and
// the bounded in-memory backend otherwise.
func openCreditsStore(cfg *config.Config, logger *log.Logger) (credits.Store, func(), error) {
	if cfg.Cache.DatabaseURL == "" {
		mem := credits.NewMemoryStore(cfg.Cache.Capacity)
		logger.WithField("capacity", cfg.Cache.Capacity).Info("Using in-memory track credits cache")
		return mem, mem.Close, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.New(ctx, cfg.Cache.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}

	pg := credits.NewPostgresStore(database)
	if n, err := pg.Prune(ctx, time.Now()); err != nil {
		logger.WithError(err).Warn("Pruning stale track credits failed")
	} else if n > 0 {
		logger.WithField("deleted", n).Info("Pruned stale track credits")
	}

	logger.Info("Using PostgreSQL track credits cache")
	return pg, database.Close, nil
}
