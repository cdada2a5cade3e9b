// Command server runs the reading-score HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ai-storyteller/scoring-service/internal/apigateway"
	"ai-storyteller/scoring-service/internal/audioprocessing"
	"ai-storyteller/scoring-service/internal/config"
	"ai-storyteller/scoring-service/internal/coreengine/vendoradapters"
	"ai-storyteller/scoring-service/internal/datastore"
	"ai-storyteller/scoring-service/internal/objectstore"
)

const shutdownGrace = 10 * time.Second

func main() {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(lvl)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "scoring-service").
		Logger()
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		return err
	}

	store := datastore.NewAudioStore(mongoClient.Database(cfg.MongoDBDatabase), cfg.AudioCollection, log)

	locations, err := objectstore.NewResolver(objectstore.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UseSSL:          cfg.S3UseSSL,
		CDNBaseURL:      cfg.CDNBaseURL,
		PresignExpiry:   cfg.PresignExpiry,
	}, log)
	if err != nil {
		return err
	}

	transcriber, err := vendoradapters.NewAssemblyAIAdapter(cfg.AssemblyAIAPIKey, log)
	if err != nil {
		return err
	}
	enhancer, err := vendoradapters.NewOpenAIEnhancementAdapter(cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	if err != nil {
		return err
	}

	handler := audioprocessing.NewHandler(store, locations, transcriber, enhancer, log)
	router := apigateway.SetupRouter(handler, cfg.AllowedOrigins, log)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
