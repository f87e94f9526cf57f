package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imageflow/internal/blobstore"
	"imageflow/internal/config"
	"imageflow/internal/httpapi"
	"imageflow/internal/logging"
	"imageflow/internal/pipeline"
	"imageflow/internal/proxy"
	"imageflow/internal/synthesis"
	"imageflow/internal/visionclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(os.Getenv("APP_ENV"))

	ctx := context.Background()

	store, err := blobstore.New(ctx, blobstore.Options{
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		Endpoint:  cfg.StorageEndpoint,
		PublicURL: cfg.StoragePublicURL,
		Folder:    cfg.StorageFolder,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure blob store")
	}

	vertex, err := synthesis.NewVertexClient(ctx, synthesis.VertexOptions{
		Project:             cfg.ImagePrimaryProject,
		Region:              cfg.ImagePrimaryRegion,
		CredentialsFilePath: cfg.GoogleCredentials,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure primary image provider")
	}
	fallback := synthesis.NewFalClient(synthesis.FalOptions{
		APIKey:       cfg.ImageFallbackAPIKey,
		Endpoint:     cfg.ImageFallbackEndpoint,
		ModelID:      cfg.ImageFallbackModelID,
		OutputFormat: cfg.OutputFormat,
		DefaultRatio: cfg.ImageFallbackAspectRatio,
	})
	synth := synthesis.New(vertex, fallback, cfg.ImageFallbackAspectRatio)

	vision := visionclient.New(visionclient.Options{
		APIKey:  cfg.VisionModelAPIKey,
		Model:   cfg.VisionModelID,
		BaseURL: cfg.VisionModelBaseURL,
	})

	orchestrator := &pipeline.Orchestrator{
		Store:              store,
		Vision:             vision,
		Synth:              synth,
		SystemPromptImage:  cfg.SystemPromptImage,
		SystemPromptEditor: cfg.SystemPromptEditor,
		OutputFormat:       cfg.OutputFormat,
	}

	app := &httpapi.App{
		Orchestrator:       orchestrator,
		MaxReferenceImages: cfg.MaxReferenceImages,
		ProxyHandler:       proxy.New(cfg.StoragePublicURL),
		Logger:             logger,
	}

	router := httpapi.NewRouter(app, []string{"*"})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Msgf("image-flow pipeline listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
