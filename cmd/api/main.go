package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/enhance"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/preset"
	"server/internal/providers/image"
	"server/internal/storage"
	"server/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	ctx := context.Background()

	// Preset catalog: builtins plus any YAML files from PRESETS_PATH.
	catalog := preset.BuiltinCatalog()
	if cfg.PresetsPath != "" {
		loaded, err := preset.LoadPath(cfg.PresetsPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.PresetsPath).Msg("failed to load preset catalog")
		}
		catalog = append(catalog, loaded...)
	}
	registry, err := preset.NewRegistry(catalog)
	if err != nil {
		logger.Fatal().Err(err).Msg("preset catalog rejected")
	}
	logger.Info().Int("presets", len(registry.List())).Msg("preset registry built")

	// Job store: PostgreSQL when DATABASE_URL is set, SQLite otherwise.
	var jobs domain.JobRepository
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		pg := repo.NewJobRepository(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}
		jobs = pg
		logger.Info().Msg("job store: postgres")
	} else {
		sqlite, err := repo.NewJobRepositorySQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open sqlite store")
		}
		defer sqlite.Close()
		jobs = sqlite
		logger.Info().Str("path", cfg.SQLitePath).Msg("job store: sqlite")
	}

	// Blob storage.
	var blobs storage.BlobStore
	staticDir := ""
	switch cfg.StorageBackend {
	case "minio":
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize minio storage")
		}
		blobs = store
		logger.Info().Str("bucket", cfg.MinioBucket).Msg("blob store: minio")
	default:
		store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize file storage")
		}
		blobs = store
		staticDir = store.BasePath()
		logger.Info().Str("path", cfg.StoragePath).Msg("blob store: filesystem")
	}

	// Image editor: remote when credentials exist, synthetic otherwise.
	var editor image.Editor
	apiyi := image.NewApiyiClient(image.ApiyiOptions{
		APIKey:  cfg.ApiyiAPIKey,
		BaseURL: cfg.ApiyiBaseURL,
		Model:   cfg.ApiyiModel,
		Logger:  &logger,
	})
	if apiyi.HasCredentials() {
		editor = apiyi
		logger.Info().Str("model", apiyi.Model()).Msg("image editor: apiyi")
	} else {
		editor = image.NewSyntheticEditor()
		logger.Warn().Msg("APIYI_API_KEY not set, using synthetic image editor")
	}

	service := enhance.NewService(registry, jobs, blobs, editor, &logger)
	app := handlers.NewApp(service, upload.NewValidator(cfg.MaxUploadBytes), &logger)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		SecureCookies:   cfg.AppEnv == "production",
		StaticDir:       staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
