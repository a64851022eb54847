package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/civicconnect/civicconnect-be/config"
	"github.com/civicconnect/civicconnect-be/controllers"
	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/db/memdb"
	"github.com/civicconnect/civicconnect-be/db/sqldb"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/routes"
	"github.com/civicconnect/civicconnect-be/services"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const memoryScheme = "memory://"

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply the schema before serving")
}

func runServe(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Get()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		logFatal("Received err when attempting to connect to DB", err)
	}
	defer database.Close()

	cache, err := openCache(ctx, cfg)
	if err != nil {
		logFatal("an error occurred while connecting to redis", err)
	}
	defer cache.Close()
	globalLimiter, authLimiter := newLimiters(cfg, cache)

	store, err := openFileStore(ctx, cfg)
	if err != nil {
		logFatal("An error occurred while connecting to the user uploads store", err)
	}

	announcements, err := controllers.NewAnnouncementController(ctx, database)
	if err != nil {
		logFatal("An error occurred while initializing the announcement controller", err)
	}
	defer announcements.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(&routes.Deps{
		Config:        cfg,
		DB:            database,
		Tokens:        services.NewTokenService(cfg.JWT, cache),
		Store:         store,
		GlobalLimiter: globalLimiter,
		AuthLimiter:   authLimiter,
		Announcements: announcements,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	log.Info("server exited")
	return nil
}

// openDatabase picks the store from the DATABASE_URL scheme. memory:// keeps
// everything in process and is meant for local development.
func openDatabase(ctx context.Context, cfg *config.Config) (appDb.Database, error) {
	if strings.HasPrefix(cfg.DB.URL, memoryScheme) {
		logger.Get().Warn("using the in-memory store; data is lost on exit")
		return memdb.New(), nil
	}
	database, err := sqldb.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	if migrateOnStart {
		applied, err := database.Migrate(ctx)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		logger.Get().Info("schema applied", zap.Int("statements", applied))
	}
	return database, nil
}

func openCache(ctx context.Context, cfg *config.Config) (services.Cache, error) {
	if cfg.RedisURL == "" {
		return services.NewMemoryCache(), nil
	}
	return services.NewRedisCache(ctx, cfg.RedisURL)
}

// newLimiters shares counters through redis when it is configured so every
// instance sees the same windows.
func newLimiters(cfg *config.Config, cache services.Cache) (global services.RateLimiter, auth services.RateLimiter) {
	window := cfg.RateLimit.Window
	if _, shared := cache.(*services.RedisCache); shared {
		return services.NewWindowLimiter(cache, "global", cfg.RateLimit.Max, window),
			services.NewWindowLimiter(cache, "auth", cfg.RateLimit.AuthMax, window)
	}
	return services.NewTokenBucketLimiter(cfg.RateLimit.Max, window),
		services.NewTokenBucketLimiter(cfg.RateLimit.AuthMax, window)
}

func openFileStore(ctx context.Context, cfg *config.Config) (services.FileStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFirebase:
		if err := configureFirebaseCredentials(); err != nil {
			return nil, err
		}
		app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.Storage.FirebaseBucket})
		if err != nil {
			return nil, err
		}
		return services.NewStorageBucket(ctx, app, cfg.Storage.FirebaseBucket)
	default:
		return services.NewLocalFileStore(cfg.Storage.UploadDir, cfg.Server.BackendURL+services.UploadsRoute)
	}
}
