package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mindmate/mindmate-backend/internal/chat"
	"github.com/mindmate/mindmate-backend/internal/config"
	"github.com/mindmate/mindmate-backend/internal/database"
	"github.com/mindmate/mindmate-backend/internal/handlers"
	"github.com/mindmate/mindmate-backend/internal/routes"
	"github.com/mindmate/mindmate-backend/internal/services"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to SQL store", zap.String("driver", cfg.DBDriver))
	db, err := database.OpenSQL(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.InitTables(ctx, db, cfg.DBDriver); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		log.Info("connecting to Redis")
		if redisClient, err = database.ConnectRedis(ctx, cfg.RedisURI); err != nil {
			return err
		}
		defer redisClient.Close()
	}

	sessions, err := newSessionStore(cfg, redisClient)
	if err != nil {
		return err
	}

	moods := services.NewMoodService(db, cfg.DBDriver)
	if redisClient != nil {
		moods.WithCache(services.NewCacheService(redisClient))
	}

	deps := handlers.Deps{
		Config:   cfg,
		Log:      log,
		Users:    services.NewUserService(db, cfg.DBDriver),
		Journals: services.NewJournalService(db, cfg.DBDriver),
		Moods:    moods,
		Sessions: sessions,
	}

	if cfg.MongoURI != "" {
		log.Info("connecting to MongoDB")
		mongoClient, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer database.DisconnectMongo(mongoClient)

		exercises := services.NewExerciseService(mdb)
		if err := exercises.EnsureIndexes(ctx); err != nil {
			log.Warn("failed to ensure exercise session indexes", zap.Error(err))
		}
		deps.Exercises = exercises
	} else {
		log.Warn("MONGODB_URI not set; exercise session log disabled")
	}

	if cfg.CloudinaryConfigured() {
		uploader, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warn("failed to initialize Cloudinary; attachments disabled", zap.Error(err))
		} else {
			deps.Attachments = uploader
		}
	} else {
		log.Warn("Cloudinary credentials not found; attachments disabled")
	}

	provider, err := chat.NewProvider(ctx, cfg.Chat, log)
	if err != nil {
		return err
	}
	deps.Chat = provider

	router := routes.NewRouter(handlers.New(deps), routes.Options{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		Redis:          redisClient,
		Sessions:       sessions,
		SessionCookie:  cfg.SessionCookie,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Hosted providers may take the whole chat timeout to answer.
		WriteTimeout: cfg.Chat.Timeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
		BaseContext:  requestBaseContext(ctx),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("MindMate backend listening",
			zap.String("addr", srv.Addr),
			zap.String("chat_provider", provider.Name()),
			zap.String("session_backend", cfg.SessionBackend),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestBaseContext keeps the values of ctx for every request but not its
// cancellation: a signal starts Shutdown, which drains in-flight requests
// up to shutdownTimeout instead of aborting them.
func requestBaseContext(ctx context.Context) func(net.Listener) context.Context {
	base := context.WithoutCancel(ctx)
	return func(net.Listener) context.Context { return base }
}

func newSessionStore(cfg *config.Config, client *redis.Client) (services.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		if client == nil {
			return nil, errors.New("redis session backend selected but Redis is not connected")
		}
		return services.NewRedisSessionStore(client, cfg.SessionTTL), nil
	default:
		return services.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL), nil
	}
}
