package main

import (
	"complykit/internal/cache"
	"complykit/internal/config"
	"complykit/internal/logger"
	"complykit/internal/questionnaire"
	"complykit/internal/repository"
	"complykit/internal/service"
	"complykit/internal/transport/rest"
	"complykit/internal/transport/ws"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config, so this is the one plain exit.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	log.Info("AI config",
		zap.String("summary_model", cfg.AI.Models.Summary),
		zap.String("document_model", cfg.AI.Models.Document),
		zap.Bool("api_key_configured", cfg.AI.IsEnabled()),
	)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := mongoClient.Database(cfg.Mongo.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return err
	}
	log.Info("connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	// Initialize repositories
	resultRepo := repository.NewResultRepo(db)
	documentRepo := repository.NewDocumentRepo(db)
	if err := resultRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to create result indexes", zap.Error(err))
	}

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb, cfg.Cache.SessionTTL)
	pendingCache := cache.NewPendingCache(rdb, cfg.Cache.PendingTTL)
	latestCache := cache.NewLatestCache(rdb, cfg.Cache.PendingTTL)
	summaryCache := cache.NewSummaryCache(rdb, cfg.Cache.SummaryTTL)

	// Initialize services
	generator := service.NewGenerator(&cfg.AI, log)
	authSvc := service.NewAuthService(cfg.Auth)
	resultSvc := service.NewResultService(resultRepo, pendingCache, latestCache, log)
	summarySvc := service.NewSummaryService(generator, summaryCache, cfg.AI.Timeout(), log)
	questionnaireSvc := service.NewQuestionnaireService(questionnaire.Default(), sessionCache, resultSvc, summarySvc, log)
	documentSvc := service.NewDocumentService(resultSvc, documentRepo, generator, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	summarySvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:          authSvc,
		QuestionnaireService: questionnaireSvc,
		ResultService:        resultSvc,
		SummaryService:       summarySvc,
		DocumentService:      documentSvc,
		WSHub:                wsHub,
		CORSAllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		Logger:               log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}
