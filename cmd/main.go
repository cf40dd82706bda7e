package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"webgo/internal/adapters"
	"webgo/internal/bootstrap"
	"webgo/internal/bot"
	matchDelivery "webgo/internal/delivery/match"
	ownMiddleware "webgo/internal/middleware"
	repo "webgo/internal/repository"
	matchuc "webgo/internal/usecase/match"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Fatalw("failed to load configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoAdapter := adapters.NewAdapterMongo(cfg, logger)
	if err := mongoAdapter.Init(ctx); err != nil {
		logger.Fatalw("failed to init mongo", "error", err)
	}
	defer mongoAdapter.Close(ctx)

	redisAdapter := adapters.NewAdapterRedis(cfg, logger)
	if err := redisAdapter.Init(ctx); err != nil {
		logger.Fatalw("failed to init redis", "error", err)
	}
	defer redisAdapter.Close(ctx)

	matchRepo := repo.NewMatchRepository(*cfg, logger, redisAdapter.GetClient(), mongoAdapter.Database)
	if err := matchRepo.EnsureBotUsers(ctx); err != nil {
		logger.Fatalw("failed to seed bot users", "error", err)
	}
	sessions := repo.NewSessionRedisStorage(redisAdapter.GetClient(), logger)

	var provider bot.MoveProvider
	if cfg.KatagoAPIURL != "" {
		provider = bot.NewKatagoProvider(cfg.KatagoAPIURL, cfg.KatagoAPIKey, logger)
		logger.Infow("external move provider enabled", "url", cfg.KatagoAPIURL)
	}
	botEngine := bot.NewEngine(logger, provider, time.Duration(cfg.KatagoTimeout)*time.Second)

	matchUC := matchuc.NewMatchUseCase(matchRepo, botEngine, logger)
	hub := matchDelivery.NewHub(logger)
	matchUC.SetBroadcaster(hub)

	handler := matchDelivery.NewMatchHandler(*cfg, logger, matchUC, sessions, hub)

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", handler.HandleCreateGame)
		r.Get("/", handler.HandleListGames)
		r.Post("/join", handler.HandleJoinGame)
		r.Post("/vs-bot", handler.HandleCreateBotGame)
		r.Get("/{id}", handler.HandleGetGame)
		r.Get("/{id}/moves", handler.HandleListMoves)
		r.Get("/{id}/ws", handler.HandleGameSocket)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		logger.Infof("server is running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server stopped", "error", err)
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func waitForShutdown(log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("received shutdown signal")
}
