package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jerusalem-quest/internal/app"
	"jerusalem-quest/internal/catalog"
	"jerusalem-quest/internal/config"
	"jerusalem-quest/internal/infra/memory"
	"jerusalem-quest/internal/infra/postgres"
	redisinfra "jerusalem-quest/internal/infra/redis"
	"jerusalem-quest/internal/logger"
	transport "jerusalem-quest/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = postgres.NewPool(ctx, cfg.Postgres.URL, postgres.PoolConfig{MaxConns: 10, MaxConnLifetime: time.Hour})
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
	} else {
		bundled, err := catalog.Bundled()
		if err != nil {
			return err
		}
		loader = memory.NewStaticQuestionLoader(bundled)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	var feed app.LeaderboardFeed
	if redisClient != nil {
		questions = redisinfra.NewQuestionRepository(redisClient, loader, config.TTLDuration(cfg.Redis.TTL, catalogTTL))
		feed = redisinfra.NewFeed(redisClient)
	} else {
		questions = memory.NewQuestionRepository(loader, catalogTTL)
		feed = memory.NewFeed()
	}

	var (
		players  app.PlayerRepository
		sessions app.SessionRepository
	)
	if pool != nil {
		players = postgres.NewPlayerRepository(pool)
		sessions = postgres.NewSessionRepository(pool, postgres.NewTransactor(pool))
	} else {
		log.Warn("postgres not configured, players and sessions are kept in memory")
		playerStore := memory.NewPlayerStore()
		players = playerStore
		sessions = memory.NewSessionStore(playerStore)
	}

	service := app.NewQuizService(players, sessions, questions, feed,
		app.Config{QuestionsPerSession: cfg.Game.QuestionsPerSession},
		app.WithLogger(log),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, log, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting game service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
