package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/config"
	"yupp-live-quiz/internal/game"
	"yupp-live-quiz/internal/httpapi"
	"yupp-live-quiz/internal/infra/file"
	"yupp-live-quiz/internal/infra/memory"
	pgloader "yupp-live-quiz/internal/infra/postgres"
	redisinfra "yupp-live-quiz/internal/infra/redis"
	"yupp-live-quiz/internal/transport/ws"
)

// NewServeCmd builds the CLI subcommand to start the host server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz host server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// quizCatalog is what the wiring needs from a backing quiz store: raw loads
// for the cache in front of it, listing for the catalog endpoint.
type quizCatalog interface {
	memory.QuizLoader
	httpapi.QuizLister
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := resolvePort(portFlag, cfg.Server.Port)
	publicURL := cfg.Server.PublicURL
	if publicURL == "" {
		publicURL = "http://localhost:" + finalPort
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	quizDir := cfg.Quiz.Dir
	if quizDir == "" {
		quizDir = "quizzes"
	}
	var catalog quizCatalog = file.NewQuizLoader(quizDir)
	if pool != nil {
		catalog = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes httpapi.QuizSource
	if redisClient != nil {
		quizzes = redisinfra.NewQuizCache(redisClient, catalog, quizTTL)
	} else {
		quizzes = memory.NewQuizCache(catalog, quizTTL)
	}

	hubOpts := []game.HubOption{
		game.WithHubLogger(log),
		game.WithSessionOptions(sessionOptions(cfg, log)...),
	}
	if redisClient != nil {
		hubOpts = append(hubOpts, game.WithPinReserver(redisinfra.NewPinStore(redisClient, redisTTL, log)))
	}
	hub := game.NewHub(hubOpts...)

	api := httpapi.NewServer(hub, quizzes, catalog, publicURL, version, log)
	router := httpapi.NewRouter(api, ws.NewHandler(hub, log).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("quiz host listening", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down")
	case <-ctx.Done():
		log.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Shutdown(shutdownCtx)
	return server.Shutdown(shutdownCtx)
}

// resolvePort picks the listen port: explicit flag or PORT env first, then
// the config file, then the default.
func resolvePort(flagPort, cfgPort string) string {
	if flagPort != "" {
		return flagPort
	}
	if cfgPort != "" {
		return cfgPort
	}
	return "8080"
}

func sessionOptions(cfg config.Config, log *zap.Logger) []game.Option {
	opts := []game.Option{game.WithLogger(log)}
	if d := config.Duration(cfg.Game.StartDelay, 0); d > 0 {
		opts = append(opts, game.WithStartDelay(d))
	}
	if d := config.Duration(cfg.Game.GraceDelay, 0); d > 0 {
		opts = append(opts, game.WithGraceDelay(d))
	}
	return opts
}
