package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"secure-quiz-service/internal/app"
	"secure-quiz-service/internal/config"
	"secure-quiz-service/internal/crypto"
	"secure-quiz-service/internal/infra/memory"
	"secure-quiz-service/internal/infra/postgres"
	redisinfra "secure-quiz-service/internal/infra/redis"
	transport "secure-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// openStore picks Postgres when configured and falls back to the in-memory store.
func openStore(ctx context.Context, cfg config.Config) (app.Store, func(), error) {
	if cfg.Postgres.URL == "" {
		log.Printf("postgres not configured, using in-memory store")
		return memory.NewStore(), func() {}, nil
	}
	if err := runMigrations(ctx, cfg); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func storeRetrier(cfg config.Config) app.Retrier {
	return app.NewRetrier(cfg.Store.Retries, config.TTLDuration(cfg.Store.RetryBackoff, 100*time.Millisecond))
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	codec, err := crypto.New(cfg.Crypto.Secret)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var denylist app.TokenDenylist = memory.NewTokenDenylist()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		denylist = redisinfra.NewTokenDenylist(redisClient)
	}

	retry := storeRetrier(cfg)
	quizzes := app.NewQuizService(store, codec,
		app.WithRetrier(retry),
		app.WithTimeLimit(config.TTLDuration(cfg.Quiz.TimeLimit, time.Hour)),
	)
	services := transport.Services{
		Auth:    app.NewAuthService(store, denylist, cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour), retry),
		Admin:   app.NewAdminService(store, retry),
		Teacher: app.NewTeacherService(store, codec, retry),
		Quizzes: quizzes,
		Results: app.NewResultService(store, codec, retry),
	}
	router := transport.NewRouter(services, transport.NewClockHandler(quizzes), cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	log.Printf("starting quiz service on :%s", finalPort)
	return serve(ctx, server)
}

// serve runs server until a signal, ctx cancellation, or a listen failure.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		log.Printf("failed to start server: %v", err)
		return err
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
