package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"dsa-interview-service/internal/app"
	"dsa-interview-service/internal/config"
	"dsa-interview-service/internal/infra/memory"
	pgloader "dsa-interview-service/internal/infra/postgres"
	redisinfra "dsa-interview-service/internal/infra/redis"
	"dsa-interview-service/internal/oracle"
	transport "dsa-interview-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interview server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewDefaultBankLoader()
	if pool != nil {
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Interview.BankTTL, 10*time.Minute)
	var banks app.BankRepository
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	var sessions app.SessionRepository
	var archive app.ExportArchiver
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
		archive = redisinfra.NewExportArchive(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var answerOracle oracle.Oracle = oracle.NewHeuristic()
	if cfg.Oracle.APIKey != "" {
		model := cfg.Oracle.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		answerOracle = oracle.NewClient(cfg.Oracle.APIKey, cfg.Oracle.BaseURL, model)
	} else {
		log.Printf("no oracle api key configured, using heuristic scoring")
	}

	service := app.NewInterviewService(app.Config{
		BankID:              cfg.Interview.BankID,
		QuestionsPerSession: cfg.Interview.QuestionsPerSession,
		MaxFollowups:        cfg.Interview.MaxFollowups,
		FollowupThreshold:   cfg.Interview.FollowupThreshold,
		OracleTimeout:       config.TTLDuration(cfg.Interview.OracleTimeout, 30*time.Second),
	}, sessions, banks, answerOracle, archive)

	wsHandler := transport.NewWSHandler(service)
	restHandler := transport.NewRESTHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.HandleFunc("/ws", wsHandler.ServeWS)
	restHandler.Register(router)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting interview service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
