package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"smartshop-labs/smartshop/internal/ai"
	"smartshop-labs/smartshop/internal/cache"
	"smartshop-labs/smartshop/internal/catalog"
	"smartshop-labs/smartshop/internal/chatbot"
	"smartshop-labs/smartshop/internal/config"
	"smartshop-labs/smartshop/internal/db"
	"smartshop-labs/smartshop/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API server",
	Long: `Serves the chat UI, the catalog pages, and the JSON API (/api/chat,
/api/products) plus /healthz and /metrics. Redis (REDIS_ADDR) enables
response caching and per-IP rate limiting; without it the server runs
uncached and unlimited. Without GEMINI_API_KEY replies use the built-in
wording and /search is disabled.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer() {
	// 1. Setup
	appCfg, err := config.GetAppConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(appCfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	database, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	defer database.Close()

	// 2. Optional AI. The engine degrades to rule-based replies without it.
	ctx := context.Background()
	aiClient, err := ai.NewClient(ctx, appCfg.GeminiModel)
	if err != nil {
		if !errors.Is(err, ai.ErrNoAPIKey) {
			log.Fatalf("Failed to initialize AI: %v", err)
		}
		logger.Warn("GEMINI_API_KEY not set, running with built-in replies")
	}
	defer aiClient.Close()

	// 3. Optional Redis
	var cacheClient *cache.Client
	if appCfg.RedisAddr != "" {
		cacheClient, err = cache.NewClient(appCfg.RedisAddr)
		if err != nil {
			log.Fatalf("Redis error: %v", err)
		}
		defer cacheClient.Close()
	} else {
		logger.Warn("REDIS_ADDR not set, caching and rate limits disabled")
	}

	// 4. Wire the server
	engine := chatbot.NewEngine(catalog.New(database), aiClient)
	srv, err := web.NewServer(database, engine, aiClient, cacheClient, logger)
	if err != nil {
		log.Fatalf("Server setup failed: %v", err)
	}

	server := &http.Server{
		Addr:         appCfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// 5. Run until interrupted, then drain
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server_started", "addr", appCfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	logger.Info("shutting_down", "timeout", appCfg.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "err", err)
	}
}
