package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdfquiz/internal/api"
	"pdfquiz/internal/api/handlers"
	"pdfquiz/internal/config"
	"pdfquiz/internal/db"
	"pdfquiz/internal/extract"
	"pdfquiz/internal/gemini"
	"pdfquiz/internal/llm"
	"pdfquiz/internal/notify"
	"pdfquiz/internal/openai"
	"pdfquiz/internal/quizgen"
	"pdfquiz/internal/r2"
	"pdfquiz/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
)

const storeName = "pdfquiz_session"

// newCompleter builds the configured model provider. The returned cleanup
// releases provider resources.
func newCompleter(ctx context.Context, cfg config.Config) (llm.Completer, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		return llm.WithTimeout(client, cfg.LLMTimeout), func() {}, nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return llm.WithTimeout(client, cfg.LLMTimeout), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// newSessionStore returns a Postgres-backed store when a database is
// configured and an in-memory store otherwise.
func newSessionStore(cfg config.Config) (sessions.Store, func(), error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		log.Println("WARNING: SESSION_SECRET environment variable is not set or empty! Using an insecure development key.")
		secret = []byte("pdfquiz-insecure-development-key")
	}

	if cfg.DatabaseURL == "" {
		log.Println("INFO: DATABASE_URL not set. Sessions are kept in memory.")
		return memstore.NewStore(secret), func() {}, nil
	}

	sessionDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection for session store: %w", err)
	}
	if err := sessionDB.Ping(); err != nil {
		sessionDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database for session store: %w", err)
	}
	store, err := session.NewPostgresStore(sessionDB, secret)
	if err != nil {
		sessionDB.Close()
		return nil, nil, fmt.Errorf("failed to create postgres session store: %w", err)
	}
	return store, func() { sessionDB.Close() }, nil
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer, closeCompleter, err := newCompleter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s client: %v", cfg.LLMProvider, err)
	}
	defer closeCompleter()
	log.Printf("INFO: Using %s model provider", cfg.LLMProvider)

	summarizer := quizgen.NewSummarizer(completer, cfg.SummaryThreshold)
	log.Printf("INFO: Summarizing documents longer than %d characters", summarizer.Threshold())
	handler := handlers.NewHandler(extract.Extractor{}, quizgen.NewGenerator(completer, summarizer))

	if cfg.DatabaseURL != "" {
		database, err := db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		handler.History = database
		log.Println("INFO: Quiz history enabled")
	}

	archive, err := r2.NewClient(ctx, cfg.R2)
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}
	if archive != nil {
		handler.Archive = archive
	}

	if discord := notify.NewDiscord(cfg.DiscordWebhookURL); discord != nil {
		handler.Notifier = discord
	}

	store, closeStore, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer closeStore()

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   cfg.SessionSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	router := gin.Default()
	router.Use(sessions.Sessions(storeName, store))
	api.SetupRoutes(router, handler, cfg.FrontendURL)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give in-flight requests 5 seconds to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
