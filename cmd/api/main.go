package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hackmentor/hackmentor/internal/auth"
	"github.com/hackmentor/hackmentor/internal/config"
	"github.com/hackmentor/hackmentor/internal/handler"
	"github.com/hackmentor/hackmentor/internal/handler/relay"
	"github.com/hackmentor/hackmentor/internal/service/ai"
	"github.com/hackmentor/hackmentor/internal/service/chat"
	"github.com/hackmentor/hackmentor/internal/store"
	"github.com/hackmentor/hackmentor/internal/store/memory"
	"github.com/hackmentor/hackmentor/internal/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var st store.Store
	if cfg.Database.Path != "" {
		sqliteStore, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer sqliteStore.Close()
		st = sqliteStore
		log.Printf("using sqlite store at %s", cfg.Database.Path)
	} else {
		st = memory.NewStore()
		log.Println("DATABASE_PATH not set, using in-memory store")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	chatService := chat.NewService(st, st)

	// The relay degrades to 503 when the model is not configured; the rest
	// of the API keeps working.
	var model relay.ModelClient
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check ARK_API_KEY and MODEL")
		} else {
			model = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, skipping AI initialization")
	}

	relayHandler := relay.New(model, chatService, cfg.Relay.ChunkSize, cfg.Relay.ChunkDelay)
	router := handler.NewRouter(st, chatService, tokens, relayHandler)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("hackmentor backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
