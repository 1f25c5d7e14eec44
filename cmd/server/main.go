package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stupiduntilnot/smschat/internal/chat"
	"github.com/stupiduntilnot/smschat/internal/config"
	ctxpkg "github.com/stupiduntilnot/smschat/internal/context"
	"github.com/stupiduntilnot/smschat/internal/db"
	"github.com/stupiduntilnot/smschat/internal/history"
	"github.com/stupiduntilnot/smschat/internal/openai"
	"github.com/stupiduntilnot/smschat/internal/web"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, perr := zerolog.ParseLevel(cfg.LogLevel); perr == nil {
		logger = logger.Level(level)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	store := history.NewSQLiteStore(database)
	assembler := &ctxpkg.Assembler{
		Reader:       store,
		SystemPrompt: cfg.SystemPrompt,
		MaxTurns:     cfg.HistoryWindow,
	}
	completer := openai.NewClient(
		cfg.OpenAIAPIKey,
		cfg.OpenAIChatCompURL,
		cfg.OpenAIModel,
		time.Duration(cfg.OpenAITimeoutSeconds)*time.Second,
	)
	orch := chat.NewOrchestrator(store, assembler, completer, logger.With().Str("component", "chat").Logger())

	server, err := web.NewServer(orch, store, cfg.DefaultConversationID, logger.With().Str("component", "web").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build http server")
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Str("addr", cfg.ListenAddr).
			Str("model", cfg.OpenAIModel).
			Str("db_path", cfg.DBPath).
			Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
}
