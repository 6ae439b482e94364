package main

import (
	"fmt"
	"log/slog"
	"os"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/unanue/mostrador"
	redisadapter "github.com/unanue/mostrador/internal/adapters/redis"
	"github.com/unanue/mostrador/internal/config"
	"github.com/unanue/mostrador/internal/kb"
	"github.com/unanue/mostrador/internal/llm"
	"github.com/unanue/mostrador/internal/logging"
	"github.com/unanue/mostrador/internal/runtime"
	"github.com/unanue/mostrador/pkg/adapters/memory"
)

var rootCmd = &cobra.Command{
	Use:   "mostrador",
	Short: "Mostrador is a conversational intake assistant for in-store IT incidents",
	Long: `Mostrador guides store employees through reporting IT incidents: it
authenticates them against the employee directory, classifies the request,
proposes solutions from the knowledge base and escalates with a tracking code
when self-service is not enough.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return logging.New(level)
}

// buildAssistant wires the assistant from configuration. The returned cleanup
// closes any network clients it opened.
func buildAssistant(cfg *config.Config, logger *slog.Logger, extra ...mostrador.Option) (*mostrador.Assistant, func(), error) {
	cleanup := func() {}

	base := kb.Default()
	if cfg.KBPath != "" {
		f, err := os.Open(cfg.KBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open knowledge base: %w", err)
		}
		base, err = kb.Load(f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
	}

	opts := []mostrador.Option{
		mostrador.WithLogger(logger),
		mostrador.WithKnowledgeBase(base),
		mostrador.WithIncidentStore(memory.NewIncidentBook(cfg.CodePrefix)),
		mostrador.WithEngineOptions(runtime.WithNodeTimeout(cfg.NodeTimeout)),
	}

	if cfg.UseRedis() {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisadapter.NewFromClient(client,
			redisadapter.WithPrefix(cfg.KeyPrefix),
			redisadapter.WithTTL(cfg.SessionTTL),
		)
		opts = append(opts,
			mostrador.WithStateStore(store),
			mostrador.WithDistributedLocker(redisadapter.NewLocker(client, cfg.KeyPrefix)),
		)
		cleanup = func() { _ = client.Close() }
	}

	if cfg.OpenAIKey != "" {
		model, err := llm.NewClient(llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			MaxRetries: cfg.MaxRetries,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts, mostrador.WithLanguageModel(model))
	} else {
		logger.Info("no OpenAI key configured, classification runs keyword-only")
	}

	assistant, err := mostrador.New(append(opts, extra...)...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return assistant, cleanup, nil
}
