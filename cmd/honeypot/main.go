package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MikeSquared-Agency/honeypot/internal/agent"
	"github.com/MikeSquared-Agency/honeypot/internal/anthropic"
	"github.com/MikeSquared-Agency/honeypot/internal/api"
	"github.com/MikeSquared-Agency/honeypot/internal/callback"
	"github.com/MikeSquared-Agency/honeypot/internal/claim"
	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
	"github.com/MikeSquared-Agency/honeypot/internal/config"
	"github.com/MikeSquared-Agency/honeypot/internal/groq"
	"github.com/MikeSquared-Agency/honeypot/internal/hermes"
	"github.com/MikeSquared-Agency/honeypot/internal/persona"
	"github.com/MikeSquared-Agency/honeypot/internal/processor"
	"github.com/MikeSquared-Agency/honeypot/internal/randsrc"
	"github.com/MikeSquared-Agency/honeypot/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel, cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("honeypot starting", "port", cfg.Port, "llm_provider", cfg.LLMProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rng := randsrc.New(cfg.RandomSeed)
	deps := processor.Deps{
		Classifier: classifier.New(classifier.DefaultTable()),
		Strategy:   persona.NewStrategy(rng),
		Agent:      agent.New(newGenerator(cfg), rng, cfg.ReplyTimeout, slog.Default()),
		Reporter:   callback.NewClient(cfg.CallbackURL, cfg.CallbackTimeout, slog.Default()),
	}

	// NATS/Hermes (optional: lifecycle events are dropped without it)
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		deps.Publisher = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	// Report archive (optional)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare report archive", "error", err)
			os.Exit(1)
		}
		deps.Archiver = db
		slog.Info("database connected")
	}

	// Cross-replica callback claims (optional)
	if cfg.RedisURL != "" {
		claimer, err := claim.NewRedisClaimer(ctx, cfg.RedisURL, cfg.ClaimTTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer claimer.Close()
		deps.Claimer = claimer
		slog.Info("redis connected")
	}

	proc := processor.New(deps, processor.Config{
		MaxMessages:     cfg.MaxMessages,
		MinMessages:     cfg.MinMessages,
		CallbackTimeout: cfg.CallbackTimeout,
	}, slog.Default())

	srv := api.NewServer(cfg.Port, cfg.APIKey, proc, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("honeypot ready", "port", cfg.Port)

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
	}

	// Let pending final reports finish before the process exits.
	proc.Wait()
	slog.Info("honeypot stopped", "sessions", proc.SessionCount())
}

// newGenerator picks the reply backend. A nil generator makes every reply
// a canned fallback.
func newGenerator(cfg config.Config) agent.Generator {
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		if cfg.GroqAPIKey == "" {
			slog.Warn("GROQ_API_KEY not set, replies will use fallbacks")
			return nil
		}
		slog.Info("groq client ready", "model", cfg.AIModel)
		return groq.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.AIModel)
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			slog.Warn("ANTHROPIC_API_KEY not set, replies will use fallbacks")
			return nil
		}
		slog.Info("anthropic client ready", "model", cfg.AIModel)
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AIModel)
	default:
		slog.Info("no reply generator configured, replies will use fallbacks")
		return nil
	}
}

func setupLogging(level, file string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
