package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	negotiatorx "github.com/dataseed/cobranza-agent/agent/agents/negotiator"
	orchestratorx "github.com/dataseed/cobranza-agent/agent/agents/orchestrator"
	contractx "github.com/dataseed/cobranza-agent/agent/contract"
	llmx "github.com/dataseed/cobranza-agent/agent/llm"
	repox "github.com/dataseed/cobranza-agent/agent/repo"
	sessionx "github.com/dataseed/cobranza-agent/agent/session"
	toolx "github.com/dataseed/cobranza-agent/agent/tool"
	configx "github.com/dataseed/cobranza-agent/pkg/config"
	httpserverx "github.com/dataseed/cobranza-agent/pkg/httpserver"
	_ "github.com/dataseed/cobranza-agent/pkg/logger/autoload"
	ollamax "github.com/dataseed/cobranza-agent/pkg/ollama"
)

type AppConfig struct {
	SessionBackend string        `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
	RepoBackend    string        `envconfig:"REPO_BACKEND" split_words:"true" default:"memory"`
	TurnTimeout    time.Duration `envconfig:"TURN_TIMEOUT" split_words:"true" default:"60s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	serverCfg := configx.MustNew[httpserverx.Config]("SERVER")

	repo := buildRepository(*appCfg)
	store := buildSessionStore(ctx, *appCfg)

	catalog := toolx.NewCatalog(repo, time.Now)
	registry, err := negotiatorx.NewRegistry(ctx, *llmCfg, catalog.Infos(), catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build model registry")
	}

	agent, err := orchestratorx.New(store, registry, orchestratorx.Config{
		TurnTimeout: appCfg.TurnTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	probe := ollamax.HealthProbe(ollamax.NewClient(llmCfg.OllamaFor(contractx.AgentTypeResponder)))
	server, err := httpserverx.New(agent, repo, probe, *serverCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build http server")
	}

	log.Info().
		Str("session_backend", appCfg.SessionBackend).
		Str("repo_backend", appCfg.RepoBackend).
		Str("model", llmCfg.Model).
		Msg("cobranza agent starting")

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("cobranza agent stopped")
}

func buildRepository(cfg AppConfig) repox.Repository {
	switch strings.ToLower(strings.TrimSpace(cfg.RepoBackend)) {
	case "postgres":
		bunCfg := configx.MustNew[repox.BunConfig]("POSTGRES")
		repo, err := repox.NewBunRepository(*bunCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		return repo
	case "", "memory":
		return repox.NewMemoryRepository(nil)
	default:
		log.Fatal().Str("backend", cfg.RepoBackend).Msg("unknown repo backend")
		return nil
	}
}

func buildSessionStore(ctx context.Context, cfg AppConfig) sessionx.Store {
	switch strings.ToLower(strings.TrimSpace(cfg.SessionBackend)) {
	case "redis":
		redisCfg := configx.MustNew[sessionx.RedisConfig]("REDIS")
		store, err := sessionx.NewRedisStore(ctx, *redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		return store
	case "", "memory":
		return sessionx.NewMemoryStore()
	default:
		log.Fatal().Str("backend", cfg.SessionBackend).Msg("unknown session backend")
		return nil
	}
}
