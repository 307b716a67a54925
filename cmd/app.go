package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/ai"
	"github.com/spigell/bewatu/internal/ai/gemini"
	"github.com/spigell/bewatu/internal/filtering"
	"github.com/spigell/bewatu/internal/logger"
	"github.com/spigell/bewatu/internal/network"
	"github.com/spigell/bewatu/internal/secrets"
	"github.com/spigell/bewatu/internal/service"
	"github.com/spigell/bewatu/internal/session"
)

const providerGemini = "gemini"

// runtime is what every command that touches the network needs.
type runtime struct {
	config  *Config
	logger  *zap.Logger
	store   session.Store
	service *service.Service
}

func (r *runtime) close() {
	closeStore(r.store, r.logger)
	_ = r.logger.Sync()
}

// closeStore releases backends holding connections, such as redis.
func closeStore(store session.Store, logger *zap.Logger) {
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("closing session store", zap.Error(err))
		}
	}
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// setup loads the config and builds the service. Problems here are fatal.
func setup(ctx context.Context, metrics *service.Metrics) *runtime {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the bewatu", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := newStore(ctx, config.Cache)
	if err != nil {
		logger.Fatal("creating a session store", zap.Error(err), zap.String("backend", config.Cache.Backend))
	}

	generator, searcher, err := newAI(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"creating the ai client",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	svc, err := service.New(service.Options{
		Store:        store,
		Generator:    generator,
		Searcher:     searcher,
		Filters:      newFilters(config.Feed),
		FilterConfig: &filtering.Config{MutedAuthors: config.Feed.MutedAuthors, HiddenFile: config.Feed.HiddenFile},
		Metrics:      metrics,
		Language:     config.AI.Language,
		CurrentUser:  config.Profile.user(),
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("creating the service", zap.Error(err))
	}

	return &runtime{config: config, logger: logger, store: store, service: svc}
}

// cacheBackend normalizes the configured backend name. Empty means memory.
func cacheBackend(cfg *CacheConfig) string {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		return session.BackendMemory
	}
	return backend
}

func newStore(ctx context.Context, cfg *CacheConfig) (session.Store, error) {
	switch cacheBackend(cfg) {
	case session.BackendMemory:
		return session.NewMemory(cfg.TTL), nil
	case session.BackendRedis:
		opts := session.RedisOptions{TTL: cfg.TTL}
		if cfg.Redis != nil {
			opts.Addr = cfg.Redis.Addr
			opts.Password = cfg.Redis.Password
			opts.DB = cfg.Redis.DB
			opts.Prefix = cfg.Redis.Prefix
		}
		store, err := session.NewRedis(ctx, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

func newAI(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.NetworkGenerator, ai.CandidateSearcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, err
	}

	generator, err := newGeminiGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger)
	if err != nil {
		return nil, nil, err
	}

	searchGenerator := generator
	if model := strings.TrimSpace(cfg.Gemini.SearchModel); model != "" && model != generator.Model() {
		searchGenerator, err = newGeminiGenerator(ctx, apiKey, model, cfg.Gemini.MaxRetries, logger)
		if err != nil {
			return nil, nil, err
		}
	}

	networkGenerator := gemini.NewNetworkGenerator(generator, cfg.Gemini.MaxLogLength,
		logger.With(zap.String("component", "network_generator")))
	searcher := gemini.NewSearcher(searchGenerator, cfg.Gemini.MaxLogLength,
		logger.With(zap.String("component", "candidate_search")))

	return networkGenerator, searcher, nil
}

func newGeminiGenerator(ctx context.Context, apiKey, model string, retries int, log *zap.Logger) (*gemini.Generator, error) {
	genLogger := logger.WithCommonFields(log, providerGemini, model).With(
		zap.Int("ai_retry_attempts", retries),
	)
	return gemini.NewGenerator(ctx, apiKey, model, retries, genLogger)
}

func newFilters(cfg *FeedConfig) []filtering.Filter {
	steps := filtering.Default()
	if !cfg.HideUnknownAuthors {
		filtering.DisableByName(steps, "unknown_authors", "feed.hide-unknown-authors is false")
	}
	return steps
}

func (p *ProfileConfig) user() *network.User {
	if p == nil || p.ID == 0 {
		return nil
	}
	return &network.User{ID: p.ID, Name: p.Name, Headline: p.Headline, Industry: p.Industry}
}

// newMetrics registers the service metrics with reg.
func newMetrics(reg prometheus.Registerer) *service.Metrics {
	metrics := service.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		log.Fatalf("registering metrics: %v", err)
	}
	return metrics
}
