package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mraditya/leaguesim/internal/brain"
	"github.com/mraditya/leaguesim/internal/config"
	"github.com/mraditya/leaguesim/internal/eventlog"
	"github.com/mraditya/leaguesim/internal/interfaces/httpapi"
	"github.com/mraditya/leaguesim/internal/platform/cache"
	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/platform/resilience"
	"github.com/mraditya/leaguesim/internal/usecase"
)

// Application wires the store, the orchestrator and the read side together.
// It is the composition root shared by the serve and simulate commands.
type Application struct {
	Config       config.Config
	Logger       *logging.Logger
	Store        *eventlog.Store
	Orchestrator *usecase.Orchestrator
	Projections  *usecase.Projections
	Stream       *httpapi.Stream
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("service", cfg.ServiceName)

	store, err := eventlog.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	if cfg.ResetDB {
		if err := store.Reset(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("reset event log: %w", err)
		}
		logger.InfoContext(ctx, "event log reset", "db_path", cfg.DBPath)
	}

	var c *cache.Store
	if cfg.CacheEnabled {
		c = cache.NewStore(cfg.CacheTTL)
	}

	stream := httpapi.NewStream(logger)
	orc := usecase.NewOrchestrator(usecase.OrchestratorConfig{
		Store:            store,
		Provider:         buildProvider(cfg, logger),
		Logger:           logger,
		Cache:            c,
		Seed:             cfg.WorldSeed,
		WorkerCount:      cfg.WorkerCount,
		SnapshotEvery:    cfg.SnapshotEvery,
		StrictReplay:     cfg.StrictReplay,
		SoftStateTimeout: cfg.SoftStateTimeout,
		OnAppend:         stream.Publish,
	})
	if err := orc.Bootstrap(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("bootstrap world: %w", err)
	}

	return &Application{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Orchestrator: orc,
		Projections:  usecase.NewProjections(orc, c),
		Stream:       stream,
	}, nil
}

func buildProvider(cfg config.Config, logger *logging.Logger) brain.Provider {
	if cfg.LLMProvider == config.ProviderLMStudio {
		return brain.NewLMStudioProvider(brain.LMStudioConfig{
			BaseURL:     cfg.LLMBaseURL,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.LLMTimeout,
			Logger:      logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.LLMCircuitEnabled,
				FailureThreshold: cfg.LLMCircuitFailureCount,
				OpenTimeout:      cfg.LLMCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.LLMCircuitHalfOpenMaxRq,
			},
		})
	}
	return brain.NewLocalProvider()
}

func (a *Application) HTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.Orchestrator, a.Projections, a.Stream, a.Logger)
	router := httpapi.NewRouter(handler, a.Logger, a.Config.CORSAllowedOrigins)

	server := &http.Server{
		Addr:        a.Config.HTTPAddr,
		Handler:     router,
		ReadTimeout: a.Config.ReadTimeout,
		// WriteTimeout stays zero by default: the SSE stream must be
		// allowed to outlive any fixed response deadline.
		WriteTimeout: a.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func (a *Application) Close() error {
	return a.Store.Close()
}
