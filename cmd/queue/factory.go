package queue

import (
	"context"
	"fmt"

	"ytsubs/internal/config"
	fragmentRepo "ytsubs/internal/repository/fragment"
	queueRepo "ytsubs/internal/repository/queue"
	subtitleRepo "ytsubs/internal/repository/subtitle"
	"ytsubs/internal/service/keypool"
	queueSvc "ytsubs/internal/service/queue"
	"ytsubs/internal/service/translation"
	"ytsubs/internal/service/youtube"
)

// Services bundles everything the queue commands need
type Services struct {
	Store       queueSvc.Store
	Coordinator queueSvc.Coordinator
	Runner      translation.JobRunner
	Config      *config.Config
}

// ServiceFactory creates queue service instances
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateServices creates the queue services with all dependencies
func (f *ServiceFactory) CreateServices(ctx context.Context) (*Services, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(cfg.APIKeys) == 0 {
		return nil, nil, fmt.Errorf("no API keys configured; add api_keys to the config file or set YTSUBS_API_KEYS")
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Repositories
	queueRepository := queueRepo.NewRepository(dbPool)
	subtitleRepository := subtitleRepo.NewRepository(dbPool)
	fragmentRepository := fragmentRepo.NewRepository(dbPool)

	// Services
	keys := keypool.NewPool(cfg.APIKeys)
	translator := translation.NewGeminiTranslator()
	runner := translation.NewJobRunner(keys, translator, subtitleRepository, fragmentRepository)
	videos := youtube.NewService()

	store := queueSvc.NewStore(queueRepository, cfg.Translation.ConfigName, cfg.PageSize)
	if err := store.Initialize(ctx); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	coordinator := queueSvc.NewCoordinator(store, runner, videos, fragmentRepository, cfg.Translation)

	cleanup := func() {
		dbPool.Close()
	}

	return &Services{
		Store:       store,
		Coordinator: coordinator,
		Runner:      runner,
		Config:      cfg,
	}, cleanup, nil
}

// withServices runs fn with the provided services, or with factory-built
// ones when services is nil (the nil path is the real CLI; tests inject)
func withServices(services *Services, fn func(ctx context.Context, s *Services) error) error {
	ctx := context.Background()

	if services != nil {
		return fn(ctx, services)
	}

	factory := NewServiceFactory()
	services, cleanup, err := factory.CreateServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to create queue services: %w", err)
	}
	defer cleanup()

	return fn(ctx, services)
}
