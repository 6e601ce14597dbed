package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/ready-to-send/internal/config"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
	"github.com/kirillkom/ready-to-send/internal/core/usecase"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/archive/zipwriter"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/extractor"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/llm/openai"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/llm/throttle"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/queue/nats"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/resilience"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/storage/memory"
	"github.com/kirillkom/ready-to-send/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Organizer *usecase.OrganizeUseCase
	Waitlist  *usecase.WaitlistUseCase
	Stager    ports.Stager
	Metrics   *metrics.HTTPServerMetrics

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	pipelineMetrics := metrics.NewPipelineMetrics("api", httpMetrics.Registry())
	app.Metrics = httpMetrics

	stager, err := NewStager(cfg)
	if err != nil {
		return nil, err
	}
	app.Stager = stager

	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.PublishConfig()),
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
		app.closeFns = append(app.closeFns, publisher.Close)
	}

	store, err := newWaitlistStore(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	organizer, err := NewOrganizer(cfg, events, pipelineMetrics)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Organizer = organizer
	app.Waitlist = usecase.NewWaitlistUseCase(store, events)
	return app, nil
}

// NewOrganizer wires the extraction, classification and archive pipeline.
// events and observer may be nil.
func NewOrganizer(cfg config.Config, events ports.EventPublisher, observer ports.PipelineObserver) (*usecase.OrganizeUseCase, error) {
	aiConfig := resilience.DefaultConfig()
	aiConfig.Breaker.Enabled = cfg.BreakerEnabled
	exec := resilience.NewExecutor(aiConfig)

	var (
		ocr        ports.OCRService
		classifier ports.PlanClassifier
	)
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client := openai.New(openai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			OCRModel:  cfg.OpenAIOCRModel,
			PlanModel: cfg.OpenAIPlanModel,
		}, exec)
		ocr = openai.NewOCR(client)
		classifier = openai.NewClassifier(client)
	case config.ProviderOllama:
		client := ollama.New(cfg.OllamaURL, cfg.OllamaPlanModel, cfg.OllamaVisionModel, exec)
		ocr = ollama.NewOCR(client)
		classifier = ollama.NewClassifier(client)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
	ocr = throttle.NewOCR(ocr, cfg.OCRRateLimitRPS, cfg.OCRRateLimitBurst)

	return usecase.NewOrganizeUseCase(
		extractor.New(ocr),
		classifier,
		zipwriter.New(),
		events,
		observer,
		usecase.OrganizeOptions{
			MaxFiles:        cfg.MaxFiles,
			MaxFileBytes:    cfg.MaxFileBytes(),
			MaxTextChars:    cfg.MaxTextChars,
			Concurrency:     cfg.ExtractConcurrency,
			ClassifyTimeout: cfg.ClassifyTimeout(),
		},
	), nil
}

func NewStager(cfg config.Config) (ports.Stager, error) {
	switch cfg.StagingMode {
	case config.StagingDisk:
		stager, err := localfs.NewStager(cfg.StagingDir)
		if err != nil {
			return nil, fmt.Errorf("init disk staging: %w", err)
		}
		return stager, nil
	case config.StagingMemory, "":
		return memory.NewStager(), nil
	default:
		return nil, fmt.Errorf("unsupported staging mode %q", cfg.StagingMode)
	}
}

func newWaitlistStore(ctx context.Context, cfg config.Config, app *App) (ports.WaitlistStore, error) {
	if cfg.PostgresDSN == "" {
		log, err := localfs.NewWaitlistLog(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("init waitlist log: %w", err)
		}
		return log, nil
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	app.closeFns = append(app.closeFns, func() { _ = db.Close() })

	repo := postgres.NewWaitlistRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo, nil
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
