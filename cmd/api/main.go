package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/ai"
	httptransport "github.com/spec-kit/voice-servicedesk/internal/api/http"
	"github.com/spec-kit/voice-servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/voice-servicedesk/internal/config"
	"github.com/spec-kit/voice-servicedesk/internal/events"
	"github.com/spec-kit/voice-servicedesk/internal/observability"
	"github.com/spec-kit/voice-servicedesk/internal/persistence"
	"github.com/spec-kit/voice-servicedesk/internal/realtime"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
	"github.com/spec-kit/voice-servicedesk/internal/service"
	"github.com/spec-kit/voice-servicedesk/internal/textextract"
	"github.com/spec-kit/voice-servicedesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	incidentRepo := repository.NewIncidentRepository(pool)
	configRepo := repository.NewConfigRepository(pool)

	summarizer := ai.NewSummarizer(cfg.Summarizer)
	extractor := textextract.NewPlainText()

	ticketService := service.NewTicketService(ticketRepo, dispatcher)
	knowledgeService := service.NewKnowledgeService(articleRepo, summarizer, extractor, cfg.Summarizer.MaxSentences, logger)
	incidentService := service.NewIncidentService(incidentRepo, dispatcher)
	agentConfigService := service.NewAgentConfigService(configRepo, redis, cfg.Agent, logger)

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	actions := realtime.NewActions(ticketService, knowledgeService, incidentService, logger)
	toolDispatcher := realtime.NewDispatcher(actions, metrics, dispatcher, logger)
	relay := realtime.NewRelay(cfg.Realtime, agentConfigService, toolDispatcher, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 10 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Session:   handlers.NewSessionHandler(cfg.Realtime, logger),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Knowledge: handlers.NewKnowledgeHandler(knowledgeService),
		Incidents: handlers.NewIncidentsHandler(incidentService),
		Admin:     handlers.NewAdminHandler(agentConfigService),
		Relay:     handlers.NewRelayHandler(relay),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
