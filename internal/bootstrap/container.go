package bootstrap

import (
	"context"
	"fmt"
	"time"

	"jobmatch-be/internal/config"
	"jobmatch-be/internal/controller"
	"jobmatch-be/internal/handler"
	"jobmatch-be/internal/pkg/logger"
	"jobmatch-be/internal/pkg/mailer"
	"jobmatch-be/internal/repository/memory"
	"jobmatch-be/internal/repository/unitofwork"
	"jobmatch-be/internal/service"
	"jobmatch-be/pkg/embedding/factory"
	"jobmatch-be/pkg/lock"
	"jobmatch-be/pkg/source"

	internalWS "jobmatch-be/internal/websocket"

	pktNats "jobmatch-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	MatchingController controller.IMatchingController
	StatusStream       *handler.StatusStreamHandler

	// Services
	IndexingService service.IIndexingService
	MatchingService service.IMatchingService

	// Background (run by main)
	Hub           *internalWS.Hub
	Worker        *service.IndexingWorker
	EventConsumer service.ISourceEventConsumer // nil when NATS is disabled

	closers []func()
}

// NewContainer wires the service. db may be nil when the memory storage
// driver is selected.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production", cfg.App.LogLevel)
	c := &Container{Logger: sysLogger}

	// 1. Storage
	var uowFactory unitofwork.RepositoryFactory
	switch cfg.Database.StorageDriver {
	case "memory":
		uowFactory = memory.NewRepositoryFactory()
		sysLogger.Warn("BOOTSTRAP", "Using in-memory storage, state is lost on restart", nil)
	case "postgres", "":
		if db == nil {
			return nil, fmt.Errorf("postgres storage selected but no database connection given")
		}
		uowFactory = unitofwork.NewRepositoryFactory(db)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Database.StorageDriver)
	}

	// 2. In-process bus for worker nudges
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	publisherService := service.NewPublisherService(cfg.Messaging.NudgeTopic, pubSub)

	// 3. External capabilities
	embeddingProvider, err := factory.NewEmbeddingProvider(factory.Options{
		Provider:       cfg.Ai.EmbeddingProvider,
		GeminiApiKey:   cfg.Keys.GoogleGemini,
		OllamaBaseURL:  cfg.Ai.OllamaBaseURL,
		OllamaModel:    cfg.Ai.OllamaModel,
		JinaApiKey:     cfg.Keys.Jina,
		OpenAIApiKey:   cfg.Keys.OpenAI,
		OpenAIBaseURL:  cfg.Ai.OpenAIBaseURL,
		Dimensions:     cfg.Ai.EmbeddingDimensions,
		RequestsPerSec: cfg.Ai.RequestsPerSecond,
		Burst:          cfg.Ai.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider":   cfg.Ai.EmbeddingProvider,
		"dimensions": cfg.Ai.EmbeddingDimensions,
	})

	jobSource := source.NewHTTPJobSource(cfg.Sources.JobServiceURL, cfg.Sources.ServiceToken, cfg.Sources.Timeout)
	profileSource := source.NewHTTPProfileSource(cfg.Sources.ProfileServiceURL, cfg.Sources.ServiceToken, cfg.Sources.Timeout)
	cachedJobs := source.NewCachedJobSource(jobSource, cfg.Sources.CacheTTL)
	cachedProfiles := source.NewCachedProfileSource(profileSource, cfg.Sources.CacheTTL)

	// 4. NATS (optional)
	var (
		busOutcomes service.IIndexingEventPublisher
		subscriber  *pktNats.Subscriber
	)
	if cfg.Messaging.NatsEnabled {
		conn, err := pktNats.Connect(cfg.Messaging.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS unavailable, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := conn.EnsureStream(ctx, cfg.Messaging.StreamAge); err != nil {
				sysLogger.Warn("BOOTSTRAP", "Could not ensure NATS stream", map[string]interface{}{"error": err.Error()})
			}
			cancel()
			busOutcomes = service.NewIndexingEventPublisher(pktNats.NewPublisher(conn), sysLogger)
			subscriber = pktNats.NewSubscriber(conn, sysLogger)
			c.closers = append(c.closers, subscriber.Stop, conn.Close)
		}
	}

	// 5. Redis (optional): leader lease and cross-replica status relay
	var (
		lease lock.Lease = lock.NoopLease{}
		rdb   *redis.Client
	)
	if cfg.Messaging.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.Messaging.RedisURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Invalid Redis URL, using direct address", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.Messaging.RedisURL}
		}
		client := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Redis unavailable, running single-instance", map[string]interface{}{"error": err.Error()})
			_ = client.Close()
		} else {
			rdb = client
			c.closers = append(c.closers, func() { _ = rdb.Close() })
			if cfg.Messaging.LeaderLockKey != "" {
				lease = lock.NewRedisLease(rdb, cfg.Messaging.LeaderLockKey)
			}
		}
	}

	// 6. Outcome sinks: bus events, live status stream, operator alerts
	c.Hub = internalWS.NewHub(rdb, cfg.Messaging.StatusChannel, sysLogger)
	var alerts service.IIndexingEventPublisher
	if cfg.Mail.Host != "" && len(cfg.Mail.AlertRecipients) > 0 {
		mail := mailer.NewEmailService(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.AlertRecipients)
		alerts = service.NewExhaustionAlerter(mail, sysLogger)
	}
	outcomes := service.NewFanoutIndexingEventPublisher(
		busOutcomes,
		service.NewStatusNotifier(c.Hub, cachedJobs, sysLogger),
		alerts,
	)

	// 7. Services
	c.IndexingService = service.NewIndexingService(uowFactory, jobSource, publisherService, sysLogger)
	c.MatchingService = service.NewMatchingService(uowFactory, cachedJobs, cachedProfiles, sysLogger, service.MatchingConfig{
		TopK:              cfg.Worker.MatchTopK,
		EnrichConcurrency: cfg.Worker.EnrichConcurrency,
	})

	processor := service.NewDocumentProcessor(uowFactory, jobSource, profileSource, embeddingProvider, outcomes, sysLogger, service.ProcessorConfig{
		InstanceId: cfg.App.InstanceId,
		LeaseTTL:   cfg.Worker.LeaseTTL,
		Dimensions: cfg.Ai.EmbeddingDimensions,
	})

	c.Worker = service.NewIndexingWorker(service.WorkerConfig{
		InstanceId:     cfg.App.InstanceId,
		PollInterval:   cfg.Worker.PollInterval,
		BatchSize:      cfg.Worker.BatchSize,
		MaxConcurrency: cfg.Worker.MaxConcurrency,
		LeaseTTL:       cfg.Worker.LeaseTTL,
	}, uowFactory, processor, lease, sysLogger).WithNudges(pubSub, cfg.Messaging.NudgeTopic)

	if subscriber != nil {
		c.EventConsumer = service.NewSourceEventConsumer(subscriber, c.IndexingService, cachedJobs, cachedProfiles, sysLogger)
	}

	// 8. Controllers
	c.MatchingController = controller.NewMatchingController(c.MatchingService, c.IndexingService)
	c.StatusStream = handler.NewStatusStreamHandler(c.Hub, sysLogger)

	return c, nil
}

// Close releases bus and Redis connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
