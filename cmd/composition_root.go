package cmd

import (
	"kapgel/internal/adapters/in/http"
	"kapgel/internal/adapters/out/asynqnotify"
	"kapgel/internal/adapters/out/postgres"
	"kapgel/internal/adapters/out/redispub"
	"kapgel/internal/core/application/usecases/commands"
	"kapgel/internal/core/application/usecases/queries"
	"kapgel/internal/core/ports"
	"kapgel/internal/jobs"
	"kapgel/internal/pkg/ratelimit"
	"kapgel/internal/realtime"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters into handlers. Everything here is plain
// construction; no business rules.
type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	hub         *realtime.Hub
	publisher   ports.EventPublisher
	notifier    *asynqnotify.Notifier
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCompositionRoot builds the object graph. With a Redis address configured,
// events are mirrored onto Redis pub/sub and notifications are queued; without
// one the engine runs single-instance with in-process fan-out only.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *zap.Logger) *CompositionRoot {
	hub := realtime.NewHub(logger)

	var publisher ports.EventPublisher = hub
	var redisClient *redis.Client
	if config.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		publisher = realtime.MultiPublisher{hub, redispub.NewPublisher(redisClient, logger)}
	}

	notifier := asynqnotify.NewNotifier(config.RedisAddr, config.RedisPassword, config.RedisDB, logger)

	return &CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		hub:         hub,
		publisher:   publisher,
		notifier:    notifier,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Close releases external connections held by the root.
func (c *CompositionRoot) Close() {
	if err := c.notifier.Close(); err != nil {
		c.logger.Warn("close notifier", zap.Error(err))
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.logger.Warn("close redis client", zap.Error(err))
		}
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestTransitionCommandHandler(f, c.publisher, c.notifier)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	var f commands.DispatchUoWFactory = FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignCourierCommandHandler(f, c.publisher, c.notifier)
}

func (c *CompositionRoot) CreateUnassignCourierCommandHandler() commands.UnassignCourierCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUnassignCourierCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateToggleShiftCommandHandler() commands.ToggleShiftCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewToggleShiftCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateIngestLocationCommandHandler() commands.IngestLocationCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewIngestLocationCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateCourierTrackQueryHandler() queries.CourierTrackQueryHandler {
	return queries.NewCourierTrackQueryHandler(c.gormDB)
}

// CreateServer builds the HTTP server over all handlers.
func (c *CompositionRoot) CreateServer() *http.Server {
	return http.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateRequestTransitionCommandHandler(),
		c.CreateAssignCourierCommandHandler(),
		c.CreateUnassignCourierCommandHandler(),
		c.CreateToggleShiftCommandHandler(),
		c.CreateIngestLocationCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateCourierTrackQueryHandler(),
		c.hub,
		ratelimit.NewPerKeyLimiter(c.config.PingRatePerMinute, c.config.PingRateBurst),
		c.logger,
	)
}

// CreateJobManager builds the background job manager.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	watchdog := jobs.NewShiftWatchdogJob(f, c.publisher, c.config.WatchdogStaleness, c.logger)
	return jobs.NewJobManager(watchdog, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}

type FuncTrackingUoWFactory func() commands.TrackingUoW

func (f FuncTrackingUoWFactory) Create() commands.TrackingUoW {
	return f()
}
