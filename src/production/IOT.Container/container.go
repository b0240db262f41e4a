package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/health"
	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	events "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Events"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	implementation "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/memory"
	"go.mongodb.org/mongo-driver/mongo"
)

const healthTimeout = 5 * time.Second

// Repositories groups every store the API needs
type Repositories struct {
	Organizations   interfaces.OrganizationRepository
	Sites           interfaces.SiteRepository
	MeasuringPoints interfaces.MeasuringPointRepository
	Boards          interfaces.BoardRepository
	Sensors         interfaces.SensorRepository
	Users           interfaces.UserRepository
	Resetter        interfaces.DataResetter
}

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger

	mu            sync.Mutex
	client        *mongo.Client
	repos         *Repositories
	notifier      events.Notifier
	healthChecker *health.HealthChecker

	// Cleanup functions, run in reverse order on shutdown
	cleanupFuncs []func() error
}

// NewApiContainer loads the API configuration and builds a container from it
func NewApiContainer() (*Container, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}
	return New(cfg, logger.NewLogger(&cfg.Logging)), nil
}

// New creates a container around an already loaded configuration
func New(cfg *config.Config, log *logger.Logger) *Container {
	return &Container{config: cfg, logger: log}
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetRepositories connects the configured storage driver on first use
func (c *Container) GetRepositories(ctx context.Context) (*Repositories, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repos != nil {
		return c.repos, nil
	}

	switch c.config.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		c.repos = &Repositories{
			Organizations:   store.Organizations(),
			Sites:           store.Sites(),
			MeasuringPoints: store.MeasuringPoints(),
			Boards:          store.Boards(),
			Sensors:         store.Sensors(),
			Users:           store.Users(),
			Resetter:        store,
		}
		c.logger.Warn("Using the in-memory store, data is lost on restart")

	case config.DriverMongo:
		client, err := implementation.ConnectMongoWithTimeout(c.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.client = client
		c.cleanupFuncs = append(c.cleanupFuncs, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})

		db := client.Database(c.config.Database.Name)
		if err := implementation.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		c.repos = &Repositories{
			Organizations:   implementation.NewMongoOrganizationRepository(db),
			Sites:           implementation.NewMongoSiteRepository(db),
			MeasuringPoints: implementation.NewMongoMeasuringPointRepository(db),
			Boards:          implementation.NewMongoBoardRepository(db),
			Sensors:         implementation.NewMongoSensorRepository(db),
			Users:           implementation.NewMongoUserRepository(db),
			Resetter:        implementation.NewMongoDataResetter(db),
		}
		c.logger.Logger.Info().Str("database", c.config.Database.Name).Msg("Connected to MongoDB")

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.config.Database.Driver)
	}

	return c.repos, nil
}

// GetNotifier returns the MQTT change notifier, or a no-op one when no
// broker is configured or the client cannot be built.
func (c *Container) GetNotifier() events.Notifier {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notifier != nil {
		return c.notifier
	}

	if !c.config.MQTT.Enabled() {
		c.logger.Info("MQTT broker not configured, change notifications disabled")
		c.notifier = events.NoopNotifier{}
		return c.notifier
	}

	notifier, err := events.NewMQTTNotifier(c.config.MQTT, c.config.GetMQTTBrokerURL(), c.logger)
	if err != nil {
		c.logger.ErrorWithError(err, "Failed to create MQTT notifier, change notifications disabled")
		c.notifier = events.NoopNotifier{}
		return c.notifier
	}
	c.notifier = notifier
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		notifier.Close()
		return nil
	})
	return c.notifier
}

// GetHealthChecker builds the readiness checks for the configured dependencies
func (c *Container) GetHealthChecker(version string) *health.HealthChecker {
	notifier := c.GetNotifier()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.healthChecker != nil {
		return c.healthChecker
	}

	checker := health.NewHealthChecker(version, healthTimeout)
	switch {
	case c.client != nil:
		client := c.client
		checker.AddCheck("mongo", true, func(ctx context.Context) error {
			return implementation.PingMongo(ctx, client)
		})
	case c.config.Database.Driver == config.DriverMemory:
		checker.AddCheck("memory", true, func(context.Context) error { return nil })
	}
	if mqttNotifier, ok := notifier.(*events.MQTTNotifier); ok {
		checker.AddCheck("mqtt", false, mqttNotifier.Check)
	}

	c.healthChecker = checker
	return checker
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(_ context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
