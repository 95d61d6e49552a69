// api/routes/router.go
package routes

import (
	"fmt"
	"net/http"
	"time"

	"goodfoods/internal/availability"
	"goodfoods/internal/catalog"
	"goodfoods/internal/ledger"
	"goodfoods/internal/notifications"
	"goodfoods/internal/shared/config"
	"goodfoods/internal/shared/database"
	"goodfoods/internal/shared/middleware"
	"goodfoods/internal/tools"
	"goodfoods/pkg/cache"
	"goodfoods/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.EventProducer // may be nil when Kafka is disabled
	log      *logger.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.EventProducer, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
		log:      log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())

	return r.setupToolRoutes(api)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "goodfoods-reservations",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "goodfoods-reservations",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "operational",
			"api_version":    r.config.APIVersion,
			"ledger_backend": r.config.Ledger.Backend,
			"timestamp":      time.Now(),
		})
	})
}

// setupToolRoutes wires the catalog, availability resolver, reservation
// ledger and the tool dispatcher that fronts them.
func (r *Router) setupToolRoutes(rg *gin.RouterGroup) error {
	// Catalog is loaded once at startup; the CSV is read-only at runtime
	catalogRepo, err := catalog.NewRepositoryFromFile(r.config.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog from %s: %w", r.config.Catalog.Path, err)
	}
	catalogService := catalog.NewService(catalogRepo, r.config.Catalog.MaxSearchHits)

	// Ledger store selection by configured backend
	store, err := r.buildLedgerStore()
	if err != nil {
		return err
	}

	availabilityService := availability.NewService(catalogService, store)

	var publisher ledger.EventPublisher
	if r.producer != nil {
		publisher = notifications.NewLedgerPublisherAdapter(r.producer)
	}
	ledgerService := ledger.NewService(store, availabilityService, publisher, r.log)

	// Search result caching is optional; without Redis the dispatcher
	// hits the catalog directly
	var cacheService cache.Service
	if r.db.Redis != nil {
		cacheService = cache.NewService(r.db.Redis)
	}

	dispatcher := tools.NewDispatcher(catalogService, availabilityService, ledgerService, cacheService, r.config.Redis.SearchCacheTTL)
	controller := tools.NewController(dispatcher, r.log)

	tools.SetupToolRoutes(rg, controller, middleware.ServiceAuthWithConfig(r.config))
	return nil
}

func (r *Router) buildLedgerStore() (ledger.Store, error) {
	switch r.config.Ledger.Backend {
	case config.LedgerBackendPostgres:
		if r.db.PostgreSQL == nil {
			return nil, fmt.Errorf("postgres ledger backend requires a database connection")
		}
		return ledger.NewPostgresStore(r.db.PostgreSQL), nil

	case config.LedgerBackendRedis:
		if r.db.Redis == nil {
			return nil, fmt.Errorf("redis ledger backend requires a redis connection")
		}
		return ledger.NewRedisStore(r.db.Redis), nil

	case config.LedgerBackendMemory:
		return ledger.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", r.config.Ledger.Backend)
	}
}
