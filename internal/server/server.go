package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"inventory-api/internal/cache"
	"inventory-api/internal/config"
	"inventory-api/internal/database"
	custommiddleware "inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"
	"inventory-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "inventory:ratelimit"

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers onto a chi router.
// redisClient may be nil, in which case caching and rate limiting are off.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	// Health check stays outside the rate limiter
	router.Get("/health", healthHandler(db, redisClient))

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	productCache := cache.NewNoop()
	if redisClient != nil {
		productCache = cache.NewRedisProductCache(redisClient, cfg.Redis.CacheTTL)
	}

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, productRepo, productCache, logger)
	productService := service.NewProductService(productRepo, categoryService, productCache, logger)
	inventoryService := service.NewInventoryService(productService, categoryService)

	// Initialize handlers
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	inventoryHandler := transport.NewInventoryHandler(inventoryService, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		if redisClient != nil {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         rateLimitKeyPrefix,
			}, logger))
		}

		categoryHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		inventoryHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      otelhttp.NewHandler(router, "inventory-api"),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

// healthHandler reports store status; any dependency down yields 503
func healthHandler(db database.Service, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK

		dbHealth := db.Health(r.Context())
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		body := map[string]interface{}{
			"database": dbHealth,
		}

		if redisClient != nil {
			redisHealth := map[string]string{"status": "up"}
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				redisHealth = map[string]string{
					"status": "down",
					"error":  fmt.Sprintf("redis down: %v", err),
				}
				status = http.StatusServiceUnavailable
			}
			cancel()
			body["redis"] = redisHealth
		}

		if status == http.StatusOK {
			body["status"] = "ok"
		} else {
			body["status"] = "unavailable"
		}

		custommiddleware.RespondWithJSON(w, status, body)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
