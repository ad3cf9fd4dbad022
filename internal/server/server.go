package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sales_backend/internal/catalog"
	"sales_backend/internal/config"
	"sales_backend/internal/database"
	"sales_backend/internal/handlers"
	"sales_backend/internal/logger"
	"sales_backend/internal/metrics"
	"sales_backend/internal/middlewares"
	"sales_backend/internal/models"
	"sales_backend/internal/repositories"
	"sales_backend/internal/routes"
	"sales_backend/internal/services"
	"sales_backend/internal/utils"
)

type Server struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	rdb     *redis.Client
	catalog *catalog.Catalog
	http    *http.Server
}

// New connects to the database (and redis when configured), preloads the
// catalog and builds the HTTP server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	log := logger.Named("server")

	pool, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, pool: pool}

	s.catalog = NewCatalog(pool, cfg.DB.Schema)
	if err := s.catalog.EnsureLoaded(ctx); err != nil {
		// The next request retries the load.
		metrics.ObserveCatalogLoad(0, err)
		log.Warn("catalog preload failed", logger.Err(err))
	}

	var blacklist services.TokenBlacklist
	if cfg.Redis.Addr != "" {
		s.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisRepo := repositories.NewRedisRepository(s.rdb)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisRepo.Ping(pingCtx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("connected to redis", logger.String("addr", cfg.Redis.Addr))
		blacklist = redisRepo
	} else {
		log.Info("no redis configured, using in-memory token blacklist")
		blacklist = repositories.NewMemoryBlacklist()
	}

	if err := metrics.Register(nil, pool); err != nil {
		s.Close()
		return nil, err
	}

	// Dependency injection
	crudRepo := repositories.NewCrudRepository(database.NewTxManager(pool), s.catalog)
	tokens := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(crudRepo, tokens, blacklist)
	salesService := services.NewSalesService(crudRepo)
	schemaService := services.NewSchemaService(s.catalog)

	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, handlers.CookieConfig{Domain: cfg.Auth.CookieDomain, Secure: cfg.Auth.CookieSecure}),
		Sellers:   handlers.NewResourceHandler(crudRepo, handlers.NewResource[models.Seller]("seller", "cod_ven")),
		Products:  handlers.NewResourceHandler(crudRepo, handlers.NewResource[models.Product]("product", "cod_pro")),
		Invoices:  handlers.NewInvoiceHandler(salesService),
		Batch:     handlers.NewBatchHandler(crudRepo),
		Functions: handlers.NewFunctionHandler(crudRepo),
		Schema:    handlers.NewSchemaHandler(schemaService),
	}

	router := NewRouter(cfg, h, authService, s)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

// NewCatalog builds a catalog over the given schema with load metrics.
func NewCatalog(pool *pgxpool.Pool, schema string) *catalog.Catalog {
	cat := catalog.New(repositories.NewSchemaRepository(pool, schema))
	cat.OnLoaded(func(tables int) { metrics.ObserveCatalogLoad(tables, nil) })
	return cat
}

// NewRouter builds the gin engine with the ambient middleware stack.
func NewRouter(cfg *config.Config, h routes.Handlers, auth middlewares.Authenticator, health HealthChecker) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middlewares.RequestLogger(),
		middlewares.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.CSRFHeader, middlewares.RequestIDHeader},
			ExposeHeaders:    []string{middlewares.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/health", healthHandler(health))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	routes.RegisterRoutes(router, h, middlewares.Authenticate(auth), middlewares.RequireCSRF())
	return router
}

// HealthChecker reports whether the process can serve requests.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Health pings the database and checks the catalog snapshot.
func (s *Server) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.catalog.RequireLoaded(); err != nil {
		return err
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := health.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("server")
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server exiting")
	return nil
}

// Close releases the database pool and the redis client.
func (s *Server) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
		s.rdb = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}
