package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/slotly/bookhub/internal/auth"
	"github.com/slotly/bookhub/internal/cache"
	"github.com/slotly/bookhub/internal/config"
	"github.com/slotly/bookhub/internal/http/handlers"
	"github.com/slotly/bookhub/internal/http/middlewares"
	"github.com/slotly/bookhub/internal/observability"
	"github.com/slotly/bookhub/internal/repo/postgres"
	"github.com/slotly/bookhub/internal/revocation"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry; the process collectors ride along
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("bookhub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())

	// health + metrics
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	businessesRepo := postgres.NewBusinessesRepo(pool, prom)
	appointmentsRepo := postgres.NewAppointmentsRepo(pool, prom)

	// session plumbing
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL())
	gens := revocation.NewStore(usersRepo, rdb)
	authMW := middlewares.NewAuthMiddleware(jwtManager, gens, cfg.SessionCookieName)

	listingCache := cache.New(5 * time.Second)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, gens, jwtManager, cfg, prom)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	businessHandler := handlers.NewBusinessHandler(businessesRepo, appointmentsRepo, listingCache)
	appointmentsHandler := handlers.NewAppointmentsHandler(appointmentsRepo, businessesRepo)

	// credential endpoints get a tighter limit than the rest
	authLimiter := middlewares.NewRateLimiter(20, time.Minute)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMW.RequireSession(), authHandler.Me)
	}

	r.GET("/users", authMW.RequireSession(), authMW.RequireRole("admin"), usersHandler.List)

	businessGroup := r.Group("/business", authMW.RequireSession())
	{
		businessGroup.POST("", businessHandler.Create)
		businessGroup.GET("", businessHandler.List)
		businessGroup.GET("/mine", businessHandler.Mine)
		businessGroup.GET("/appointments", businessHandler.Appointments)
	}

	appointmentsGroup := r.Group("/appointments", authMW.RequireSession())
	{
		appointmentsGroup.POST("", appointmentsHandler.Create)
		appointmentsGroup.GET("/mine", appointmentsHandler.Mine)
		appointmentsGroup.PATCH("/:id/status", appointmentsHandler.UpdateStatus)
		appointmentsGroup.DELETE("/:id", appointmentsHandler.Delete)
	}

	return r
}
