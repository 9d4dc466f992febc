// Package router assembles the HTTP middleware pipeline and routes.
package router

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/motopark/api/internal/auth"
	"github.com/stwalsh4118/motopark/api/internal/config"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/handlers"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
	"github.com/stwalsh4118/motopark/api/internal/storage"
	"github.com/stwalsh4118/motopark/api/internal/validation"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	Verifier auth.TokenVerifier
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Parking  *handlers.ParkingHandler
	Reports  *handlers.ReportHandler
}

// New builds the engine. Middleware runs in order: RequestID, Logger,
// Recovery, SecurityHeaders, CORS, Metrics, then the error translator;
// /api routes are additionally rate limited per client IP.
func New(d Deps) (*gin.Engine, error) {
	cfg := d.Config

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("failed to register validation rules: %w", err)
		}
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.Recovery(d.Log, cfg.Server.IsDevelopment()))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.Metrics())
	router.Use(apierrors.Handler(cfg.Server.Env))

	router.GET("/", d.Health.Index)
	router.GET("/health", d.Health.Health)
	router.GET("/health/ready", d.Health.Ready)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	router.Static(strings.TrimSuffix(storage.URLPrefix, "/"), cfg.Upload.Dir)

	authenticate := auth.Authenticate(d.Verifier)
	optionalAuth := auth.OptionalAuth(d.Verifier)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window))
	{
		api.GET("/info", d.Health.Info)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", d.Auth.Register)
			authGroup.POST("/login", d.Auth.Login)
			authGroup.POST("/anonymous", d.Auth.Anonymous)
			authGroup.GET("/me", authenticate, d.Auth.Me)
			authGroup.POST("/logout", authenticate, d.Auth.Logout)
		}

		parking := api.Group("/parking")
		{
			parking.GET("/nearby", optionalAuth, d.Parking.Nearby)
			parking.GET("/:id", optionalAuth, d.Parking.Get)
			parking.POST("", authenticate, auth.RequireAdmin(), d.Parking.Create)
			parking.PUT("/:id", authenticate, auth.RequireAdmin(), d.Parking.Update)
		}

		reports := api.Group("/reports")
		{
			reports.POST("", authenticate, d.Reports.Create)
			reports.GET("", d.Reports.ZoneReports)
			reports.GET("/me", authenticate, d.Reports.MyReports)
			reports.POST("/:reportId/images", authenticate, d.Reports.UploadImage)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		apierrors.Respond(c, apierrors.New(apierrors.KindNotFound, "Route not found").
			WithDetails(map[string]interface{}{"path": c.Request.URL.Path}))
	})

	return router, nil
}
