package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/controllers"
	_ "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/docs"
	authService "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/auth"
	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/middleware"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/validation"
	container "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Container"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
)

const version = "1.0.0"

// @title IoT Asset Registry API
// @version 1.0
// @description CRUD API for organizations, sites, measuring points, boards and sensors.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}

	logger := ctr.GetLogger()
	config := ctr.GetConfig()
	logger.Logger.Info().Str("version", version).Str("driver", config.Database.Driver).Msg("Starting API Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := ctr.GetRepositories(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to initialize database")
	}
	notifier := ctr.GetNotifier()

	if err := validation.Register(); err != nil {
		logger.FatalWithError(err, "Failed to register request validators")
	}

	jwtService := jwt.NewService(api_models.Config{
		SecretKey:            config.Auth.JWTSecretKey,
		AccessTokenDuration:  config.Auth.AccessTokenDuration,
		RefreshTokenDuration: config.Auth.RefreshTokenDuration,
		Issuer:               config.Auth.JWTIssuer,
	})
	authMiddleware := middleware.NewAuthMiddleware(jwtService, config.Auth.Enabled, middleware.DefaultConfig())

	if config.Auth.Enabled {
		adminInitializer := authService.NewAdminInitializer(repos.Users, logger, config.Auth.Admin)
		if err := adminInitializer.InitializeAdminUser(ctx); err != nil {
			logger.FatalWithError(err, "Failed to initialize admin user")
		}
	} else {
		logger.Warn("Authentication is disabled, every route is public")
	}

	gin.SetMode(config.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	controllers.NewMetaController().RegisterRoutes(router)
	controllers.NewHealthController(ctr.GetHealthChecker(version)).RegisterRoutes(router)
	controllers.NewOrganizationController(repos.Organizations, repos.Sites, notifier, logger, authMiddleware).RegisterRoutes(router)
	controllers.NewSiteController(repos.Sites, repos.Organizations, repos.MeasuringPoints, notifier, logger, authMiddleware).RegisterRoutes(router)
	controllers.NewMeasuringPointController(repos.MeasuringPoints, repos.Sites, repos.Boards, notifier, logger, authMiddleware).RegisterRoutes(router)
	controllers.NewBoardController(repos.Boards, repos.MeasuringPoints, repos.Sensors, notifier, logger, authMiddleware).RegisterRoutes(router)
	controllers.NewSensorController(repos.Sensors, repos.Boards, notifier, logger, authMiddleware).RegisterRoutes(router)
	if config.Auth.Enabled {
		authController := controllers.NewAuthController(
			authService.NewAuthService(repos.Users, jwtService),
			authMiddleware,
			logger,
			config.Server.Mode == gin.ReleaseMode,
		)
		authController.RegisterRoutes(router)
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	port := config.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}
	ctr.AddCleanupFunc(func() error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// The server was registered last, so it drains before storage disconnects
	if err := ctr.Shutdown(context.Background()); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
