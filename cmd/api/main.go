package main

import (
	"context"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/audit"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Permission & Authentication API
// @version         1.0
// @description     Token-based authentication with a dynamic role/function/action permission matrix and a full audit trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.Init()
	defer logger.Sync()

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Info("Connected to PostgreSQL successfully.")

	if err := audit.RegisterCallbacks(db); err != nil {
		log.Fatalf("Failed to register audit callbacks: %v", err)
	}

	if err := database.Seed(context.Background(), db, cfg); err != nil {
		log.Fatalf("Database seeding failed: %v", err)
	}

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	functionRepo := repository.NewFunctionRepository(db)
	trailRepo := repository.NewTrailRepository(db)

	txManager := repository.NewTransactionManager(db)
	recorder := audit.NewRecorder(trailRepo, log)

	tokenService := service.NewTokenService(userRepo, cfg)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo, recorder, cfg)
	oauthService := service.NewOAuthService(userRepo, roleRepo, tokenService, recorder, cfg)
	roleService := service.NewRoleService(roleRepo, permissionRepo, functionRepo, txManager, recorder)
	functionService := service.NewFunctionService(functionRepo, permissionRepo, txManager, recorder)
	auditService := service.NewAuditService(trailRepo)

	gate := middleware.NewGate(cfg.JWTSecret, userService)

	tokenHandler := handler.NewTokenHandler(tokenService)
	authHandler := handler.NewAuthHandler(oauthService)
	userHandler := handler.NewUserHandler(userService, gate)
	roleHandler := handler.NewRoleHandler(roleService, gate)
	functionHandler := handler.NewFunctionHandler(functionService, gate)
	personalHandler := handler.NewPersonalHandler(userService, auditService, gate)
	auditHandler := handler.NewAuditHandler(auditService, gate)

	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery(), middleware.ErrorHandler())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// API Routing
	tokenHandler.RegisterRoutes(router.Group(""))
	authHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	functionHandler.RegisterRoutes(router.Group(""))
	personalHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Infof("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
