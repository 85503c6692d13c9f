package main

import (
	"os"
	"strings"

	"badgereg/internal/database"
	"badgereg/internal/handler"
	"badgereg/internal/middleware"
	"badgereg/internal/repository"
	"badgereg/internal/service"
	"badgereg/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @title           Badge Registry API
// @version         1.0
// @description     Access-authorization registry for external companies and their personnel.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found, using environment")
	}

	db, err := database.Connect(database.ConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to postgres")

	if err := database.Seed(db, logger); err != nil {
		logger.Fatal("database seed failed", zap.Error(err))
	}

	// WebSocket hub for live flag updates on the gate screens
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	recipientRepo := repository.NewRecipientRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	companyService := service.NewCompanyService(companyRepo, auditRepo, txManager, logger)
	employeeService := service.NewEmployeeService(employeeRepo, companyRepo, roleRepo, auditRepo, txManager, wsHub, logger)
	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	reportService := service.NewReportService(employeeRepo)
	auditService := service.NewAuditService(auditRepo)
	notificationService := service.NewNotificationService(recipientRepo, tokenRepo)

	companyHandler := handler.NewCompanyHandler(companyService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	userHandler := handler.NewUserHandler(userService)
	reportHandler := handler.NewReportHandler(reportService)
	auditHandler := handler.NewAuditHandler(auditService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	authn := middleware.RequireUser(userRepo)
	authz := handler.PermFunc(func(codes ...string) gin.HandlerFunc {
		return middleware.RequirePermission(roleRepo, codes...)
	})

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	companyHandler.RegisterRoutes(router.Group(""), authn, authz)
	employeeHandler.RegisterRoutes(router.Group(""), authn, authz)
	userHandler.RegisterRoutes(router.Group(""), authn, authz)
	reportHandler.RegisterRoutes(router.Group(""), authn, authz)
	auditHandler.RegisterRoutes(router.Group(""), authn, authz)
	notificationHandler.RegisterRoutes(router.Group(""), authn, authz)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		return strings.Split(raw, ",")
	}
	return []string{"http://localhost:5173", "http://127.0.0.1:5173"}
}
