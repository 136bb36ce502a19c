package main

import (
	"log"
	"net/http"
	"os"

	"papyrus/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"papyrus/internal/auth"
	"papyrus/internal/cache"
	"papyrus/internal/config"
	"papyrus/internal/db"
	"papyrus/internal/handler"
	"papyrus/internal/mail"
	"papyrus/internal/model"
	"papyrus/internal/repository"
	"papyrus/internal/router"
	"papyrus/internal/service"
)

// @title Papyrus Textbook Marketplace API
// @version 1.0
// @description Peer-to-peer textbook marketplace with email verification, JWT authentication, and balance-based purchases.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.PasswordResetToken{},
			&model.Textbook{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Textbook{},
		&model.PasswordResetToken{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	textbookRepo := repository.NewTextbookRepository(gormDB)
	resetRepo := repository.NewPasswordResetRepository(gormDB)

	// Initialize collaborators
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		log.Println("SMTP_HOST not set, outbound mail will be logged")
		mailer = mail.LogMailer{}
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, resetRepo, jwtService, mailer, cfg.ClientURL)
	textbookService := service.NewTextbookService(textbookRepo, cacheClient)
	purchaseService := service.NewPurchaseService(textbookRepo, userRepo, cacheClient, mailer)
	userService := service.NewUserService(userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.ClientURL)
	textbookHandler := handler.NewTextbookHandler(textbookService, purchaseService)
	userHandler := handler.NewUserHandler(userService, authService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		userRepo,
		authHandler,
		textbookHandler,
		userHandler,
	)

	log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
