package main

import (
	"access_service/internal/config"
	"access_service/internal/database/mongo"
	"access_service/internal/events"
	"access_service/internal/handlers"
	"access_service/internal/repository"
	"access_service/internal/service"
	"access_service/pkg/discovery"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/hotelpms", "log", "access_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.ServiceConfig

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Get("/health", func(c fiber.Ctx) error {
		if !mongo.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Access Service cannot reach MongoDB")
		}
		return c.Status(fiber.StatusOK).SendString("Access Service is healthy")
	})

	repos := repository.Repositories_instance

	// Create database indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repos.AccessRepository.CreateIndexes(ctx); err != nil {
		log.Printf("Warning: Failed to create access record indexes: %v", err)
	}
	cancel()

	// Initialize event publisher
	eventPublisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
	}
	var publisher events.Publisher
	if eventPublisher != nil {
		publisher = eventPublisher
	}

	// Initialize services
	resolverService := service.NewAccessResolverService(repos, cfg.Access.SidebarCacheTTL)
	writerService := service.NewAccessWriterService(repos, publisher)
	jwtService := service.NewJWTService()
	roleService := service.NewRoleService(repos)
	organizationService := service.NewOrganizationService(repos)
	sidebarService := service.NewSidebarService(repos)
	componentService := service.NewComponentService(repos)

	// Initialize and register handlers
	accessHandler := handlers.NewAccessHandler(resolverService, writerService, jwtService)
	accessHandler.RegisterRoutes(app)
	roleHandler := handlers.NewRoleHandler(roleService)
	roleHandler.RegisterRoutes(app)
	organizationHandler := handlers.NewOrganizationHandler(organizationService)
	organizationHandler.RegisterRoutes(app)
	sidebarHandler := handlers.NewSidebarHandler(sidebarService)
	sidebarHandler.RegisterRoutes(app)
	componentHandler := handlers.NewComponentHandler(componentService)
	componentHandler.RegisterRoutes(app)

	if err := discovery.ServiceDiscovery.Register(); err != nil {
		log.Printf("Warning: Failed to register with service discovery: %v", err)
	}

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	// Close event publisher
	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}

	// Disconnect from MongoDB
	mongo.DisconnectMongo()

	// Deregister from service discovery
	if discovery.ServiceDiscovery != nil {
		if err := discovery.ServiceDiscovery.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
