package main

import (
	"context"
	"fmt"
	"log"

	"mongoprov/internal/config"
	"mongoprov/internal/descriptor"
	"mongoprov/internal/handler"
	"mongoprov/internal/identity"
	"mongoprov/internal/repository/mongodb"
	"mongoprov/internal/router"
	"mongoprov/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := mongodb.NewClient(&cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Printf("failed to disconnect from mongodb: %v", err)
		}
	}()

	// Initialize services
	parser := descriptor.NewParser(cfg.Template)
	resolver := identity.NewResolver(db)
	aclManager := service.NewACLManager(db, &cfg.MongoDB)
	validationSvc := service.NewValidationService(parser)
	provisionSvc := service.NewProvisionService(db, parser, resolver, aclManager)
	updateACLSvc := service.NewUpdateACLService(parser, resolver, aclManager)
	reverseSvc := service.NewReverseProvisionService(db)

	// Initialize handlers
	provisionH := handler.NewProvisionHandler(validationSvc, provisionSvc, updateACLSvc, reverseSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, provisionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
