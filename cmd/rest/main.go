package main

import (
	"context"
	"log"

	"ai-voicedesk-be/internal/bootstrap"
	"ai-voicedesk-be/internal/config"
	"ai-voicedesk-be/internal/server"
	"ai-voicedesk-be/internal/tracer"
	"ai-voicedesk-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	if container.EventAuditService != nil {
		if err := container.EventAuditService.Start(); err != nil {
			log.Printf("Background: event audit consumer failed to start: %v", err)
		}
	}

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
