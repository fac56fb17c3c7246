package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"ai-voicedesk-be/internal/config"
	"ai-voicedesk-be/internal/directory"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/repository/implementation"
	"ai-voicedesk-be/pkg/callsync"
	"ai-voicedesk-be/pkg/database"
	"ai-voicedesk-be/pkg/vapi"

	"github.com/google/uuid"
)

// synccalls reconciles call history from the provider API into the
// local call log. It backfills whatever the webhooks missed.
func main() {
	assistantFlag := flag.String("assistant", "", "limit the sync to one assistant id")
	userFlag := flag.String("user", "", "limit the sync to one user id")
	limitFlag := flag.Int("limit", callsync.DefaultLimit, "max calls fetched per assistant")
	dryRunFlag := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	assistantRepo := implementation.NewAssistantRepository(db)
	callLogRepo := implementation.NewCallLogRepository(db)
	assistantDir := directory.NewCachedAssistantDirectory(assistantRepo)
	vapiClient := vapi.NewClient(cfg.Vapi.APIKey, cfg.Vapi.BaseURL)
	store := callsync.NewStore(callLogRepo, assistantDir, sysLogger)
	job := callsync.NewJob(assistantDir, vapiClient, store, callLogRepo, sysLogger)

	opts := callsync.Options{Limit: *limitFlag, DryRun: *dryRunFlag}
	if *assistantFlag != "" {
		id, err := uuid.Parse(*assistantFlag)
		if err != nil {
			log.Fatalf("Error: invalid assistant id %q", *assistantFlag)
		}
		opts.AssistantID = &id
	}
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("Error: invalid user id %q", *userFlag)
		}
		opts.UserID = &id
	}

	summary, err := job.Run(context.Background(), opts)
	if err != nil {
		log.Fatalf("Error: sync failed: %v", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}
