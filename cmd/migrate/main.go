package main

import (
	"log"
	"os"

	"ai-voicedesk-be/internal/model"
	"ai-voicedesk-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// Extensions AutoMigrate cannot create itself.
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := []interface{}{
		&model.User{},
		&model.Assistant{},
		&model.CallLog{},
		&model.SubscriptionPackage{},
		&model.UserSubscription{},
		&model.Transaction{},
		&model.Setting{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// The webhook upsert path depends on this unique constraint.
	indexSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_call_logs_call_id ON call_logs (call_id);`,
		`CREATE INDEX IF NOT EXISTS idx_call_logs_user_started ON call_logs (user_id, start_time DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_assistants_vapi_id ON assistants (vapi_assistant_id);`,
		`CREATE INDEX IF NOT EXISTS idx_user_subscriptions_stripe_id ON user_subscriptions (stripe_subscription_id);`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v. Continuing...", err)
		}
	}

	log.Println("Migration completed successfully.")
}
