package main

import (
	"log"
	"os"
	"time"

	"ai-voicedesk-be/internal/model"
	"ai-voicedesk-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

	seedPackages(db)
	seedTemplates(db)

	log.Println("Seeding completed.")
}

func seedPackages(db *gorm.DB) {
	packages := []model.SubscriptionPackage{
		{
			Id:                  uuid.New(),
			Name:                "Starter",
			Slug:                "starter",
			Description:         "One voice agent for small teams trying out automated answering.",
			Price:               29,
			VoiceAgentsLimit:    1,
			MonthlyMinutesLimit: 300,
			Features:            datatypes.JSONSlice[string]{"1 voice agent", "300 minutes/month", "Email support"},
			SupportLevel:        "email",
			AnalyticsLevel:      "basic",
			SortOrder:           1,
			IsActive:            true,
		},
		{
			Id:                  uuid.New(),
			Name:                "Growth",
			Slug:                "growth",
			Description:         "Multiple agents and call analytics for growing businesses.",
			Price:               99,
			VoiceAgentsLimit:    5,
			MonthlyMinutesLimit: 1500,
			Features:            datatypes.JSONSlice[string]{"5 voice agents", "1500 minutes/month", "Call analytics", "Priority support"},
			SupportLevel:        "priority",
			AnalyticsLevel:      "advanced",
			IsPopular:           true,
			SortOrder:           2,
			IsActive:            true,
		},
		{
			Id:                  uuid.New(),
			Name:                "Scale",
			Slug:                "scale",
			Description:         "Unlimited agents for call-heavy operations.",
			Price:               299,
			VoiceAgentsLimit:    -1,
			MonthlyMinutesLimit: -1,
			Features:            datatypes.JSONSlice[string]{"Unlimited voice agents", "Unlimited minutes", "Dedicated support", "Full analytics"},
			SupportLevel:        "dedicated",
			AnalyticsLevel:      "full",
			SortOrder:           3,
			IsActive:            true,
		},
	}

	for _, pkg := range packages {
		pkg.CreatedAt = time.Now()
		pkg.UpdatedAt = time.Now()
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&pkg).Error
		if err != nil {
			log.Printf("Warn: Failed to seed package %s: %v", pkg.Slug, err)
			continue
		}
		log.Printf("Seeded package: %s", pkg.Slug)
	}
}

func seedTemplates(db *gorm.DB) {
	templates := map[string]string{
		"assistant_template.receptionist": `{"name":"Receptionist","first_message":"Thank you for calling! How can I help you today?","system_prompt":"You are a friendly receptionist. Answer questions about opening hours, take messages, and route urgent calls."}`,
		"assistant_template.booking":      `{"name":"Appointment Booking","first_message":"Hi! I can help you book an appointment. What day works best for you?","system_prompt":"You are a booking assistant. Collect the caller's name, preferred date and time, and confirm the appointment details back to them."}`,
		"assistant_template.support":      `{"name":"Customer Support","first_message":"Hello, you have reached support. What seems to be the problem?","system_prompt":"You are a patient support agent. Gather a description of the issue, suggest basic troubleshooting, and escalate when the caller asks for a human."}`,
	}

	for key, value := range templates {
		setting := model.Setting{
			Id:        uuid.New(),
			Key:       key,
			Value:     value,
			Type:      "json",
			Group:     "templates",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&setting).Error
		if err != nil {
			log.Printf("Warn: Failed to seed setting %s: %v", key, err)
			continue
		}
		log.Printf("Seeded template: %s", key)
	}
}
