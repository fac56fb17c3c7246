package bootstrap

import (
	"log"

	"ai-voicedesk-be/internal/config"
	"ai-voicedesk-be/internal/controller"
	"ai-voicedesk-be/internal/directory"
	"ai-voicedesk-be/internal/pkg/logger"
	"ai-voicedesk-be/internal/pkg/mailer"
	"ai-voicedesk-be/internal/repository/implementation"
	"ai-voicedesk-be/internal/repository/unitofwork"
	"ai-voicedesk-be/internal/service"
	"ai-voicedesk-be/pkg/billing"
	"ai-voicedesk-be/pkg/callsync"
	"ai-voicedesk-be/pkg/stripeclient"
	"ai-voicedesk-be/pkg/twilio"
	"ai-voicedesk-be/pkg/vapi"

	pkgNats "ai-voicedesk-be/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController          controller.IAuthController
	UserController          controller.IUserController
	AssistantController     controller.IAssistantController
	CallLogController       controller.ICallLogController
	SubscriptionController  controller.ISubscriptionController
	PhoneController         controller.IPhoneController
	SettingController       controller.ISettingController
	AdminController         controller.IAdminController
	VapiWebhookController   controller.IVapiWebhookController
	StripeWebhookController controller.IStripeWebhookController

	// Background services (run by main)
	EventAuditService service.IEventAuditService

	// Shared components the commands reach for directly
	SyncJob   *callsync.Job
	SysLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	vapiClient := vapi.NewClient(cfg.Vapi.APIKey, cfg.Vapi.BaseURL)
	twilioClient := twilio.NewClient(cfg.Twilio.AccountSid, cfg.Twilio.AuthToken, "")
	stripeClient := stripeclient.New(cfg.Stripe.SecretKey)

	// 3. Call reconciliation core
	assistantRepo := implementation.NewAssistantRepository(db)
	callLogRepo := implementation.NewCallLogRepository(db)
	assistantDir := directory.NewCachedAssistantDirectory(assistantRepo)
	callStore := callsync.NewStore(callLogRepo, assistantDir, sysLogger)
	syncJob := callsync.NewJob(assistantDir, vapiClient, callStore, callLogRepo, sysLogger)

	// 4. Billing reconciliation core
	reconciler := billing.NewReconciler(
		&billingSubscriptionStore{repo: implementation.NewSubscriptionRepository(db)},
		&billingTransactionStore{repo: implementation.NewTransactionRepository(db)},
		&billingUserStore{repo: implementation.NewUserRepository(db)},
		stripeClient,
		&billingNotifier{mail: emailService},
		sysLogger,
	)

	// 5. Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg, sysLogger)
	userService := service.NewUserService(uowFactory)
	assistantService := service.NewAssistantService(uowFactory, vapiClient, twilioClient, assistantDir, cfg, sysLogger)
	callLogService := service.NewCallLogService(uowFactory, syncJob, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, stripeClient, sysLogger)
	phoneService := service.NewPhoneService(twilioClient, sysLogger)
	settingService := service.NewSettingService(uowFactory, sysLogger)
	adminService := service.NewAdminService(uowFactory, sysLogger)

	var auditService service.IEventAuditService
	if natsSub != nil {
		auditService = service.NewEventAuditService(natsSub, sysLogger)
	}

	// 6. Controllers
	return &Container{
		AuthController:          controller.NewAuthController(authService),
		UserController:          controller.NewUserController(userService),
		AssistantController:     controller.NewAssistantController(assistantService),
		CallLogController:       controller.NewCallLogController(callLogService),
		SubscriptionController:  controller.NewSubscriptionController(subscriptionService),
		PhoneController:         controller.NewPhoneController(phoneService),
		SettingController:       controller.NewSettingController(settingService),
		AdminController:         controller.NewAdminController(adminService),
		VapiWebhookController:   controller.NewVapiWebhookController(callStore, assistantDir, natsPub, cfg.Vapi.WebhookSecret, sysLogger),
		StripeWebhookController: controller.NewStripeWebhookController(reconciler, cfg.Stripe.WebhookSecret, sysLogger),

		EventAuditService: auditService,

		SyncJob:   syncJob,
		SysLogger: sysLogger,
	}
}
