package bootstrap

import (
	"log"
	"os"

	"loan-origination-be/internal/config"
	"loan-origination-be/internal/controller"
	"loan-origination-be/internal/events"
	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/internal/pkg/mailer"
	"loan-origination-be/internal/repository/implementation"
	"loan-origination-be/internal/repository/memory"
	"loan-origination-be/internal/service"
	"loan-origination-be/pkg/intake"
	"loan-origination-be/pkg/sanction"
	"loan-origination-be/pkg/verification"

	pktNats "loan-origination-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS. The publisher is optional: domain events are dropped when the
	// broker is unreachable.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	eventPublisher := events.NewNatsPublisher(natsPub, sysLogger)

	if err := os.MkdirAll(cfg.App.UploadsDir, 0o755); err != nil {
		log.Fatalf("[FATAL] Failed to create uploads directory: %v", err)
	}

	// 3. Repositories
	customerRepo := implementation.NewCustomerRepository(db)
	offerRepo := implementation.NewOfferRepository(db)
	auditRepo := implementation.NewAuditLogRepository(db)
	sessionRepo := memory.NewSessionRepository(cfg.Loan.SessionTTL, cfg.Loan.SweepInterval)

	// 4. Stage machines and collaborators
	directory := service.NewCRMDirectory(customerRepo, offerRepo)
	intakeMachine := intake.NewMachine(sysLogger)
	verifyMachine := verification.NewMachine(directory, sysLogger)
	issuer := sanction.NewPDFGenerator(cfg.App.DocumentsDir, sysLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.AuditTopic, pubSub)
	auditService := service.NewAuditService(pubSub, cfg.App.AuditTopic, auditRepo, sysLogger)

	conversationService := service.NewConversationService(
		sessionRepo,
		intakeMachine,
		verifyMachine,
		issuer,
		emailService,
		eventPublisher,
		publisherService,
		sysLogger,
		cfg.Loan.DefaultAnnualRate,
		cfg.App.BaseURL+"/api/loan/v1/download",
	)

	// 6. Controllers
	return &Container{
		ChatController: controller.NewChatController(conversationService, cfg.App.UploadsDir, cfg.App.DocumentsDir),
		AuditService:   auditService,
	}
}
