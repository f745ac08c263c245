package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/dreamstudio-crm/internal/config"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/auth"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/database"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/handlers"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/middleware"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/idgen"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/integration/telegram"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/mail"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/realtime"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/storage"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/worker"
	"github.com/xavierca1/dreamstudio-crm/internal/pdf"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if cfg.Migrations {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal(err)
		}
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPURL)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitMQ.Close()

	// 1. Repositories
	txManager := database.NewTxManager(db)
	clientRepo := database.NewClientRepository(db)
	leadRepo := database.NewLeadRepository(db)
	userRepo := database.NewUserRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	contractRepo := database.NewContractRepository(db)
	channelRepo := database.NewTelegramChannelRepository(db)

	// 2. Gateways and adapters
	producer := queue.NewProducer(rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	files, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL)
	if err != nil {
		log.Fatal(err)
	}
	invoiceNumbers, err := idgen.NewInvoiceNumbers(1)
	if err != nil {
		log.Fatal(err)
	}
	hub := realtime.NewHub()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	renderer := pdf.NewRenderer(cfg.PdfFontDir, pdf.NewFetcher())

	// 3. Use cases
	notifyUC := usecase.NewNotificationUseCase(notificationRepo, userRepo, hub, producer)
	notifyUC.Delivered = middleware.RecordNotification
	leadUC := usecase.NewLeadUseCase(txManager, clientRepo, leadRepo, userRepo, paymentRepo, notifyUC, producer, cfg.LeadOverdueDays)
	paymentUC := usecase.NewPaymentUseCase(txManager, paymentRepo, leadRepo, invoiceNumbers)
	pdfUC := usecase.NewPdfUseCase(sessionRepo, contractRepo, leadRepo, renderer, files, producer, notifyUC)
	loginUC := usecase.NewLoginUseCase(userRepo, tokens)

	// 4. Workers
	var announcer queue.LeadAnnouncer
	if tg, err := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramAdminChatID); err != nil {
		log.Printf("[TELEGRAM] disabled: %v", err)
	} else {
		announcer = tg
	}

	jobs := queue.NewWorker(rabbitMQ.Ch, mailSender, announcer, channelRepo, cfg.TelegramJobInterval)
	jobs.OnFailure = middleware.RecordIntegrationError
	go func() {
		if err := jobs.StartEmails(ctx); err != nil {
			log.Printf("[WORKER] %v", err)
		}
	}()
	if announcer != nil {
		go func() {
			if err := jobs.StartTelegram(ctx); err != nil {
				log.Printf("[WORKER] %v", err)
			}
		}()
	}

	scheduler := worker.NewScheduler(paymentUC, leadUC)
	if err := scheduler.Register(); err != nil {
		log.Fatal(err)
	}
	go scheduler.Start(ctx)

	// 5. Handlers and router
	router := newRouter(routeDeps{
		Tokens:        tokens,
		Policy:        middleware.DefaultPolicy(),
		CorsOrigins:   cfg.CorsOrigins,
		Leads:         handlers.NewLeadHandler(leadUC, handlers.NewRateLimiter(5, time.Minute)),
		Payments:      handlers.NewPaymentHandler(paymentUC),
		Notifications: handlers.NewNotificationHandler(notifyUC, hub),
		Pdfs:          handlers.NewPdfHandler(pdfUC),
		Auth:          handlers.NewAuthHandler(loginUC, tokens.TTL(), cfg.CookieSecure),
		Health:        handlers.NewHealthHandler(db, rabbitMQ),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[HTTP] Dream Studio CRM listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
