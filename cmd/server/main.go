package main

import (
	"fmt"
	"log"

	"shopbooks/internal/config"
	"shopbooks/internal/email/noop"
	"shopbooks/internal/email/ses"
	"shopbooks/internal/handler"
	"shopbooks/internal/numbering"
	"shopbooks/internal/port"
	"shopbooks/internal/repository/postgres"
	"shopbooks/internal/router"
	"shopbooks/internal/service"
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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	companyRepo := postgres.NewCompanyRepo(db)
	partyRepo := postgres.NewPartyRepo(db)
	itemRepo := postgres.NewItemRepo(db)
	stockRepo := postgres.NewStockRepo(db)
	seqRepo := postgres.NewSequenceRepo(db)

	// Initialize email sender
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	allocator := numbering.NewAllocator(seqRepo)
	documentSvc := service.NewDocumentService(docRepo, companyRepo, partyRepo, itemRepo, stockRepo, allocator, emailSender)
	paymentSvc := service.NewPaymentService(docRepo, partyRepo, emailSender)
	conversionSvc := service.NewConversionService(docRepo, companyRepo, partyRepo, itemRepo, stockRepo, allocator)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(documentSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc)
	conversionH := handler.NewConversionHandler(conversionSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, documentH, paymentH, conversionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
