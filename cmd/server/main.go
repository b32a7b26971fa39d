package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "invoicepipe/docs"
	"invoicepipe/internal/config"
	"invoicepipe/internal/domain"
	"invoicepipe/internal/handler"
	"invoicepipe/internal/parser"
	_ "invoicepipe/internal/parser/gemini"
	_ "invoicepipe/internal/parser/groq"
	"invoicepipe/internal/port"
	"invoicepipe/internal/repository/postgres"
	"invoicepipe/internal/router"
	"invoicepipe/internal/service"
	localstorage "invoicepipe/internal/storage/local"
	s3storage "invoicepipe/internal/storage/s3"
	"invoicepipe/internal/textextract"
)

// @title InvoicePipe API
// @version 1.0
// @description PDF invoice intake: upload, text extraction, structured extraction with provider fallback, review and export.
// @BasePath /api/v1
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
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepo(db)

	// Initialize storage
	storage, filesDir, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	// Initialize extraction pipeline
	textExtractor := textextract.NewDefault(cfg.Extract)
	log.Printf("Text extraction strategies: %v", textExtractor.Strategies())

	var extractors []port.StructuredExtractor
	for _, pc := range cfg.Parser.Configured() {
		ex, err := parser.NewExtractorFromConfig(&pc)
		if err != nil {
			return fmt.Errorf("failed to initialize parser %q: %w", pc.Provider, err)
		}
		extractors = append(extractors, ex)
	}
	orchestrator := parser.NewOrchestrator(extractors, time.Now)
	if len(extractors) == 0 {
		log.Printf("WARNING: no parser providers configured, extraction will store placeholder data")
	} else {
		log.Printf("Parser providers: %v", orchestrator.Providers())
	}

	// Initialize services
	invoiceSvc := service.NewInvoiceService(invoiceRepo, storage, textextract.NewInspector(), cfg)
	extractionSvc := service.NewExtractionService(invoiceRepo, storage, textExtractor, orchestrator, cfg)

	// Setup router
	r := router.Setup(router.Handlers{
		Invoice:    handler.NewInvoiceHandler(invoiceSvc),
		Extraction: handler.NewExtractionHandler(extractionSvc),
		Export:     handler.NewExportHandler(invoiceSvc),
		Health:     handler.NewHealthHandler(db),
	}, router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		FilesDir:       filesDir,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newStorage builds the configured blob store. filesDir is non-empty when
// uploads should also be served from disk under /files.
func newStorage(ctx context.Context, cfg *config.Config) (port.ObjectStorage, string, error) {
	switch domain.StorageDriver(cfg.Storage.Driver) {
	case domain.StorageDriverLocal:
		store, err := localstorage.NewStore(&cfg.Storage)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize local storage: %w", err)
		}
		log.Printf("Storage: local disk at %s", store.Dir())
		return store, store.Dir(), nil
	case domain.StorageDriverS3, "":
		store, err := s3storage.NewStore(ctx, &cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Printf("Storage: s3 bucket %s", cfg.S3.Bucket)
		return store, "", nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// configureLogging applies log flags and the gin mode. The plain format drops
// timestamps for platforms that add their own.
func configureLogging(cfg *config.Config) {
	if cfg.Log.Format == "plain" {
		log.SetFlags(0)
	} else {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}
	if cfg.Server.Environment == "production" || cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
}
