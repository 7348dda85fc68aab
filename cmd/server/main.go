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

	"github.com/rs/cors"

	"github.com/mytheresa/parts-catalog/app/assets"
	"github.com/mytheresa/parts-catalog/app/catalog"
	"github.com/mytheresa/parts-catalog/app/categories"
	"github.com/mytheresa/parts-catalog/app/config"
	"github.com/mytheresa/parts-catalog/app/database"
	"github.com/mytheresa/parts-catalog/app/events"
	"github.com/mytheresa/parts-catalog/app/lifecycle"
	"github.com/mytheresa/parts-catalog/app/materials"
	"github.com/mytheresa/parts-catalog/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := log.New(os.Stderr, "catalog ", log.LstdFlags|log.Lmsgprefix)

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Printf("close database: %v", err)
		}
	}()

	mux := http.NewServeMux()

	var store assets.Store
	switch cfg.AssetBackend {
	case config.AssetBackendCloudinary:
		store, err = assets.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder, logger)
		if err != nil {
			return err
		}
	default:
		if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
			return fmt.Errorf("create uploads directory: %w", err)
		}
		disk := assets.NewDiskStore(cfg.UploadsDir, logger)
		mux.Handle("GET "+assets.DefaultURLPrefix+"/",
			http.StripPrefix(assets.DefaultURLPrefix, http.FileServer(http.Dir(disk.Dir()))))
		store = disk
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURI != "" {
		amqp, err := events.DialAMQP(cfg.RabbitMQURI, cfg.EventsQueue)
		if err != nil {
			return err
		}
		defer amqp.Close()
		publisher = amqp
	}

	categoryRepo := models.NewCategoriesRepository(db)
	productRepo := models.NewProductsRepository(db)
	materialRepo := models.NewMaterialsRepository(db)

	opts := []lifecycle.Option{lifecycle.WithLogger(logger), lifecycle.WithPublisher(publisher)}
	categorySvc := lifecycle.NewCategories(categoryRepo, productRepo, store, opts...)
	productSvc := lifecycle.NewProducts(productRepo, materialRepo, store, opts...)

	categories.NewCategoryHandler(categorySvc).WithLogger(logger).WithMaxUpload(cfg.MaxUploadBytes).RegisterRoutes(mux)
	catalog.NewCatalogHandler(productSvc).WithLogger(logger).WithMaxUpload(cfg.MaxUploadBytes).RegisterRoutes(mux)
	materials.NewMaterialHandler(materialRepo).WithLogger(logger).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(mux)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
