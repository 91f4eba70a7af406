package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"propertyad/internal/config"
	"propertyad/internal/database"
	"propertyad/internal/form"
	"propertyad/internal/handler"
	"propertyad/internal/logger"
	"propertyad/internal/model"
	"propertyad/internal/queue"
	"propertyad/internal/redis"
	"propertyad/internal/repository"
	"propertyad/internal/schema"
	"propertyad/internal/service"
	"propertyad/internal/worker"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.AppMode)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Pick the submission backend
	var (
		submitter      form.Submitter
		listingHandler *handler.ListingHandler
	)
	if cfg.DatabaseEnabled() {
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

		var publisher queue.Publisher
		if cfg.RedisURL != "" {
			rdb, err := redis.NewClient(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("failed to create redis client: %w", err)
			}
			defer rdb.Close()
			if err := rdb.Ping(ctx); err != nil {
				return err
			}
			publisher = queue.NewPublisher(rdb.Client, log)
		}

		listingService := service.NewListingService(repository.NewListingRepository(db), publisher, log)
		submitter = listingService
		listingHandler = handler.NewListingHandler(listingService, log)
	} else {
		log.Info("no database configured, submissions are simulated", zap.Duration("delay", cfg.SubmitDelay))
		submitter = service.NewSimulatedSubmitter(cfg.SubmitDelay, log)
	}

	// 3. Forms
	options := model.DefaultOptions()
	store := form.NewStore(form.Config{
		Schema:    schema.New(schema.WithOptionSets(options), schema.WithStrictOptions(cfg.StrictOptions)),
		Submitter: submitter,
		Previewer: form.NewImagePreviewer(cfg.PreviewMaxDimension, cfg.PreviewJPEGQuality),
		Logger:    log,
	})
	defer store.Close()

	janitor := worker.NewJanitor(store, worker.JanitorConfig{MaxIdle: cfg.FormIdleTTL}, log)
	janitor.Start(ctx)
	defer janitor.Stop()

	// 4. Setup Server
	router := NewRouter(RouterConfig{
		FormHandler:    handler.NewFormHandler(store, options, log),
		ListingHandler: listingHandler,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
