package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"subpage-service/internal/adapter/auth"
	"subpage-service/internal/adapter/exchangerate"
	"subpage-service/internal/adapter/postgres"
	"subpage-service/internal/cache"
	"subpage-service/internal/handler"
	"subpage-service/internal/metrics"
	"subpage-service/internal/service"
	"subpage-service/internal/usecase"
	"subpage-service/internal/worker"
	"subpage-service/pkg/config"
	"subpage-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log := logger.Init(cfg.Log.Level, cfg.Log.Format)

	log.Infof("Starting %s...", cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize db pool
	dbPool, err := postgres.InitDBPool(ctx, *cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize db pool: %v", err)
	}
	defer dbPool.Close()

	if err := postgres.RunMigrations(postgres.BuildDSN(*cfg), log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// initialize adapters
	rateClient := exchangerate.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.Timeout, log)
	authClient := auth.NewClient(cfg.Auth.URL, cfg.Auth.AnonKey, cfg.Auth.Timeout, log)
	rateRepo := postgres.NewRateRepo(dbPool, log)
	campaignRepo := postgres.NewCampaignRepo(dbPool, log)
	log.Info("Initialized adapters")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// initialize service
	rateCache := cache.NewRateCache(cfg.Exchange.CacheTTL)
	rateService := service.NewRateService(rateClient, rateRepo, rateCache, m, cfg.Exchange.Timeout, log)
	log.Info("Initialized service layer")

	// initialize usecases
	currencyUsecase := usecase.NewCurrencyUsecase(rateService, m, log)
	campaignUsecase := usecase.NewCampaignUsecase(campaignRepo, log)
	log.Info("Initialized usecase layer")

	r := handler.NewRouter(handler.Handlers{
		Conversion: handler.NewConversionHandler(currencyUsecase, log),
		Rates:      handler.NewRateHandler(currencyUsecase, log),
		Campaigns:  handler.NewCampaignHandler(campaignUsecase, authClient, log),
	}, cfg.Cors.AllowHeaders, reg)

	// task scheduler
	scheduler := worker.NewScheduler(rateService, time.Minute, log)
	if err := scheduler.Register(cfg.Exchange.SweepSchedule, cfg.Exchange.RefreshSchedule); err != nil {
		log.Fatalf("Error adding task to schedule: %v", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on port %s...", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	<-ctx.Done()
	log.Info("Got shutdown signal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during server shutdown")
	}
	log.Info("Server stopped")

	scheduler.Stop(shutdownCtx)

	log.Info("Gracefully shut down")
}
