package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datakamer/datakamer-backend/config"
	"github.com/datakamer/datakamer-backend/internal/bootstrap"
	"github.com/datakamer/datakamer-backend/internal/cache"
	"github.com/datakamer/datakamer-backend/internal/catalog/service"
	"github.com/datakamer/datakamer-backend/internal/loader"
	"github.com/datakamer/datakamer-backend/internal/media"
	"github.com/datakamer/datakamer-backend/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "datakamer-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("[error] %v", err)
	}
	defer store.DB().Close()

	views, err := cache.Connect(ctx, &cfg.Redis)
	if err != nil {
		log.Printf("[warn] view cache disabled err=%v", err)
		views = nil
	}
	defer views.Close()

	files, err := media.Open(ctx, &cfg.Media)
	if err != nil {
		log.Fatalf("[error] media store: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalog := service.New(store, service.WithCache(views), service.WithMedia(files))

	if cfg.Fixture.ReloadCron != "" {
		l := loader.New(store,
			loader.WithReporter(loader.LogReporter{Debug: cfg.App.LogLevel == "debug"}),
			loader.WithInvalidator(views),
		)
		sched, err := scheduler.New(cfg.Fixture.ReloadCron, cfg.Fixture.Path, l, reg)
		if err != nil {
			log.Fatalf("[error] %v", err)
		}
		sched.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(sctx)
		}()
	}

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		DB:             store.DB(),
		Cache:          views,
		Catalog:        catalog,
		Media:          media.NewHandler(files, cfg.Media.MaxUploadBytes),
		Registry:       reg,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})
	if err != nil {
		log.Fatalf("[error] router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[info] listening port=%s env=%s db=%s cache=%t", cfg.Server.Port, cfg.App.Environment, cfg.Database.Driver, views != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[error] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[info] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[error] shutdown: %v", err)
	}
}
