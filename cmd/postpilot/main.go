package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postpilot/internal/auth"
	"postpilot/internal/config"
	"postpilot/internal/db"
	httpx "postpilot/internal/http"
	"postpilot/internal/linkedin"
	"postpilot/internal/posts"
)

func main() {
	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.JWTExpiry)

	store := &posts.Store{DB: gdb}
	resolver := &linkedin.StoreResolver{DB: gdb}
	client := linkedin.NewClient(cfg.LinkedInAPIBase, cfg.LinkedInTimeout)
	pipeline := posts.NewPipeline(store, resolver, client)

	r := httpx.NewRouter(cfg, gdb, jwtSvc, store, pipeline)

	// scheduler loop
	worker := posts.NewWorker(store, pipeline, cfg.SchedulerPoll, cfg.SchedulerBatch)

	ctx, cancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown: stop claiming, let the in-hand post finish
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	<-workerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
