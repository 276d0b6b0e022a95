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

	"sweetyshop/internal/api"
	"sweetyshop/internal/config"
	"sweetyshop/internal/events"
	"sweetyshop/internal/menusync"
	"sweetyshop/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[server] store: %v", err)
	}
	defer st.Close()

	// Opening a SQL store creates its table; "migrate" stops right there.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		log.Printf("[server] store %s is ready", st.Name())
		return
	}

	hub := events.NewHub()
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.NATS.URL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Printf("[server] NATS disabled: %v", err)
		} else {
			defer natsPub.Close()
			publishers = append(publishers, natsPub)
			log.Printf("[server] publishing menu updates to NATS subject %s", cfg.NATS.Subject)
		}
	}

	svc := menusync.NewService(st, publishers)
	srv := api.NewServer(cfg, svc, http.HandlerFunc(hub.ServeWS))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[server] shutdown: %v", err)
		}
	}()

	log.Printf("[server] listening on %s (store=%s)", cfg.Addr, st.Name())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[server] %v", err)
	}
}
