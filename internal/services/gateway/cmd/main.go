package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/agrisense/agrisense/internal/services/gateway/app"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	gw := app.NewGateway(app.Config{
		PersistenceBaseURL: cfg.PersistenceURL,
		AdvisorBaseURL:     cfg.AdvisorURL,
		EventsBaseURL:      cfg.EventURL,
		HTTPTimeout:        time.Duration(cfg.TimeoutMs) * time.Millisecond,
		BreakerFailures:    uint32(cfg.BreakerFailures),
		BreakerOpenFor:     time.Duration(cfg.BreakerOpenSec) * time.Second,
		DroughtMoisturePct: cfg.DroughtMoisturePct,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", gw.HandleHealthz)
	mux.HandleFunc("/dashboard/data", gw.HandleDashboard)

	c := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet},
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("gateway: shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(ctx)
	}()

	log.Printf("gateway: HTTP listening on :%s", cfg.Port)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("gateway: http server error: %v", err)
	}
}
