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
	"github.com/joho/godotenv"

	"github.com/techwomen-moldova/mentordesk/internal/api"
	"github.com/techwomen-moldova/mentordesk/internal/config"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/internal/profiles"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

func main() {
	fmt.Println("Starting mentordesk daemon...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	// 1. Profile collections served to the public site
	repo, err := profiles.NewFileRepository(cfg.SiteDataDir)
	if err != nil {
		log.Fatalf("Failed to open profile collections: %v", err)
	}
	publisher := profiles.NewPublisher(repo, logger.With("component", "publisher"))

	// 2. Shared moderation state
	store, err := sdk.OpenLocal(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}
	keys, _ := store.Keys()
	fmt.Printf("State loaded from %s (%d keys). Collections in %s.\n", cfg.DataDir, len(keys), cfg.SiteDataDir)

	// 3. HTTP API
	h := &api.Handler{
		Publisher: publisher,
		Profiles:  publisher.Repository(),
		Store:     store,
		Log:       logger.With("component", "api"),
	}
	r := gin.Default()
	api.Register(r, h)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		fmt.Printf("HTTP API listening on :%s\n", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 4. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutdown signal received. Draining requests...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
	fmt.Println("Exiting.")
}
