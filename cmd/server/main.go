package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"prodflow/internal/config"
	"prodflow/internal/container"
	"prodflow/internal/telemetry"
	"prodflow/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := telemetry.Init(ctx, "prodflow", version, telemetry.Options{
		Enabled: appConfig.Telemetry.Enabled,
		Stdout:  appConfig.Telemetry.Stdout,
	}); err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.UsesMemoryStore() {
		log.Println("DATABASE_URL not set: initiatives are kept in memory and lost on exit")
	}

	server := ui.NewServer(ui.Services{
		Lifecycle:      appContainer.Lifecycle,
		Escalation:     appContainer.Escalation,
		Reconciliation: appContainer.Reconciliation,
		Backlog:        appContainer.Backlog,
		Exporter:       appContainer.Exporter,
		Roster:         appContainer.Roster,
	})

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
