/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the SE Booking API server. Owns construction
  and teardown: the store handle is built here and injected into the
  handlers, never reached through global state.

STARTUP SEQUENCE:
  1. Read environment configuration, apply flag overrides
  2. Initialize SQLite store
  3. Optionally seed the bootstrap admin credential
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  PORT             HTTP server port (default: 8080)
  DB_PATH          SQLite database path (default: sebooking.db)
  ALLOWED_ORIGINS  CORS origins, comma separated (default: *)
  ADMIN_USERNAME   Bootstrap admin username (optional)
  ADMIN_PASSWORD   Bootstrap admin password (optional)

  Flags -port and -db override the environment when set.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sebooking/booking-engine/api"
	"github.com/sebooking/booking-engine/store/sqlite"
)

type config struct {
	Port           int      `envconfig:"PORT" default:"8080"`
	DBPath         string   `envconfig:"DB_PATH" default:"sebooking.db"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	AdminUsername  string   `envconfig:"ADMIN_USERNAME"`
	AdminPassword  string   `envconfig:"ADMIN_PASSWORD"`
}

func main() {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	// Flags override the environment.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// First-run bootstrap so the back-office is reachable.
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := store.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Printf("Warning: failed to seed admin credential: %v", err)
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store, store)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("SE Booking API listening on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
