/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation planner server: configuration,
  dependency wiring, manager token bootstrap, the reminder loop, and
  graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env / environment, flags override)
  2. Initialize SQLite store
  3. Ensure per-department manager tokens exist (generate on first boot)
  4. Build the mailer and start the reminder sweep
  5. Start HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database

MANAGER LINKS:
  On startup the manager console link for every department is logged,
  token included. Those links are the only way managers authenticate,
  so operators copy them from the boot log.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections (30s drain)
  2. Stop the reminder scheduler and wait for an in-flight sweep
  3. Close the database

SEE ALSO:
  - config package: environment variables
  - api/server.go: router configuration
  - notify package: reminder sweep
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eigida/vacations/api"
	"github.com/eigida/vacations/auth"
	"github.com/eigida/vacations/config"
	"github.com/eigida/vacations/notify"
	"github.com/eigida/vacations/store/sqlite"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err), zap.String("path", *dbPath))
	}
	defer store.Close()

	tokens, err := auth.EnsureTokens(context.Background(), store, cfg.TokenOverrides)
	if err != nil {
		log.Fatal("failed to bootstrap manager tokens", zap.Error(err))
	}
	for dept, token := range tokens {
		log.Info("manager console link",
			zap.String("department", string(dept)),
			zap.String("url", fmt.Sprintf("http://localhost:%d/api/manager/%s/session?token=%s", *port, dept, token)))
	}

	mailer := notify.NewSMTPMailer(cfg, log)
	scheduler := notify.NewReminderScheduler(store, mailer, log)
	scheduler.Interval = cfg.ReminderInterval
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(store, tokens, scheduler, log)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
