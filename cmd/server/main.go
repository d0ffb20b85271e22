/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the incentive calculation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize SQLite store
  3. Optionally load rules from a YAML config file
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: incentives.db, env DATABASE_PATH)
           Use ":memory:" for in-memory database
  -rules   Optional YAML file of incentive rules to load at startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/incentives.db"

  # Run with in-memory database and seeded rules
  ./server -db=":memory:" -rules=./config/rules.yaml

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  PORT, DATABASE_PATH. A .env file in the working directory is loaded
  when present; flags take precedence over environment values.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
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
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/incentive-engine/api"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/store/sqlite"
)

func main() {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	// Flags (env supplies defaults, flags win)
	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DATABASE_PATH", "incentives.db"), "SQLite database path")
	rulesPath := flag.String("rules", "", "Optional YAML rules file loaded at startup")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed rules from config if requested
	if *rulesPath != "" {
		if err := loadRulesFile(context.Background(), store, *rulesPath); err != nil {
			log.Fatalf("Failed to load rules from %s: %v", *rulesPath, err)
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
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

// loadRulesFile parses a YAML rules document and upserts every rule, in
// document order, so the file order becomes the evaluation order.
func loadRulesFile(ctx context.Context, store *sqlite.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rules, err := factory.NewRuleFactory().ParseRulesYAML(data)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if err := store.SaveRule(ctx, rule); err != nil {
			return err
		}
	}

	log.Printf("Loaded %d rule(s) from %s", len(rules), path)
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
