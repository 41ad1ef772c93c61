package main

import (
	"log"
	"os"

	"github.com/rawblock/zzcore/internal/api"
	"github.com/rawblock/zzcore/internal/db"
)

func main() {
	log.Println("Starting zzcore solve engine...")

	dbUrl := os.Getenv("DATABASE_URL")

	var auditStore *db.AuditStore
	if dbUrl != "" {
		store, err := db.Connect(dbUrl)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without an audit log. Error: %v", err)
		} else {
			defer store.Close()
			if err := store.InitSchema(); err != nil {
				log.Printf("Warning: audit schema init failed: %v", err)
			}
			auditStore = store
		}
	} else {
		log.Println("DATABASE_URL not set — running without a run-history audit log")
	}

	// ZZ_IGNORE_CONSTRAINTS mirrors the original's startup flag that clears
	// a loaded netlist's constraints and fair_constraints gobs (see
	// gig.Netlist.ClearConstraints); this driver's /solve endpoint takes a
	// DIMACS cnf body rather than a netlist, so there is nothing to clear
	// here — the flag is read so a future netlist-accepting driver or CLI
	// can honor it without inventing a new env var name.
	if os.Getenv("ZZ_IGNORE_CONSTRAINTS") == "true" {
		log.Println("[config] ZZ_IGNORE_CONSTRAINTS=true (no effect on the DIMACS /solve endpoint)")
	}

	hub := api.NewHub()
	go hub.Run()

	r := api.SetupRouter(auditStore, hub)

	port := getEnvOrDefault("PORT", "5339")
	log.Printf("zzcore engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
