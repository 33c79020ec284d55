package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"pricecheck/frontend/cart"
	"pricecheck/frontend/scan"
	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/cache"
	httpserver "pricecheck/infrastructure/http"
	"pricecheck/infrastructure/sqlite"
)

func main() {
	addr := getenv("APP_ADDR", ":8080")
	dbPath := getenv("SQLITE_PATH", "pricecheck.db")
	taxRate := getenvFloat("TAX_RATE_PERCENT", 20)

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	sessionCache := cache.NewSessionCache()
	cartStore := cart.NewStore()
	scanGate := scan.NewGate()
	auditSvc := audit.NewService()

	server := httpserver.NewServer(addr, db, sessionCache, cartStore, scanGate, auditSvc, taxRate)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("pricecheck listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("parse %s: %v", key, err)
	}
	return f
}
