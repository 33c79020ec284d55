package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"pricecheck/frontend/login"
	"pricecheck/infrastructure/audit"
	"pricecheck/infrastructure/sqlite"
)

// setpassword stores the shared daily password. The raw password comes from
// the first argument or PRICECHECK_PASSWORD; only its argon2id hash is kept.
func main() {
	password := ""
	if len(os.Args) > 1 {
		password = strings.TrimSpace(os.Args[1])
	}
	if password == "" {
		password = strings.TrimSpace(os.Getenv("PRICECHECK_PASSWORD"))
	}
	if password == "" {
		log.Fatalf("usage: setpassword <password> (or set PRICECHECK_PASSWORD)")
	}

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		log.Fatalf("resolve migrations dir: %v", err)
	}

	defaultDBPath := filepath.Join(filepath.Dir(filepath.Dir(filepath.Dir(migrationsDir))), "pricecheck.db")
	dbPath := getenv("SQLITE_PATH", defaultDBPath)

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	if err := login.UpsertSharedPasswordHash(context.Background(), db, audit.NewService(), "setpassword", password); err != nil {
		log.Fatalf("set shared password: %v", err)
	}

	fmt.Println("shared password updated")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		filepath.Join("infrastructure", "sqlite", "migrations"),
		filepath.Join("..", "..", "infrastructure", "sqlite", "migrations"),
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations"))
	}

	tried := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		absPath, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		tried = append(tried, absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			return absPath, nil
		}
	}

	return "", fmt.Errorf("migrations dir not found; tried: %s", strings.Join(tried, ", "))
}
