package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cartbridge/internal/config"
	"cartbridge/internal/db"
	"cartbridge/internal/seed"
)

func main() {
	count := flag.Int("count", 20, "number of catalog products to seed")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, *count); err != nil {
		logger.Fatalf("seed: %v", err)
	}

	logger.Printf("seeded %d products", *count)
}
