package main

import (
	"context"
	"flag"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/cache"
	"recruitportal_backend/internal/config"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/services"
)

func main() {
	seed := flag.Bool("seed", false, "создать планы по умолчанию после миграции")
	flag.Parse()

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Migration completed", "tables", len(database.Models()))

	if !*seed {
		return
	}

	sc := services.NewServiceContainer(services.ContainerOptions{
		Cache:    cache.NewInMemoryCache(cfg.CacheTTL()),
		CacheTTL: cfg.CacheTTL(),
	})
	created, err := sc.CatalogService.SeedDefaultPlans(context.Background(), db, cfg.Billing.DefaultCurrency)
	if err != nil {
		logger.Fatal("Seeding failed", "error", err)
	}
	logger.Info("Seeding completed", "created", created)
}
