// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the catalog API server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecomcat/internal/cache"
	"ecomcat/internal/catalog"
	"ecomcat/internal/config"
	"ecomcat/internal/database"
	"ecomcat/internal/handlers"
	"ecomcat/internal/imaging"
	"ecomcat/internal/router"
	"ecomcat/internal/storage"
	"ecomcat/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey. The cache is optional: without it every read
	// hits the database and the API stays correct.
	var catalogCache *cache.Catalog
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey not available, response caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		catalogCache = cache.NewCatalog(valkeyClient, cfg.CacheTTL)
	}

	// Connect to S3-compatible object storage (optional — the API works
	// without it, with image uploads disabled).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		// libvips backs the upload pipeline, so it only runs when
		// storage is configured.
		imaging.Startup(0)
		defer imaging.Shutdown()
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	comboPackStore := store.NewComboPackStore(db)
	memberships := store.NewComboProductStore(db, cfg.SyncChunkSize)
	packMembers := store.NewComboPackMemberStore(db, cfg.SyncChunkSize)

	// Wire the catalog services.
	productService := catalog.NewProductService(db, productStore, categoryStore, memberships, packMembers, catalogCache, storageClient)
	packService := catalog.NewComboPackService(db, comboPackStore, productStore, categoryStore, packMembers, catalogCache, storageClient)

	// Create handler groups and the router.
	r := router.New(
		handlers.NewCategories(categoryStore, productService),
		handlers.NewProducts(productService),
		handlers.NewComboPacks(packService),
		handlers.NewImages(storageClient),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
