package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"jobmatch-be/internal/bootstrap"
	"jobmatch-be/internal/config"
	"jobmatch-be/internal/server"
	"jobmatch-be/internal/tracer"
	"jobmatch-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.StorageDriver != "memory" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.Hub.Run(ctx)

	if container.EventConsumer != nil {
		if err := container.EventConsumer.Consume(ctx); err != nil {
			container.Logger.Error("MAIN", "Source event consumer failed to start", map[string]interface{}{"error": err.Error()})
		}
	}

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if !cfg.Worker.Enabled {
			return
		}
		if err := container.Worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			container.Logger.Error("MAIN", "Indexing worker exited", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			container.Logger.Error("MAIN", "HTTP shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		container.Logger.Error("MAIN", "HTTP server stopped", map[string]interface{}{"error": err.Error()})
		stop()
	}

	<-workerDone
}
