package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-sitebuilder-be/internal/bootstrap"
	"ai-sitebuilder-be/internal/config"
	"ai-sitebuilder-be/internal/server"
	"ai-sitebuilder-be/internal/tracer"
	"ai-sitebuilder-be/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Site.VectorStore != "memory" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	// Consume and Start return once subscribed; ctx keeps the subscriptions alive.
	var g errgroup.Group
	go container.WebSocketHub.Run(ctx)
	g.Go(func() error {
		log.Println("Background: Starting Activity Feed...")
		return container.ActivityService.Start(ctx)
	})
	if container.PreviewConsumer != nil {
		g.Go(func() error {
			log.Println("Background: Starting Preview Consumer...")
			return container.PreviewConsumer.Consume(ctx)
		})
	}
	if container.NotificationService != nil {
		g.Go(func() error {
			log.Println("Background: Starting Notification Service...")
			return container.NotificationService.Start(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Background service error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		_ = srv.GetApp().Shutdown()
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
