package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brokeriq/renewal-monitor/internal/api"
	"github.com/brokeriq/renewal-monitor/internal/config"
	"github.com/brokeriq/renewal-monitor/internal/enrichment"
	"github.com/brokeriq/renewal-monitor/internal/google"
	"github.com/brokeriq/renewal-monitor/internal/hubspot"
	"github.com/brokeriq/renewal-monitor/internal/orchestrator"
	"github.com/brokeriq/renewal-monitor/internal/outreach"
	"github.com/brokeriq/renewal-monitor/internal/pkg/distlock"
	"github.com/brokeriq/renewal-monitor/internal/store"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Renewal Monitor API server starting")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx := context.Background()

	// Optional Redis: snapshot mirror and cross-replica sync lock
	var redisClient *redis.Client
	var syncLock distlock.DistLock
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, continuing without snapshot mirror: %v", err)
			redisClient = nil
		} else {
			syncLock = distlock.NewRedisLock(redisClient, "renewal-sync", distlock.DefaultSyncTTL)
		}
	}

	// Optional S3 snapshot archive
	archiver, err := store.NewS3Archiver(ctx, cfg.Archive)
	if err != nil {
		log.Printf("S3 archive unavailable, continuing without it: %v", err)
		archiver = nil
	}

	renewalStore := store.New(redisClient, archiver)

	// Connectors: a missing configuration degrades that source to empty
	// at sync time rather than failing startup.
	var dealSource orchestrator.DealSource
	if cfg.HubSpot.Enabled() {
		dealSource = hubspot.NewClient(cfg.HubSpot)
	} else {
		log.Println("HubSpot not configured; deals will be empty")
	}

	var emailSource orchestrator.EmailSource
	var eventSource orchestrator.EventSource
	var mailbox *google.Connector
	if cfg.Google.Enabled() {
		connector, err := google.NewConnector(ctx, cfg.Google)
		if err != nil {
			log.Printf("Google connector unavailable: %v", err)
		} else {
			emailSource = connector
			eventSource = connector
			mailbox = connector
		}
	} else {
		log.Println("Google not configured; emails and calendar will be empty")
	}

	overrides, err := enrichment.LoadOverrides(cfg.Overrides.CSVPath)
	if err != nil {
		log.Printf("Placement overrides unavailable: %v", err)
	} else if overrides != nil {
		log.Printf("Loaded %d placement override records", len(overrides))
	}

	assembler := enrichment.NewAssembler(overrides)
	orch := orchestrator.New(dealSource, emailSource, eventSource, assembler, renewalStore, cfg.Sync, syncLock)
	generator := outreach.NewGenerator(cfg.OpenAI)

	handlers := api.NewHandlers(orch, renewalStore, generator)
	if mailbox != nil {
		handlers.SetMailer(mailbox)
	}
	server := api.NewServer(handlers)

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
