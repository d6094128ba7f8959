// One-shot sync runner: fetches, enriches, prints the ranked renewals,
// and exits. Useful for cron-style refreshes and for verifying
// connector credentials without starting the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/brokeriq/renewal-monitor/internal/config"
	"github.com/brokeriq/renewal-monitor/internal/enrichment"
	"github.com/brokeriq/renewal-monitor/internal/google"
	"github.com/brokeriq/renewal-monitor/internal/hubspot"
	"github.com/brokeriq/renewal-monitor/internal/orchestrator"
	"github.com/brokeriq/renewal-monitor/internal/scoring"
	"github.com/brokeriq/renewal-monitor/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	printList := flag.Bool("print", false, "print the ranked renewal list as JSON")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var dealSource orchestrator.DealSource
	if cfg.HubSpot.Enabled() {
		dealSource = hubspot.NewClient(cfg.HubSpot)
	}

	var emailSource orchestrator.EmailSource
	var eventSource orchestrator.EventSource
	if cfg.Google.Enabled() {
		connector, err := google.NewConnector(ctx, cfg.Google)
		if err != nil {
			log.Printf("Google connector unavailable: %v", err)
		} else {
			emailSource = connector
			eventSource = connector
		}
	}

	overrides, err := enrichment.LoadOverrides(cfg.Overrides.CSVPath)
	if err != nil {
		log.Printf("Placement overrides unavailable: %v", err)
	}

	renewalStore := store.New(nil, nil)
	orch := orchestrator.New(dealSource, emailSource, eventSource,
		enrichment.NewAssembler(overrides), renewalStore, cfg.Sync, nil)

	result := orch.Sync(ctx)
	if !result.Success {
		log.Fatalf("Sync failed: %s", result.Error)
	}
	log.Printf("Sync complete: %d renewals, %d emails analyzed, %d meetings found (%dms)",
		result.RenewalCount, result.EmailsAnalyzed, result.MeetingsFound, result.DurationMs)

	if *printList {
		ranked := scoring.RankAll(renewalStore.List())
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ranked); err != nil {
			log.Fatalf("Failed to encode renewals: %v", err)
		}
	}
}
