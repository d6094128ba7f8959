// Package orchestrator coordinates one full fetch-match-cache cycle:
// fetch deals, emails, and calendar events concurrently, assemble
// renewals, and replace the process-wide cache.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brokeriq/renewal-monitor/internal/config"
	"github.com/brokeriq/renewal-monitor/internal/domain"
	"github.com/brokeriq/renewal-monitor/internal/enrichment"
	"github.com/brokeriq/renewal-monitor/internal/pkg/distlock"
	"github.com/brokeriq/renewal-monitor/internal/pkg/logger"
	"github.com/brokeriq/renewal-monitor/internal/store"
)

// DealSource fetches CRM deals with contact/company already resolved.
type DealSource interface {
	FetchDealsWithContacts(ctx context.Context) ([]domain.Deal, error)
}

// EmailSource fetches enriched mailbox messages.
type EmailSource interface {
	FetchEmails(ctx context.Context, limit int) ([]domain.EmailMessage, error)
}

// EventSource fetches calendar events within a lookback window.
type EventSource interface {
	FetchCalendarEvents(ctx context.Context, lookbackDays int) ([]domain.CalendarEvent, error)
}

// Result reports the outcome of one sync pass.
type Result struct {
	SyncID         string     `json:"syncId"`
	Success        bool       `json:"success"`
	RenewalCount   int        `json:"renewalCount"`
	EmailsAnalyzed int        `json:"emailsAnalyzed"`
	MeetingsFound  int        `json:"meetingsFound"`
	LastSync       *time.Time `json:"lastSync,omitempty"`
	DurationMs     int64      `json:"durationMs"`
	Error          string     `json:"error,omitempty"`
}

// Orchestrator wires the three sources to the assembler and the cache.
// A nil source degrades to an empty collection, same as a fetch failure.
type Orchestrator struct {
	deals     DealSource
	emails    EmailSource
	events    EventSource
	assembler *enrichment.Assembler
	store     *store.Store
	cfg       config.SyncConfig

	// Serializes syncs in-process; the distributed lock covers replicas.
	syncMu sync.Mutex
	lock   distlock.DistLock
}

// New creates an Orchestrator. lock may be nil, in which case only the
// in-process mutex guards against overlapping syncs.
func New(deals DealSource, emails EmailSource, events EventSource, assembler *enrichment.Assembler, st *store.Store, cfg config.SyncConfig, lock distlock.DistLock) *Orchestrator {
	if lock == nil {
		lock = distlock.NoopLock{}
	}
	return &Orchestrator{
		deals:     deals,
		emails:    emails,
		events:    events,
		assembler: assembler,
		store:     st,
		cfg:       cfg,
		lock:      lock,
	}
}

// Sync runs one full cycle. Failure of any single source degrades to an
// empty collection for that source; only an assembly failure fails the
// sync, leaving the previous cache untouched.
func (o *Orchestrator) Sync(ctx context.Context) Result {
	o.syncMu.Lock()
	defer o.syncMu.Unlock()

	result := Result{SyncID: uuid.NewString()}
	start := time.Now()

	acquired, err := o.lock.Acquire(ctx)
	if err != nil {
		logger.Warn("sync lock unavailable, proceeding locally", "error", err.Error())
	} else if !acquired {
		result.Error = "another sync is already running"
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	} else {
		defer func() {
			if err := o.lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release sync lock", "error", err.Error())
			}
		}()
	}

	logger.Info("starting data sync", "sync_id", result.SyncID)

	deals, emails, events := o.fetchAll(ctx)
	logger.Info("fetch phase complete",
		"sync_id", result.SyncID,
		"deals", len(deals),
		"emails", len(emails),
		"events", len(events))

	renewals, err := o.assembler.Assemble(deals, emails, events)
	if err != nil {
		logger.Error("sync failed during enrichment", "sync_id", result.SyncID, "error", err.Error())
		result.Error = fmt.Sprintf("enrichment failed: %v", err)
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	o.store.Replace(ctx, renewals)

	status := o.store.Status()
	result.Success = true
	result.RenewalCount = len(renewals)
	result.EmailsAnalyzed = len(emails)
	result.MeetingsFound = len(events)
	result.LastSync = status.LastSync
	result.DurationMs = time.Since(start).Milliseconds()

	logger.Info("sync completed",
		"sync_id", result.SyncID,
		"renewals", result.RenewalCount,
		"duration_ms", result.DurationMs)
	return result
}

// fetchAll runs the three fetches concurrently, each under its own
// timeout. A failed or timed-out source falls back to empty rather than
// aborting the sync.
func (o *Orchestrator) fetchAll(ctx context.Context) ([]domain.Deal, []domain.EmailMessage, []domain.CalendarEvent) {
	var (
		wg     sync.WaitGroup
		deals  []domain.Deal
		emails []domain.EmailMessage
		events []domain.CalendarEvent
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		deals = o.fetchDeals(ctx)
	}()
	go func() {
		defer wg.Done()
		emails = o.fetchEmails(ctx)
	}()
	go func() {
		defer wg.Done()
		events = o.fetchEvents(ctx)
	}()
	wg.Wait()

	return deals, emails, events
}

func (o *Orchestrator) fetchDeals(ctx context.Context) []domain.Deal {
	if o.deals == nil {
		logger.Warn("crm source not configured, using empty data")
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout())
	defer cancel()

	deals, err := o.deals.FetchDealsWithContacts(fetchCtx)
	if err != nil {
		logger.Warn("crm fetch failed", "error", err.Error())
		return nil
	}
	return deals
}

func (o *Orchestrator) fetchEmails(ctx context.Context) []domain.EmailMessage {
	if o.emails == nil {
		logger.Warn("email source not configured, using empty data")
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout())
	defer cancel()

	emails, err := o.emails.FetchEmails(fetchCtx, o.cfg.EmailLimit)
	if err != nil {
		logger.Warn("email fetch failed", "error", err.Error())
		return nil
	}
	return emails
}

func (o *Orchestrator) fetchEvents(ctx context.Context) []domain.CalendarEvent {
	if o.events == nil {
		logger.Warn("calendar source not configured, using empty data")
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout())
	defer cancel()

	events, err := o.events.FetchCalendarEvents(fetchCtx, o.cfg.CalendarLookbackDays)
	if err != nil {
		logger.Warn("calendar fetch failed", "error", err.Error())
		return nil
	}
	return events
}
