package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brokeriq/renewal-monitor/internal/orchestrator"
	"github.com/brokeriq/renewal-monitor/internal/outreach"
	"github.com/brokeriq/renewal-monitor/internal/pkg/httputil"
	"github.com/brokeriq/renewal-monitor/internal/scoring"
	"github.com/brokeriq/renewal-monitor/internal/store"
)

// Mailer sends outreach email through the connected mailbox.
type Mailer interface {
	SendEmail(ctx context.Context, to []string, subject, body string) (string, error)
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	orchestrator *orchestrator.Orchestrator
	store        *store.Store
	generator    *outreach.Generator
	mailer       Mailer
	startedAt    time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(orch *orchestrator.Orchestrator, st *store.Store, gen *outreach.Generator) *Handlers {
	return &Handlers{
		orchestrator: orch,
		store:        st,
		generator:    gen,
		startedAt:    time.Now(),
	}
}

// SetMailer attaches the outbound mailbox. Without one, send requests
// are rejected as unconfigured.
func (h *Handlers) SetMailer(m Mailer) {
	h.mailer = m
}

// HealthCheck reports process liveness and sync state.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.store.Status()
	httputil.OK(w, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startedAt).String(),
		"hasSynced": status.HasSynced,
	})
}

// TriggerSync runs one full sync cycle and reports its result.
func (h *Handlers) TriggerSync(w http.ResponseWriter, r *http.Request) {
	result := h.orchestrator.Sync(r.Context())
	if !result.Success {
		httputil.JSON(w, http.StatusInternalServerError, result)
		return
	}
	httputil.OK(w, result)
}

// GetRenewals returns the cached renewal list, scored and ranked by
// priority descending. Scores are computed on read, never stored.
func (h *Handlers) GetRenewals(w http.ResponseWriter, r *http.Request) {
	ranked := scoring.RankAll(h.store.List())
	httputil.OK(w, map[string]any{
		"renewals": ranked,
		"count":    len(ranked),
	})
}

// GetRenewal returns one cached renewal by id, scored.
func (h *Handlers) GetRenewal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	renewal, ok := h.store.Get(id)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "renewal not found")
		return
	}
	res := scoring.Score(renewal)
	renewal.PriorityScore = res.Value
	renewal.ScoreBreakdown = res.Breakdown
	httputil.OK(w, renewal)
}

// GetSyncStatus reports the last sync time and cached record count.
// Callers use hasSynced to distinguish "never synced" from "synced but
// empty".
func (h *Handlers) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.store.Status())
}

// GenerateOutreach builds an outreach email for the given policy
// details. Requests missing mandatory fields are rejected with the
// missing-field list.
func (h *Handlers) GenerateOutreach(w http.ResponseWriter, r *http.Request) {
	var req outreach.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if missing := outreach.Validate(req); len(missing) > 0 {
		httputil.ErrorWithDetails(w, http.StatusBadRequest, "mandatory policy details missing", map[string]any{
			"missingFields": missing,
		})
		return
	}

	email, err := h.generator.GenerateEmail(r.Context(), req)
	if err != nil {
		httputil.ServerError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"email": email})
}

// SendOutreach sends a prepared outreach email through the connected
// mailbox. Pairs with GenerateOutreach: the UI previews the generated
// body, then posts it here.
func (h *Handlers) SendOutreach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		Body    string   `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var missing []string
	if len(req.To) == 0 {
		missing = append(missing, "to")
	}
	if req.Subject == "" {
		missing = append(missing, "subject")
	}
	if req.Body == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		httputil.ErrorWithDetails(w, http.StatusBadRequest, "send details missing", map[string]any{
			"missingFields": missing,
		})
		return
	}

	if h.mailer == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "outbound mailbox not configured")
		return
	}

	messageID, err := h.mailer.SendEmail(r.Context(), req.To, req.Subject, req.Body)
	if err != nil {
		httputil.ServerError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"messageId": messageID})
}
