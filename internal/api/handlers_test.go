package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeriq/renewal-monitor/internal/config"
	"github.com/brokeriq/renewal-monitor/internal/domain"
	"github.com/brokeriq/renewal-monitor/internal/enrichment"
	"github.com/brokeriq/renewal-monitor/internal/orchestrator"
	"github.com/brokeriq/renewal-monitor/internal/outreach"
	"github.com/brokeriq/renewal-monitor/internal/store"
)

type stubDeals struct {
	deals []domain.Deal
}

func (s *stubDeals) FetchDealsWithContacts(ctx context.Context) ([]domain.Deal, error) {
	return s.deals, nil
}

func newTestServer(t *testing.T, deals *stubDeals) (*httptest.Server, *store.Store) {
	t.Helper()
	st := store.New(nil, nil)
	orch := orchestrator.New(deals, nil, nil, enrichment.NewAssembler(nil), st,
		config.SyncConfig{FetchTimeoutSeconds: 5, EmailLimit: 50, CalendarLookbackDays: 30}, nil)
	handlers := NewHandlers(orch, st, outreach.NewGenerator(config.OpenAIConfig{}))

	srv := httptest.NewServer(SetupRoutes(handlers))
	t.Cleanup(srv.Close)
	return srv, st
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	var body map[string]any
	status := getJSON(t, srv.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["hasSynced"])
}

func TestTriggerSyncAndGetRenewals(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{deals: []domain.Deal{
		{ID: "1", Name: "Acme Renewal", CommissionPercent: 20},
		{ID: "2", Name: "Beta Renewal", CommissionPercent: 2},
	}})

	resp, err := http.Post(srv.URL+"/api/sync", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result orchestrator.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RenewalCount)
	assert.NotEmpty(t, result.SyncID)

	var listBody struct {
		Renewals []domain.Renewal `json:"renewals"`
		Count    int              `json:"count"`
	}
	status := getJSON(t, srv.URL+"/api/renewals", &listBody)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, listBody.Count)
	// Ranked by priority descending: the high-commission deal leads.
	assert.Equal(t, "R-1", listBody.Renewals[0].ID)
	assert.Greater(t, listBody.Renewals[0].PriorityScore, listBody.Renewals[1].PriorityScore)
	assert.NotNil(t, listBody.Renewals[0].ScoreBreakdown)
}

func TestGetRenewals_EmptyBeforeSync(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	var body struct {
		Renewals []domain.Renewal `json:"renewals"`
		Count    int              `json:"count"`
	}
	status := getJSON(t, srv.URL+"/api/renewals", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, body.Count)
}

func TestGetRenewal(t *testing.T) {
	srv, st := newTestServer(t, &stubDeals{})
	st.Replace(context.Background(), []domain.Renewal{
		{ID: "R-42", DealName: "Acme Renewal", CommissionPercent: 10},
	})

	var renewal domain.Renewal
	status := getJSON(t, srv.URL+"/api/renewals/R-42", &renewal)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acme Renewal", renewal.DealName)
	assert.Greater(t, renewal.PriorityScore, 0.0)
	assert.NotNil(t, renewal.ScoreBreakdown)
}

func TestGetRenewal_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	resp, err := http.Get(srv.URL + "/api/renewals/R-missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSyncStatus(t *testing.T) {
	srv, st := newTestServer(t, &stubDeals{})

	var before store.SyncStatus
	getJSON(t, srv.URL+"/api/sync/status", &before)
	assert.False(t, before.HasSynced)
	assert.Nil(t, before.LastSync)

	st.Replace(context.Background(), []domain.Renewal{{ID: "R-1"}})

	var after store.SyncStatus
	getJSON(t, srv.URL+"/api/sync/status", &after)
	assert.True(t, after.HasSynced)
	assert.Equal(t, 1, after.RecordCount)
	assert.NotNil(t, after.LastSync)
}

func TestGenerateOutreach(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	payload := `{"policyNumber": "POL-99", "customerName": "Jane Doe", "policyType": "Cyber Liability"}`
	resp, err := http.Post(srv.URL+"/api/outreach/email", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["email"], "POL-99")
	assert.Contains(t, body["email"], "Jane Doe")
}

func TestGenerateOutreach_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	resp, err := http.Post(srv.URL+"/api/outreach/email", "application/json",
		strings.NewReader(`{"customerName": "Jane Doe"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error   string `json:"error"`
		Details struct {
			MissingFields []string `json:"missingFields"`
		} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"policyNumber", "policyType"}, body.Details.MissingFields)
}

type stubMailer struct {
	to      []string
	subject string
	body    string
	err     error
}

func (m *stubMailer) SendEmail(ctx context.Context, to []string, subject, body string) (string, error) {
	m.to, m.subject, m.body = to, subject, body
	if m.err != nil {
		return "", m.err
	}
	return "msg-123", nil
}

func TestSendOutreach(t *testing.T) {
	st := store.New(nil, nil)
	orch := orchestrator.New(nil, nil, nil, enrichment.NewAssembler(nil), st,
		config.SyncConfig{FetchTimeoutSeconds: 5}, nil)
	handlers := NewHandlers(orch, st, outreach.NewGenerator(config.OpenAIConfig{}))
	mailer := &stubMailer{}
	handlers.SetMailer(mailer)

	srv := httptest.NewServer(SetupRoutes(handlers))
	t.Cleanup(srv.Close)

	payload := `{"to": ["Jane <jane@acme.com>"], "subject": "Policy POL-99 renewal", "body": "Dear Jane..."}`
	resp, err := http.Post(srv.URL+"/api/outreach/send", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "msg-123", body["messageId"])
	assert.Equal(t, []string{"Jane <jane@acme.com>"}, mailer.to)
	assert.Equal(t, "Policy POL-99 renewal", mailer.subject)
}

func TestSendOutreach_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	resp, err := http.Post(srv.URL+"/api/outreach/send", "application/json",
		strings.NewReader(`{"subject": "hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Details struct {
			MissingFields []string `json:"missingFields"`
		} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"to", "body"}, body.Details.MissingFields)
}

func TestSendOutreach_NoMailboxConfigured(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{}) // no mailer attached

	payload := `{"to": ["jane@acme.com"], "subject": "s", "body": "b"}`
	resp, err := http.Post(srv.URL+"/api/outreach/send", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGenerateOutreach_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, &stubDeals{})

	resp, err := http.Post(srv.URL+"/api/outreach/email", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
