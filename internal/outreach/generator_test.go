package outreach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokeriq/renewal-monitor/internal/config"
)

func validRequest() Request {
	return Request{
		PolicyNumber: "POL-12345",
		CustomerName: "Jane Doe",
		PolicyType:   "Cyber Liability",
		ExpiryDate:   "2026-11-30",
		Carrier:      "Lloyd's",
	}
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(validRequest()))

	missing := Validate(Request{PolicyType: "Auto"})
	assert.Equal(t, []string{"policyNumber", "customerName"}, missing)

	missing = Validate(Request{})
	assert.Equal(t, []string{"policyNumber", "customerName", "policyType"}, missing)
}

func TestGenerateEmail_RejectsIncompleteRequest(t *testing.T) {
	g := NewGenerator(config.OpenAIConfig{})

	_, err := g.GenerateEmail(context.Background(), Request{CustomerName: "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policyNumber")
	assert.Contains(t, err.Error(), "policyType")
}

func TestGenerateEmail_FallbackTemplate(t *testing.T) {
	g := NewGenerator(config.OpenAIConfig{}) // no API key

	body, err := g.GenerateEmail(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Contains(t, body, "POL-12345")
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "Cyber Liability")
	assert.Contains(t, body, "2026-11-30")
	assert.Contains(t, body, "Lloyd's")
}

func TestGenerateEmail_FallbackOmitsEmptyOptionalFields(t *testing.T) {
	g := NewGenerator(config.OpenAIConfig{})
	req := validRequest()
	req.ExpiryDate = ""
	req.Carrier = ""

	body, err := g.GenerateEmail(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, body, "POL-12345")
	assert.NotContains(t, body, "due for renewal on")
	assert.NotContains(t, body, "Lloyd's")
}

func TestGenerateEmail_CompletionPath(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Dear Jane, your policy POL-12345...  "}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o"})
	g.SetBaseURL(srv.URL)

	body, err := g.GenerateEmail(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Dear Jane, your policy POL-12345...", body)
	assert.Equal(t, "gpt-4o", captured.Model)
	require.Len(t, captured.Messages, 1)
	// The prompt pins the policy number so the model cannot drop it.
	assert.Contains(t, captured.Messages[0].Content, "POL-12345")
	assert.Contains(t, captured.Messages[0].Content, "2026-11-30")
}

func TestGenerateEmail_CompletionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "invalid api key", "type": "auth"},
		})
	}))
	defer srv.Close()

	g := NewGenerator(config.OpenAIConfig{APIKey: "sk-bad"})
	g.SetBaseURL(srv.URL)

	_, err := g.GenerateEmail(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGenerateEmail_CompletionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	g := NewGenerator(config.OpenAIConfig{APIKey: "sk-test"})
	g.SetBaseURL(srv.URL)

	_, err := g.GenerateEmail(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewGenerator_DefaultModel(t *testing.T) {
	g := NewGenerator(config.OpenAIConfig{APIKey: "sk-test"})
	assert.Equal(t, "gpt-4o", g.model)
}
