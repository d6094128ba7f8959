package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/brokeriq/renewal-monitor/internal/config"
)

const completionsURL = "https://api.openai.com/v1/chat/completions"

// fallbackTemplate renders the outreach email when no LLM is
// configured. Keeping it a liquid template lets ops tune the copy
// without a rebuild.
const fallbackTemplate = `Subject: Your {{ policy_type }} policy {{ policy_number }} is coming up for renewal

Dear {{ customer_name }},

I hope this message finds you well. I'm reaching out regarding your {{ policy_type }} policy ({{ policy_number }}){% if expiry_date != "" %}, which is due for renewal on {{ expiry_date }}{% endif %}.

We'd welcome the chance to review your current coverage{% if carrier != "" %} with {{ carrier }}{% endif %} and make sure it still fits your needs before the renewal date.

Would you have 15 minutes this week for a quick call?

Best regards,
Your renewal team`

// chatMessage is one message in a chat completion exchange.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request to the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatResponse is the response from the chat completions API.
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generator produces outreach emails.
type Generator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	engine     *liquid.Engine
}

// SetBaseURL overrides the completions endpoint (useful for testing).
func (g *Generator) SetBaseURL(url string) {
	g.baseURL = url
}

// NewGenerator creates a Generator from configuration.
func NewGenerator(cfg config.OpenAIConfig) *Generator {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &Generator{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: completionsURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		engine: liquid.NewEngine(),
	}
}

// GenerateEmail produces an outreach email for the given policy
// details. Mandatory fields must be present; callers surface the
// missing-field list from Validate before reaching this point, but the
// check is repeated here so the policy number can never be dropped.
func (g *Generator) GenerateEmail(ctx context.Context, req Request) (string, error) {
	if missing := Validate(req); len(missing) > 0 {
		return "", fmt.Errorf("mandatory policy details missing: %s", strings.Join(missing, ", "))
	}

	if g.apiKey == "" {
		return g.renderFallback(req)
	}
	return g.complete(ctx, req)
}

// renderFallback renders the deterministic template email.
func (g *Generator) renderFallback(req Request) (string, error) {
	bindings := map[string]interface{}{
		"policy_number": req.PolicyNumber,
		"customer_name": req.CustomerName,
		"policy_type":   req.PolicyType,
		"expiry_date":   req.ExpiryDate,
		"carrier":       req.Carrier,
	}
	out, err := g.engine.ParseAndRenderString(fallbackTemplate, bindings)
	if err != nil {
		return "", fmt.Errorf("rendering outreach template: %w", err)
	}
	return out, nil
}

// complete asks the LLM for the email, with the policy number pinned in
// the prompt so it always appears verbatim.
func (g *Generator) complete(ctx context.Context, req Request) (string, error) {
	prompt := fmt.Sprintf(`You are an insurance assistant.

Generate a professional outreach email.
You MUST include the policy number exactly as given.

Policy Number: %s
Customer Name: %s
Policy Type: %s`, req.PolicyNumber, req.CustomerName, req.PolicyType)
	if req.ExpiryDate != "" {
		prompt += "\nRenewal Date: " + req.ExpiryDate
	}

	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   600,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("completion API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices (status %d)", resp.StatusCode)
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
