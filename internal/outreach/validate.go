// Package outreach generates renewal outreach emails: an LLM-backed
// path when an API key is configured, and a deterministic template
// fallback otherwise. Generation is refused when mandatory policy
// details are missing.
package outreach

// Request carries the policy details an outreach email is built from.
type Request struct {
	PolicyNumber string `json:"policyNumber"`
	CustomerName string `json:"customerName"`
	PolicyType   string `json:"policyType"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	Carrier      string `json:"carrier,omitempty"`
}

// Validate returns the mandatory fields missing from the request. An
// empty slice means the request is complete enough to generate from.
func Validate(req Request) []string {
	var missing []string
	if req.PolicyNumber == "" {
		missing = append(missing, "policyNumber")
	}
	if req.CustomerName == "" {
		missing = append(missing, "customerName")
	}
	if req.PolicyType == "" {
		missing = append(missing, "policyType")
	}
	return missing
}
