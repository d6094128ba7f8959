package domain

import (
	"strconv"
	"strings"
)

// Contact is the primary contact resolved for a CRM deal.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

// FullName joins first and last name, falling back to a neutral
// salutation when the CRM record carries neither.
func (c Contact) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name == "" {
		return "Valued Client"
	}
	return name
}

// Company is the company associated with a CRM deal.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Deal is one CRM deal as consumed by the enrichment pipeline. Financial
// fields arrive as free-text CRM properties and are parsed once at the
// connector boundary; absent values are zero.
type Deal struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Stage             string `json:"stage"`
	CloseDate         string `json:"close_date"`
	ProductLine       string `json:"product_line"`
	CarrierGroup      string `json:"carrier_group"`
	ClientName        string `json:"client_name"`
	Amount            float64 `json:"amount"`
	CoveragePremium   float64 `json:"coverage_premium"`
	CommissionAmount  float64 `json:"commission_amount"`
	PolicyLimit       float64 `json:"policy_limit"`
	CommissionPercent float64 `json:"commission_percent"`

	// At most one of each is attached at enrichment time. When the CRM
	// returns several associations the connector keeps the first one.
	PrimaryContact    *Contact `json:"primary_contact,omitempty"`
	AssociatedCompany *Company `json:"associated_company,omitempty"`
}

// ParseAmount converts a free-text CRM numeric property to a float64,
// treating empty or malformed values as zero. Scoring and enrichment
// never see absence; they see zero.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// FirstNonEmpty returns the first value whose trimmed form is non-empty.
// Display fields on a Renewal resolve through ordered fallback chains;
// this is that chain, typed, instead of ad hoc field probing.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
