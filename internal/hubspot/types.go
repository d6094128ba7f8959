// Package hubspot is the CRM connector. It fetches deals with their
// associated contact and company resolved, producing the domain.Deal
// records the enrichment pipeline consumes.
package hubspot

// object is a generic CRM v3 object: an id plus a string property map.
type object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// associationRef points at an associated object of another type.
type associationRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// associationList is the association block nested under a deal.
type associationList struct {
	Results []associationRef `json:"results"`
}

// dealObject is one deal as returned by the list endpoint with
// associations requested.
type dealObject struct {
	ID           string                     `json:"id"`
	Properties   map[string]string          `json:"properties"`
	Associations map[string]associationList `json:"associations"`
}

// listDealsResponse is the paged deal listing envelope.
type listDealsResponse struct {
	Results []dealObject `json:"results"`
	Paging  *struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging,omitempty"`
}

// batchReadRequest asks for a set of objects by id with chosen properties.
type batchReadRequest struct {
	Properties []string     `json:"properties"`
	Inputs     []batchInput `json:"inputs"`
}

type batchInput struct {
	ID string `json:"id"`
}

// batchReadResponse is the batch-read envelope.
type batchReadResponse struct {
	Results []object `json:"results"`
}

// Deal properties requested from the CRM. Free-text numeric fields are
// parsed at this boundary; scoring never sees absence.
var dealProperties = []string{
	"dealname",
	"amount",
	"closedate",
	"dealstage",
	"pipeline",
	"coverage_premium",
	"commission_amount",
	"policy_limit",
	"commission_percent",
	"product_line",
	"carrier_group",
	"client_name",
}

var contactProperties = []string{"firstname", "lastname", "email", "phone", "company"}

var companyProperties = []string{"name", "domain"}
