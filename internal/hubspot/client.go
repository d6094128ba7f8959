package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brokeriq/renewal-monitor/internal/config"
	"github.com/brokeriq/renewal-monitor/internal/domain"
	"github.com/brokeriq/renewal-monitor/internal/pkg/httpretry"
)

// Client is the HubSpot CRM API client (private-app bearer auth).
type Client struct {
	baseURL     string
	accessToken string
	dealLimit   int
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a new HubSpot client from configuration.
func NewClient(cfg config.HubSpotConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		dealLimit:   cfg.DealLimit,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// IsConfigured reports whether the client has credentials.
func (c *Client) IsConfigured() bool {
	return c.accessToken != ""
}

// doRequest performs an authenticated request against the CRM API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// TestConnection verifies credentials with a minimal contacts listing.
func (c *Client) TestConnection(ctx context.Context) error {
	if !c.IsConfigured() {
		return fmt.Errorf("no access token configured")
	}
	q := url.Values{}
	q.Set("limit", "1")
	_, err := c.doRequest(ctx, http.MethodGet, "/crm/v3/objects/contacts", q, nil)
	return err
}

// FetchDealsWithContacts fetches deals with their first associated
// contact and company resolved. When a deal has multiple associations
// the first returned by the API is kept; a documented tie-break is
// pending product confirmation.
func (c *Client) FetchDealsWithContacts(ctx context.Context) ([]domain.Deal, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("not configured")
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", c.dealLimit))
	q.Set("properties", strings.Join(dealProperties, ","))
	q.Set("associations", "contacts,companies")

	body, err := c.doRequest(ctx, http.MethodGet, "/crm/v3/objects/deals", q, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching deals: %w", err)
	}

	var listResp listDealsResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("decoding deals response: %w", err)
	}

	contactIDs, companyIDs := collectAssociationIDs(listResp.Results)
	contacts, err := c.batchReadContacts(ctx, contactIDs)
	if err != nil {
		return nil, err
	}
	companies, err := c.batchReadCompanies(ctx, companyIDs)
	if err != nil {
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(listResp.Results))
	for _, raw := range listResp.Results {
		deals = append(deals, buildDeal(raw, contacts, companies))
	}
	return deals, nil
}

// collectAssociationIDs gathers the first contact/company id per deal,
// deduplicated for batch reads.
func collectAssociationIDs(deals []dealObject) (contactIDs, companyIDs []string) {
	seenContact := map[string]bool{}
	seenCompany := map[string]bool{}
	for _, d := range deals {
		if id := firstAssociation(d, "contacts"); id != "" && !seenContact[id] {
			seenContact[id] = true
			contactIDs = append(contactIDs, id)
		}
		if id := firstAssociation(d, "companies"); id != "" && !seenCompany[id] {
			seenCompany[id] = true
			companyIDs = append(companyIDs, id)
		}
	}
	return contactIDs, companyIDs
}

func firstAssociation(d dealObject, key string) string {
	list, ok := d.Associations[key]
	if !ok || len(list.Results) == 0 {
		return ""
	}
	return list.Results[0].ID
}

func (c *Client) batchReadContacts(ctx context.Context, ids []string) (map[string]domain.Contact, error) {
	contacts := make(map[string]domain.Contact, len(ids))
	if len(ids) == 0 {
		return contacts, nil
	}

	req := batchReadRequest{Properties: contactProperties}
	for _, id := range ids {
		req.Inputs = append(req.Inputs, batchInput{ID: id})
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/read", nil, req)
	if err != nil {
		return nil, fmt.Errorf("batch reading contacts: %w", err)
	}

	var resp batchReadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding contacts response: %w", err)
	}

	for _, obj := range resp.Results {
		contacts[obj.ID] = domain.Contact{
			ID:        obj.ID,
			FirstName: obj.Properties["firstname"],
			LastName:  obj.Properties["lastname"],
			Email:     obj.Properties["email"],
			Phone:     obj.Properties["phone"],
			Company:   obj.Properties["company"],
		}
	}
	return contacts, nil
}

func (c *Client) batchReadCompanies(ctx context.Context, ids []string) (map[string]domain.Company, error) {
	companies := make(map[string]domain.Company, len(ids))
	if len(ids) == 0 {
		return companies, nil
	}

	req := batchReadRequest{Properties: companyProperties}
	for _, id := range ids {
		req.Inputs = append(req.Inputs, batchInput{ID: id})
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/crm/v3/objects/companies/batch/read", nil, req)
	if err != nil {
		return nil, fmt.Errorf("batch reading companies: %w", err)
	}

	var resp batchReadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding companies response: %w", err)
	}

	for _, obj := range resp.Results {
		companies[obj.ID] = domain.Company{
			ID:   obj.ID,
			Name: obj.Properties["name"],
		}
	}
	return companies, nil
}

// buildDeal converts one raw CRM deal into the domain shape, parsing
// the free-text numeric properties once at this boundary.
func buildDeal(raw dealObject, contacts map[string]domain.Contact, companies map[string]domain.Company) domain.Deal {
	props := raw.Properties
	deal := domain.Deal{
		ID:                raw.ID,
		Name:              props["dealname"],
		Stage:             props["dealstage"],
		CloseDate:         props["closedate"],
		ProductLine:       props["product_line"],
		CarrierGroup:      props["carrier_group"],
		ClientName:        props["client_name"],
		Amount:            domain.ParseAmount(props["amount"]),
		CoveragePremium:   domain.ParseAmount(props["coverage_premium"]),
		CommissionAmount:  domain.ParseAmount(props["commission_amount"]),
		PolicyLimit:       domain.ParseAmount(props["policy_limit"]),
		CommissionPercent: domain.ParseAmount(props["commission_percent"]),
	}

	if id := firstAssociation(raw, "contacts"); id != "" {
		if contact, ok := contacts[id]; ok {
			deal.PrimaryContact = &contact
		}
	}
	if id := firstAssociation(raw, "companies"); id != "" {
		if company, ok := companies[id]; ok {
			deal.AssociatedCompany = &company
		}
	}
	return deal
}
