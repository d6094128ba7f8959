// Package enrichment assembles CRM deals and matched communications
// into renewal records, the system's primary output.
package enrichment

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/brokeriq/renewal-monitor/internal/domain"
	"github.com/brokeriq/renewal-monitor/internal/matching"
)

const (
	defaultCompanyName = "Unknown Company"
	defaultClientName  = "Unknown Client"
	defaultProductLine = "General Insurance"
	defaultCarrier     = "Unknown Carrier"
	defaultSpecialist  = "Unassigned"

	recentEmailLimit   = 5
	recentMeetingLimit = 3
)

// Assembler turns deals plus the full email/event collections into one
// renewal per deal. CSV placement overrides, when loaded, take
// precedence over CRM fields for the financial columns.
type Assembler struct {
	overrides map[string]OverrideRecord
}

// NewAssembler creates an Assembler. overrides may be nil.
func NewAssembler(overrides map[string]OverrideRecord) *Assembler {
	return &Assembler{overrides: overrides}
}

// Assemble produces one Renewal per input deal, in input order. The
// per-deal enrichment runs concurrently; results land in an
// index-addressed slice so completion order never changes output order.
// A deal missing its CRM identifier aborts the whole pass.
func (a *Assembler) Assemble(deals []domain.Deal, emails []domain.EmailMessage, events []domain.CalendarEvent) ([]domain.Renewal, error) {
	for i, deal := range deals {
		if deal.ID == "" {
			return nil, fmt.Errorf("deal at index %d has no CRM id", i)
		}
	}

	emailItems := make([]domain.CommunicationItem, len(emails))
	for i, e := range emails {
		emailItems[i] = e.Item()
	}
	eventItems := make([]domain.CommunicationItem, len(events))
	for i, ev := range events {
		eventItems[i] = ev.Item()
	}

	renewals := make([]domain.Renewal, len(deals))
	var wg sync.WaitGroup
	for i, deal := range deals {
		wg.Add(1)
		go func(i int, deal domain.Deal) {
			defer wg.Done()
			renewals[i] = a.enrich(deal, emailItems, eventItems)
		}(i, deal)
	}
	wg.Wait()

	return renewals, nil
}

// enrich builds one renewal record from one deal.
func (a *Assembler) enrich(deal domain.Deal, emailItems, eventItems []domain.CommunicationItem) domain.Renewal {
	matchedEmails := matching.MatchCommunications(deal, emailItems, matching.ModeEmail)
	matchedMeetings := matching.MatchCommunications(deal, eventItems, matching.ModeCalendar)

	contact := deal.PrimaryContact
	var companyName, contactCompany string
	if deal.AssociatedCompany != nil {
		companyName = deal.AssociatedCompany.Name
	}
	if contact != nil {
		contactCompany = contact.Company
	}

	override, hasOverride := a.lookupOverride(deal.Name)

	r := domain.Renewal{
		ID:           "R-" + deal.ID,
		DealName:     domain.FirstNonEmpty(deal.Name, "Unnamed Deal"),
		CompanyName:  domain.FirstNonEmpty(override.Client, companyName, contactCompany, deal.ClientName, defaultCompanyName),
		ClientName:   domain.FirstNonEmpty(override.Client, companyName, contactCompany, defaultClientName),
		PolicyNumber: "POL-" + deal.ID,
		ProductLine:  domain.FirstNonEmpty(override.ProductLine, deal.ProductLine, InferProductLine(deal.Name)),
		Carrier:      domain.FirstNonEmpty(override.CarrierGroup, deal.CarrierGroup, defaultCarrier),
		Specialist:   domain.FirstNonEmpty(override.Specialist, defaultSpecialist),
		Status:       MapDealStage(deal.Stage),
		SourceSystem: "HubSpot",
		CRMRecordID:  deal.ID,
		ExpiryDate:   deal.CloseDate,
	}

	r.Premium = deal.Amount
	r.CoveragePremium = deal.CoveragePremium
	r.CommissionAmount = deal.CommissionAmount
	r.PolicyLimit = deal.PolicyLimit
	r.CommissionPercent = deal.CommissionPercent
	if hasOverride {
		r.Premium = override.TotalPremium
		r.CoveragePremium = override.CoveragePremium
		r.CommissionAmount = override.CommissionAmount
		r.PolicyLimit = override.PolicyLimit
		r.CommissionPercent = override.CommissionPercent
		if override.ExpiryDate != "" {
			r.ExpiryDate = override.ExpiryDate
		}
	}
	// Monetary fields are whole dollars downstream; the commission
	// percentage keeps its fractional precision.
	r.Premium = math.Round(r.Premium)
	r.CoveragePremium = math.Round(r.CoveragePremium)
	r.CommissionAmount = math.Round(r.CommissionAmount)
	r.PolicyLimit = math.Round(r.PolicyLimit)

	r.PrimaryContact = contactSnapshot(contact)
	r.Communications = buildCommunications(matchedEmails, matchedMeetings)
	r.Sources = buildSources(deal, contact, matchedEmails, matchedMeetings)

	return r
}

func (a *Assembler) lookupOverride(dealName string) (OverrideRecord, bool) {
	if a.overrides == nil {
		return OverrideRecord{}, false
	}
	rec, ok := a.overrides[dealName]
	return rec, ok
}

func contactSnapshot(contact *domain.Contact) domain.ContactSnapshot {
	if contact == nil {
		return domain.ContactSnapshot{Name: "Valued Client"}
	}
	return domain.ContactSnapshot{
		Name:  contact.FullName(),
		Email: contact.Email,
		Phone: contact.Phone,
		CRMID: contact.ID,
	}
}

func buildCommunications(matchedEmails, matchedMeetings []matching.Match) domain.Communications {
	comms := domain.Communications{
		EmailCount:       len(matchedEmails),
		MeetingCount:     len(matchedMeetings),
		TotalTouchpoints: len(matchedEmails) + len(matchedMeetings),
		RecentEmails:     []domain.RecentEmail{},
		RecentMeetings:   []domain.RecentMeeting{},
	}

	var lastContact int64
	for _, m := range matchedEmails {
		if m.Item.Timestamp > lastContact {
			lastContact = m.Item.Timestamp
		}
	}
	for _, m := range matchedMeetings {
		if m.Item.Timestamp > lastContact {
			lastContact = m.Item.Timestamp
		}
	}
	comms.LastContactDate = isoDate(lastContact)

	for _, m := range matchedEmails[:min(recentEmailLimit, len(matchedEmails))] {
		comms.RecentEmails = append(comms.RecentEmails, domain.RecentEmail{
			ID:      m.Item.ID,
			Subject: m.Item.Subject,
			From:    m.Item.FromEmail,
			Date:    isoDate(m.Item.Timestamp),
		})
	}
	for _, m := range matchedMeetings[:min(recentMeetingLimit, len(matchedMeetings))] {
		comms.RecentMeetings = append(comms.RecentMeetings, domain.RecentMeeting{
			ID:      m.Item.ID,
			Summary: m.Item.Subject,
			Date:    isoDate(m.Item.Timestamp),
		})
	}

	return comms
}

// isoDate renders an epoch-millisecond timestamp as a display date.
// Items with no usable timestamp get an empty date, not 1970-01-01.
func isoDate(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

func buildSources(deal domain.Deal, contact *domain.Contact, matchedEmails, matchedMeetings []matching.Match) domain.Sources {
	src := domain.Sources{
		CRM: domain.CRMSource{DealID: deal.ID},
		Mailbox: domain.MailboxSource{
			EmailThreadIDs:   []string{},
			CalendarEventIDs: []string{},
		},
	}
	if contact != nil {
		src.CRM.ContactID = contact.ID
	}
	for _, m := range matchedEmails {
		src.Mailbox.EmailThreadIDs = append(src.Mailbox.EmailThreadIDs, m.Item.ThreadID)
	}
	for _, m := range matchedMeetings {
		src.Mailbox.CalendarEventIDs = append(src.Mailbox.CalendarEventIDs, m.Item.ID)
	}
	return src
}

// MapDealStage classifies a raw CRM stage code into a lifecycle label.
// Substring-based on purpose: stage codes vary by pipeline
// ("qualify_lead", "decisionmakerboughtin", "closedwon", ...).
func MapDealStage(stage string) string {
	s := strings.ToLower(stage)
	switch {
	case s == "":
		return domain.StatusDiscovery
	case strings.Contains(s, "qualify"):
		return domain.StatusPreRenewalReview
	case strings.Contains(s, "present"):
		return domain.StatusPricingDiscussion
	case strings.Contains(s, "decision"):
		return domain.StatusQuoteComparison
	case strings.Contains(s, "closed"):
		return domain.StatusRenewed
	default:
		return domain.StatusDiscovery
	}
}

// InferProductLine guesses a product line from a deal name when the CRM
// property is empty and no placement override exists.
func InferProductLine(dealName string) string {
	name := strings.ToLower(dealName)
	switch {
	case strings.Contains(name, "property"), strings.Contains(name, "building"):
		return "Property Insurance"
	case strings.Contains(name, "liability"), strings.Contains(name, "gl"):
		return "General Liability"
	case strings.Contains(name, "cyber"):
		return "Cyber Liability"
	case strings.Contains(name, "marine"), strings.Contains(name, "cargo"):
		return "Marine Cargo"
	case strings.Contains(name, "auto"), strings.Contains(name, "vehicle"):
		return "Auto Insurance"
	default:
		return defaultProductLine
	}
}
