package domain

// Lifecycle labels a renewal moves through, derived from the raw CRM
// deal stage. Unrecognized stages map to StatusDiscovery.
const (
	StatusDiscovery         = "Discovery"
	StatusPreRenewalReview  = "Pre-Renewal Review"
	StatusPricingDiscussion = "Pricing Discussion"
	StatusQuoteComparison   = "Quote Comparison"
	StatusRenewed           = "Renewed"
)

// ContactSnapshot is the primary-contact view embedded in a Renewal.
type ContactSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	CRMID string `json:"crmId,omitempty"`
}

// RecentEmail is one of the most recent matched emails kept on a Renewal.
type RecentEmail struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
}

// RecentMeeting is one of the most recent matched meetings kept on a Renewal.
type RecentMeeting struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

// Communications aggregates every matched touchpoint for one Renewal.
// TotalTouchpoints is always EmailCount + MeetingCount.
type Communications struct {
	TotalTouchpoints int             `json:"totalTouchpoints"`
	EmailCount       int             `json:"emailCount"`
	MeetingCount     int             `json:"meetingCount"`
	LastContactDate  string          `json:"lastContactDate,omitempty"`
	RecentEmails     []RecentEmail   `json:"recentEmails"`
	RecentMeetings   []RecentMeeting `json:"recentMeetings"`
}

// CRMSource records where a Renewal's deal and contact came from.
type CRMSource struct {
	DealID    string `json:"dealId"`
	ContactID string `json:"contactId,omitempty"`
}

// MailboxSource records the matched communication ids for audit.
type MailboxSource struct {
	EmailThreadIDs   []string `json:"emailThreadIds"`
	CalendarEventIDs []string `json:"calendarEventIds"`
}

// Sources ties a Renewal back to every originating system record.
type Sources struct {
	CRM     CRMSource     `json:"crm"`
	Mailbox MailboxSource `json:"mailbox"`
}

// Renewal is the assembled, scorable entity the dashboard serves. It is
// created fresh on every sync pass and never individually mutated; the
// priority score is computed on read, not stored authoritatively.
type Renewal struct {
	ID                string  `json:"id"`
	CompanyName       string  `json:"companyName"`
	DealName          string  `json:"dealName"`
	ClientName        string  `json:"clientName"`
	PolicyNumber      string  `json:"policyNumber"`
	ProductLine       string  `json:"productLine"`
	Carrier           string  `json:"carrier"`
	Specialist        string  `json:"specialist"`
	Premium           float64 `json:"premium"`
	CoveragePremium   float64 `json:"coveragePremium"`
	CommissionAmount  float64 `json:"commissionAmount"`
	PolicyLimit       float64 `json:"policyLimit"`
	CommissionPercent float64 `json:"commissionPercent"`
	ExpiryDate        string  `json:"expiryDate,omitempty"`
	Status            string  `json:"status"`
	SourceSystem      string  `json:"sourceSystem"`
	CRMRecordID       string  `json:"crmRecordId"`

	PrimaryContact ContactSnapshot `json:"primaryContact"`
	Communications Communications  `json:"communications"`
	Sources        Sources         `json:"sources"`

	// Derived on read by the scoring package.
	PriorityScore  float64            `json:"priorityScore,omitempty"`
	ScoreBreakdown map[string]float64 `json:"scoreBreakdown,omitempty"`
}
