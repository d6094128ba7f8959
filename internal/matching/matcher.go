// Package matching links unstructured communications (emails, calendar
// events) to CRM deals without a foreign key. Each mode evaluates an
// ordered rule cascade per item; the first applicable rule wins and the
// rules are mutually exclusive by construction.
package matching

import (
	"regexp"
	"sort"
	"strings"

	"github.com/brokeriq/renewal-monitor/internal/domain"
)

// Mode selects which rule cascade and acceptance threshold apply.
type Mode int

const (
	ModeEmail Mode = iota
	ModeCalendar
)

// Reason codes why an item was linked to a deal.
type Reason string

const (
	ReasonExactEmail     Reason = "exact_email_match"
	ReasonDomain         Reason = "domain_match"
	ReasonAttendee       Reason = "attendee_match"
	ReasonCompany        Reason = "company_match"
	ReasonKeyword        Reason = "keyword_match"
	ReasonRenewalKeyword Reason = "renewal_keyword"
)

// Match is a communication item annotated with the confidence score and
// reason assigned by the winning rule.
type Match struct {
	Item   domain.CommunicationItem
	Score  int
	Reason Reason
}

// Acceptance thresholds differ between modes on purpose: calendar
// admits company-name and deal-name signals at 70, so its floor sits
// lower. Unifying the two is pending product confirmation.
const (
	emailMatchThreshold    = 50
	calendarMatchThreshold = 40
)

// renewalKeywords flag communications that are about the insurance
// renewal domain at all, even when no deal-specific signal exists.
var renewalKeywords = []string{"renewal", "policy", "insurance", "premium", "quote", "expiry", "coverage"}

// dealContext precomputes the deal-side matching signals once per call.
type dealContext struct {
	dealName      string // lowercased
	contactEmail  string // lowercased, may be empty
	companyName   string // lowercased contact company, may be empty
	derivedDomain string // heuristic domain from the deal name
}

// rule is one predicate+outcome pair in a cascade. Evaluation is
// top-to-bottom; the first rule whose applies returns true produces the
// item's only possible Match.
type rule struct {
	reason  Reason
	score   int
	applies func(dealContext, domain.CommunicationItem) bool
}

var emailRules = []rule{
	{ReasonExactEmail, 100, func(d dealContext, it domain.CommunicationItem) bool {
		return d.contactEmail != "" && strings.ToLower(it.FromEmail) == d.contactEmail
	}},
	{ReasonDomain, 70, func(d dealContext, it domain.CommunicationItem) bool {
		return it.Domain != "" && it.Domain == d.derivedDomain
	}},
	{ReasonKeyword, 50, func(d dealContext, it domain.CommunicationItem) bool {
		return d.dealName != "" && containsLower(it, d.dealName)
	}},
	{ReasonRenewalKeyword, 30, func(d dealContext, it domain.CommunicationItem) bool {
		return isRenewalRelated(it.Subject) || isRenewalRelated(it.Body)
	}},
}

var calendarRules = []rule{
	{ReasonAttendee, 100, func(d dealContext, it domain.CommunicationItem) bool {
		if d.contactEmail == "" {
			return false
		}
		for _, a := range it.Attendees {
			if strings.ToLower(a) == d.contactEmail {
				return true
			}
		}
		return false
	}},
	{ReasonCompany, 70, func(d dealContext, it domain.CommunicationItem) bool {
		return d.companyName != "" && containsLower(it, d.companyName)
	}},
	{ReasonKeyword, 70, func(d dealContext, it domain.CommunicationItem) bool {
		return d.dealName != "" && containsLower(it, d.dealName)
	}},
	{ReasonRenewalKeyword, 30, func(d dealContext, it domain.CommunicationItem) bool {
		return isRenewalRelated(it.Subject) || isRenewalRelated(it.Body)
	}},
}

// MatchCommunications returns the subset of items that plausibly relate
// to the deal, each tagged with a score and reason. Pure function of its
// inputs: items are never mutated and the result is freshly allocated.
//
// Email mode sorts by score descending, ties broken by most recent
// timestamp. Calendar mode sorts by score descending only, leaving ties
// in encounter order; dashboard consumers rely on that asymmetry.
func MatchCommunications(deal domain.Deal, items []domain.CommunicationItem, mode Mode) []Match {
	dctx := newDealContext(deal)

	rules := emailRules
	threshold := emailMatchThreshold
	if mode == ModeCalendar {
		rules = calendarRules
		threshold = calendarMatchThreshold
	}

	var matches []Match
	for _, item := range items {
		m, ok := evaluate(rules, dctx, item)
		if ok && m.Score >= threshold {
			matches = append(matches, m)
		}
	}

	if mode == ModeEmail {
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Score != matches[j].Score {
				return matches[i].Score > matches[j].Score
			}
			return matches[i].Item.Timestamp > matches[j].Item.Timestamp
		})
	} else {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
	}

	return matches
}

// evaluate runs the cascade and returns the single winning match, if any.
func evaluate(rules []rule, dctx dealContext, item domain.CommunicationItem) (Match, bool) {
	for _, r := range rules {
		if r.applies(dctx, item) {
			return Match{Item: item, Score: r.score, Reason: r.reason}, true
		}
	}
	return Match{}, false
}

func newDealContext(deal domain.Deal) dealContext {
	dctx := dealContext{
		dealName:      strings.ToLower(deal.Name),
		derivedDomain: DeriveCompanyDomain(deal.Name),
	}
	if deal.PrimaryContact != nil {
		dctx.contactEmail = strings.ToLower(deal.PrimaryContact.Email)
		dctx.companyName = strings.ToLower(deal.PrimaryContact.Company)
	}
	return dctx
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// DeriveCompanyDomain guesses a sender domain from a deal name: the
// lowercased first whitespace-delimited token, stripped of
// non-alphanumerics, with ".com" appended. "AcmeInc Policy" → "acmeinc.com".
func DeriveCompanyDomain(dealName string) string {
	fields := strings.Fields(dealName)
	if len(fields) == 0 {
		return ".com"
	}
	first := strings.ToLower(fields[0])
	return nonAlnum.ReplaceAllString(first, "") + ".com"
}

func containsLower(it domain.CommunicationItem, needle string) bool {
	return strings.Contains(strings.ToLower(it.Subject), needle) ||
		strings.Contains(strings.ToLower(it.Body), needle)
}

func isRenewalRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range renewalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
