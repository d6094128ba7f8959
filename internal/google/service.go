// Package google is the workspace connector: it fetches enriched Gmail
// messages and Calendar events for matching, and sends outreach email.
package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/brokeriq/renewal-monitor/internal/config"
)

// Connector wraps authenticated Gmail and Calendar services.
type Connector struct {
	gmail    *gmail.Service
	calendar *calendar.Service
}

// oauthConfig builds the OAuth2 config for the offline refresh-token flow.
func oauthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     googleoauth.Endpoint,
		Scopes: []string{
			gmail.GmailReadonlyScope,
			gmail.GmailSendScope,
			calendar.CalendarReadonlyScope,
		},
	}
}

// NewConnector creates a Connector from a stored refresh token. The
// OAuth consent flow that produced the token lives outside this service.
func NewConnector(ctx context.Context, cfg config.GoogleConfig) (*Connector, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("google connector not configured")
	}

	oc := oauthConfig(cfg)
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	client := oc.Client(ctx, token)

	gmailSvc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	calendarSvc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Connector{gmail: gmailSvc, calendar: calendarSvc}, nil
}
