package google

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/brokeriq/renewal-monitor/internal/domain"
	"github.com/brokeriq/renewal-monitor/internal/pkg/logger"
)

// FetchEmails lists the most recent messages and enriches each with the
// parsed sender address and its domain. The enrichment pipeline relies
// on FromEmail/Domain being lowercased here.
func (c *Connector) FetchEmails(ctx context.Context, limit int) ([]domain.EmailMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	listCall := c.gmail.Users.Messages.List("me").MaxResults(int64(limit)).Context(ctx)
	listResp, err := listCall.Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	emails := make([]domain.EmailMessage, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		msg, err := c.gmail.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject").
			Context(ctx).
			Do()
		if err != nil {
			// One unreadable message should not sink the whole fetch
			logger.Warn("skipping unreadable message", "message_id", ref.Id, "error", err.Error())
			continue
		}
		emails = append(emails, toEmailMessage(msg))
	}

	return emails, nil
}

func toEmailMessage(msg *gmail.Message) domain.EmailMessage {
	email := domain.EmailMessage{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Snippet:   msg.Snippet,
		Timestamp: msg.InternalDate,
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				email.From = h.Value
				email.FromEmail = FirstEmailAddress(h.Value)
				email.Domain = AddressDomain(email.FromEmail)
			case "Subject":
				email.Subject = h.Value
			}
		}
	}
	return email
}
