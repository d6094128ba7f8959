package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// SendEmail sends a plain-text message from the connected mailbox.
// Recipients may arrive as display-name headers; only the bare
// addresses are used.
func (c *Connector) SendEmail(ctx context.Context, to []string, subject, body string) (string, error) {
	var addresses []string
	for _, raw := range to {
		addresses = append(addresses, ExtractEmailAddresses(raw)...)
	}
	if len(addresses) == 0 {
		return "", fmt.Errorf("no valid recipient email addresses in %v", to)
	}

	raw := buildRawMessage(addresses, subject, body)
	msg := &gmail.Message{Raw: raw}

	sent, err := c.gmail.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}
	return sent.Id, nil
}

// buildRawMessage assembles a minimal MIME message, base64url encoded.
// CRLF line endings are required by the mail API.
func buildRawMessage(toList []string, subject, body string) string {
	headers := []string{
		"To: " + strings.Join(toList, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
	}
	mime := strings.Join(headers, "\r\n") + "\r\n\r\n" + body
	return base64.RawURLEncoding.EncodeToString([]byte(mime))
}
