package google

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRawMessage(t *testing.T) {
	raw := buildRawMessage([]string{"jane@acme.com", "bob@x.com"}, "Policy POL-99 renewal", "Dear Jane,\nHello.")

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	msg := string(decoded)

	assert.True(t, strings.HasPrefix(msg, "To: jane@acme.com, bob@x.com\r\n"))
	assert.Contains(t, msg, "Subject: Policy POL-99 renewal\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, `Content-Type: text/plain; charset="UTF-8"`)

	// Headers and body separated by a blank CRLF line.
	parts := strings.SplitN(msg, "\r\n\r\n", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "Dear Jane,\nHello.", parts[1])
}
