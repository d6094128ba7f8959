package google

import (
	"regexp"
	"strings"
)

var addressRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// ExtractEmailAddresses pulls every address out of a header-style
// string ("John Doe <john@example.com>, jane@example.org"), lowercased.
func ExtractEmailAddresses(input string) []string {
	if input == "" {
		return nil
	}
	matches := addressRegex.FindAllString(input, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(strings.TrimSpace(m)))
	}
	return out
}

// FirstEmailAddress returns the first address in a header-style string,
// or "" when none is present.
func FirstEmailAddress(input string) string {
	addrs := ExtractEmailAddresses(input)
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}

// AddressDomain returns the domain part of an address, lowercased.
func AddressDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}
