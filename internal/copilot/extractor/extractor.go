// Package extractor pulls structured facts out of ticket text with fixed
// patterns. Nothing here calls the model.
package extractor

import (
	"regexp"
	"strings"

	"support-copilot/internal/models"
)

// Patterns are tried in order; the first one that matches wins.
// Both are case-insensitive over the whole expression, so "order a10293"
// and "ORDER #a10293" behave the same.
var orderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\border\s*#?\s*([A-Z0-9-]{4,})\b`),
	regexp.MustCompile(`(?i)#\s*([A-Z0-9-]{4,})\b`),
}

// OrderID returns the first order identifier found in text, uppercased.
func OrderID(text string) (string, bool) {
	for _, re := range orderPatterns {
		m := re.FindStringSubmatch(text)
		if len(m) > 1 && m[1] != "" {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

// Corpus joins the subject and every message text, one per line, in
// conversation order.
func Corpus(ticket models.Ticket) string {
	parts := make([]string, 0, len(ticket.Messages)+1)
	parts = append(parts, ticket.Subject)
	for _, m := range ticket.Messages {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n")
}

// TicketOrderID runs OrderID over the ticket corpus.
func TicketOrderID(ticket models.Ticket) (string, bool) {
	return OrderID(Corpus(ticket))
}
