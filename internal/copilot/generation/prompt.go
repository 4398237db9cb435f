package generation

import (
	"fmt"
	"strings"
)

// SystemInstruction is sent unchanged with every request.
const SystemInstruction = "You are a customer support copilot for human agents. " +
	"Summarize the ticket, draft a reply in the requested tone and classify the issue. " +
	"Return ONLY valid JSON that matches the provided schema. " +
	"Do not invent details (order numbers, dates, refunds, policies) that are not present in the conversation."

// BuildPrompt renders the user message. Messages keep their original order.
func BuildPrompt(req Request) string {
	parts := make([]string, 0, len(req.Messages)+4)

	parts = append(parts, fmt.Sprintf("Tone: %s", req.Tone))
	parts = append(parts, fmt.Sprintf("Subject: %s", req.Subject))
	parts = append(parts, "")
	parts = append(parts, "Conversation:")
	for _, m := range req.Messages {
		parts = append(parts, fmt.Sprintf("- %s: %s", strings.ToUpper(string(m.From)), m.Text))
	}

	return strings.Join(parts, "\n")
}
