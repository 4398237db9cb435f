package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"support-copilot/internal/models"
)

func TestOrderID(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "order with hash", text: "Order #A10293", want: "A10293", wantOK: true},
		{name: "order without hash", text: "order A10293 please", want: "A10293", wantOK: true},
		{name: "lowercase id is uppercased", text: "my order #a10293-b is late", want: "A10293-B", wantOK: true},
		{name: "bare hash reference", text: "ticket #9988 reopened", want: "9988", wantOK: true},
		{name: "hash with space", text: "see # 12345", want: "12345", wantOK: true},
		{name: "order keyword beats earlier hash", text: "ref #1111 about order B2222", want: "B2222", wantOK: true},
		{name: "word after order is taken", text: "Order delayed", want: "DELAYED", wantOK: true},
		{name: "too short", text: "order #123", wantOK: false},
		{name: "embedded keyword", text: "reorder 55555", wantOK: false},
		{name: "nothing to find", text: "Hello, I need help with my account", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OrderID(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTicketOrderID(t *testing.T) {
	ticket := models.Ticket{
		Subject: "Where is my package",
		Messages: []models.Message{
			{From: models.RoleCustomer, Text: "Hi there"},
			{From: models.RoleAgent, Text: "Can you share the number?"},
			{From: models.RoleCustomer, Text: "Sure, it's #x77821"},
		},
	}

	got, ok := TicketOrderID(ticket)
	assert.True(t, ok)
	assert.Equal(t, "X77821", got)
}

func TestCorpus(t *testing.T) {
	ticket := models.Ticket{
		Subject: "Subject",
		Messages: []models.Message{
			{From: models.RoleCustomer, Text: "one"},
			{From: models.RoleAgent, Text: "two"},
		},
	}
	assert.Equal(t, "Subject\none\ntwo", Corpus(ticket))
}
