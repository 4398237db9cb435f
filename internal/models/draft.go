// internal/models/draft.go
package models

// Tone is the voice requested for the suggested reply.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneFirm         Tone = "firm"
)

// Role identifies who wrote a message in the conversation.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

// Priority is the urgency assigned to a ticket. It is a separate enum from Tone.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Tones lists the accepted tone values in declaration order.
func Tones() []string {
	return []string{string(ToneProfessional), string(ToneFriendly), string(ToneFirm)}
}

// Roles lists the accepted message authors.
func Roles() []string {
	return []string{string(RoleCustomer), string(RoleAgent)}
}

// Priorities lists the accepted priority values.
func Priorities() []string {
	return []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}
}

type Message struct {
	From      Role   `json:"from" yaml:"from"`
	Text      string `json:"text" yaml:"text"`
	Timestamp string `json:"ts,omitempty" yaml:"ts,omitempty"`
}

type Ticket struct {
	Subject  string    `json:"subject" yaml:"subject"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// DraftRequest is the inbound body of a draft call.
type DraftRequest struct {
	Ticket Ticket `json:"ticket" yaml:"ticket"`
	Tone   Tone   `json:"tone" yaml:"tone"`
}

type ExtractedFields struct {
	IssueType  string   `json:"issue_type" yaml:"issue_type"`
	Priority   Priority `json:"priority" yaml:"priority"`
	NextAction string   `json:"next_action" yaml:"next_action"`
	OrderID    string   `json:"order_id,omitempty" yaml:"order_id,omitempty"`
}

// GeneratedFields is the model-produced part of ExtractedFields. It has no
// order id: only the deterministic extractor may set one.
type GeneratedFields struct {
	IssueType  string   `json:"issue_type"`
	Priority   Priority `json:"priority"`
	NextAction string   `json:"next_action"`
}

// GeneratedDraft is a validated model output.
type GeneratedDraft struct {
	Summary        string          `json:"summary"`
	SuggestedReply string          `json:"suggested_reply"`
	Extracted      GeneratedFields `json:"extracted"`
}

// ErrorInfo describes why a draft was degraded or rejected.
type ErrorInfo struct {
	Code    string      `json:"code" yaml:"code"`
	Message string      `json:"message" yaml:"message"`
	Details interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

type DraftMeta struct {
	Error *ErrorInfo `json:"error,omitempty" yaml:"error,omitempty"`
}

// DraftResult is returned for both generated and fallback drafts. Callers
// detect degraded quality through Meta, never through a different shape.
type DraftResult struct {
	Summary        string          `json:"summary" yaml:"summary"`
	SuggestedReply string          `json:"suggested_reply" yaml:"suggested_reply"`
	Extracted      ExtractedFields `json:"extracted" yaml:"extracted"`
	Meta           *DraftMeta      `json:"_meta,omitempty" yaml:"_meta,omitempty"`
}

// Degraded reports whether the result carries an error annotation.
func (d *DraftResult) Degraded() bool {
	return d.Meta != nil && d.Meta.Error != nil
}

// ErrorResponse is the envelope for requests that never produce a draft.
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}
