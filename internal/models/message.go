package models

import (
	"time"
)

// MessageRole is the author of a transcript message. Only user and assistant are stored.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message represents a single message in a conversation.
// Messages are immutable once appended to a transcript.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"` // Set at append
}

// Turn is a message stripped of storage details, as sent to the completion API.
type Turn struct {
	Role    MessageRole
	Content string
}

// SessionContext is the accumulated triage context of a chat session.
// All fields are sets; they always marshal as arrays, never null.
type SessionContext struct {
	Symptoms             []string `json:"symptoms"`
	SuggestedSpecialists []string `json:"suggestedSpecialists"`
	DiagnosisHints       []string `json:"diagnosisHints"` // Never populated
}

// EmptySessionContext returns a context whose fields marshal as [].
func EmptySessionContext() SessionContext {
	return SessionContext{
		Symptoms:             []string{},
		SuggestedSpecialists: []string{},
		DiagnosisHints:       []string{},
	}
}

// Normalized replaces nil fields with empty slices.
func (c SessionContext) Normalized() SessionContext {
	if c.Symptoms == nil {
		c.Symptoms = []string{}
	}
	if c.SuggestedSpecialists == nil {
		c.SuggestedSpecialists = []string{}
	}
	if c.DiagnosisHints == nil {
		c.DiagnosisHints = []string{}
	}
	return c
}
