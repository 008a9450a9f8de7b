// Package completion talks to the hosted language model that writes the
// assistant's replies.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"medassist-backend/internal/models"
)

var (
	ErrNotConfigured = errors.New("completion model is not configured")
	ErrEmptyReply    = errors.New("completion model returned an empty reply")
)

// Completer produces a single reply for a conversation.
// system is sent first, followed by history in order.
type Completer interface {
	Complete(ctx context.Context, system string, history []models.Turn) (string, error)
}

// ModelCompleter adapts an eino chat model to Completer.
type ModelCompleter struct {
	chatModel model.ChatModel
}

// NewModelCompleter wraps an already configured chat model.
func NewModelCompleter(chatModel model.ChatModel) *ModelCompleter {
	return &ModelCompleter{chatModel: chatModel}
}

// Complete implements Completer.
func (c *ModelCompleter) Complete(ctx context.Context, system string, history []models.Turn) (string, error) {
	input := BuildMessages(system, history)

	reply, err := c.chatModel.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", ErrEmptyReply
	}

	log.Printf("[Completion] generated reply for %d turns, length=%d", len(history), len(reply.Content))
	return reply.Content, nil
}

// BuildMessages converts a transcript into the model's message format.
// Roles other than user and assistant are dropped.
func BuildMessages(system string, history []models.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(system))
	for _, turn := range history {
		switch turn.Role {
		case models.MessageRoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		case models.MessageRoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return messages
}

// Unavailable is used when no model credentials are configured.
// Every call fails, so callers take their degraded path.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, string, []models.Turn) (string, error) {
	return "", ErrNotConfigured
}
